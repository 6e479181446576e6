//go:build cgo_sqlite

package runstore

import _ "github.com/mattn/go-sqlite3"

const testDriver = "sqlite3"
