//go:build !cgo_sqlite

package runstore

import _ "modernc.org/sqlite"

const testDriver = "sqlite"
