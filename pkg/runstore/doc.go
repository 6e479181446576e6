// Package runstore keeps a SQLite-backed history of training runs and
// evaluation results.
//
// The package does not register a database driver. Open the *sql.DB with the
// driver of your choice, call SetupSchema once, then create a Store with
// NewStore.
package runstore
