// Package all wires every built-in storage backend into the storage factory.
// Import it for side effects:
//
//	import _ "moviecatalog/internal/storage/all"
//
// which makes "postgres", "sqlite", "mssql" and "mysql" available to
// storage.New and storage.Export. A binary that needs fewer backends can
// import the individual packages instead.
package all

import (
	_ "moviecatalog/internal/storage/mssql"
	_ "moviecatalog/internal/storage/mysql"
	_ "moviecatalog/internal/storage/postgres"
	_ "moviecatalog/internal/storage/sqlite"
)
