// Package sqliteexternal provides the optional CGO-based SQLite driver.
//
// This package is part of the main github.com/nerdyc/Squeal-sub000 module
// and exists so that the mattn/go-sqlite3 dependency is clearly separated
// from core functionality.
//
// # CGO SQLite Driver
//
// To use the CGO driver (github.com/mattn/go-sqlite3):
//
//	import _ "github.com/nerdyc/Squeal-sub000/contrib/sqlite-external"
//
// Build with:
//
//	CGO_ENABLED=1 go build -tags cgo_sqlite
//
// # Default Pure Go Driver
//
// By default the library uses the pure Go modernc.org/sqlite driver.
// See github.com/nerdyc/Squeal-sub000/core/sqlite for details.
//
// # When to Use
//
// Use this package when:
//   - Performance is critical
//   - You need specific SQLite extensions
//   - You already have CGO in your build pipeline
//
// Use the default pure Go driver when:
//   - Portability is important
//   - Cross-compilation is required
//   - You want simpler deployment (single binary)
package sqliteexternal
