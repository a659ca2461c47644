// Package database manages the SQLite connection and schema
// migrations.
//
// Migrations are embedded into the binary (see the migrations
// package) and applied at startup, each in its own transaction.
package database
