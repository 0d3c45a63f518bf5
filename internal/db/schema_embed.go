package db

import _ "embed"

// Schema holds the bootstrap SQL for integration tests and local
// development. It mirrors the migrations so tests can build a fresh
// database with a single Exec.
//
//go:embed schema.sql
var Schema string
