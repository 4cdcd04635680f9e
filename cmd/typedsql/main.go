// Package main provides a CLI for managing databases declared with typedsql
// schema files.
//
// The CLI supports:
//   - validate: Check schema file syntax and column types
//   - compile: Print the CREATE TABLE statements for a schema
//   - migrate: Create missing tables and add missing columns
//   - status: Compare the database with the schema
//   - doctor: Run health checks on the database
//
// Commands that require database access (migrate, status, doctor) need --db,
// database settings in typedsql.yaml, or TYPEDSQL_DATABASE_URL.
package main

func main() {
	Execute()
}
