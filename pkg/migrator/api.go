package migrator

import (
	"context"
	"fmt"
	"os"

	"github.com/pthm/typedsql/pkg/parser"
)

// Migrate parses a schema file and applies it to the database in one operation.
// This is the recommended high-level API for most applications.
//
// The function is idempotent and safe to call on every application startup.
// Missing tables are created and missing columns added, atomically within a
// transaction when db supports BeginTx. Nothing is dropped.
//
// Example usage on application startup:
//
//	if err := migrator.Migrate(ctx, db, "schema.yaml"); err != nil {
//	    log.Fatalf("migration failed: %v", err)
//	}
//
// For embedded schemas (no file I/O), use MigrateFromString.
// For dry-run or forced migrations, use MigrateWithOptions.
func Migrate(ctx context.Context, db Execer, schemaPath string) error {
	_, err := MigrateWithOptions(ctx, db, schemaPath, MigrateOptions{})
	return err
}

// MigrateFromString parses schema content and applies it to the database.
// Useful for testing or when the schema is embedded in the application binary:
//
//	//go:embed schema.yaml
//	var embeddedSchema string
//
//	err := migrator.MigrateFromString(ctx, db, embeddedSchema)
func MigrateFromString(ctx context.Context, db Execer, content string) error {
	tables, err := parser.ParseSchemaString(content)
	if err != nil {
		return fmt.Errorf("parsing schema: %w", err)
	}

	_, err = NewMigrator(db).Migrate(ctx, tables, MigrateOptions{})
	return err
}

// MigrateWithOptions performs migration with control over dry-run and skip behavior.
//
// The skip-if-unchanged optimization compares the checksum of the rendered
// DDL and the format version against the last successful migration. If both
// match and Force is false, the migration is skipped (skipped=true).
//
// Example: generate a migration script without applying it
//
//	var buf bytes.Buffer
//	_, err := migrator.MigrateWithOptions(ctx, db, "schema.yaml", migrator.MigrateOptions{
//	    DryRun: &buf,
//	})
//	os.WriteFile("migrations/001_tables.sql", buf.Bytes(), 0644)
func MigrateWithOptions(ctx context.Context, db Execer, schemaPath string, opts MigrateOptions) (skipped bool, err error) {
	if _, err := os.Stat(schemaPath); err != nil {
		return false, fmt.Errorf("no schema found at %s", schemaPath)
	}

	tables, err := parser.ParseSchema(schemaPath)
	if err != nil {
		return false, fmt.Errorf("parsing schema: %w", err)
	}

	return NewMigrator(db).Migrate(ctx, tables, opts)
}
