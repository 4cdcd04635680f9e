// Package testutil provides a shared PostgreSQL instance for integration tests.
//
// Tests get an isolated, empty database per call. The server is a
// testcontainers PostgreSQL container started once per test binary, or the
// server named by DATABASE_URL when set. Integration tests are skipped with
// -short.
package testutil

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Singleton server state
var (
	singletonOnce sync.Once
	singletonDSN  string
	singletonErr  error
)

// adminDSN returns the DSN of the server's maintenance database, starting the
// container on first use. Safe for concurrent access via sync.Once.
func adminDSN() (string, error) {
	singletonOnce.Do(func() {
		if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
			singletonDSN = dsn
			return
		}

		ctx := context.Background()
		container, err := postgres.Run(ctx,
			"postgres:18-alpine",
			postgres.WithDatabase("postgres"),
			postgres.WithUsername("test"),
			postgres.WithPassword("test"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second),
			),
		)
		if err != nil {
			singletonErr = fmt.Errorf("failed to start PostgreSQL container: %w", err)
			return
		}

		dsn, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			_ = container.Terminate(ctx)
			singletonErr = fmt.Errorf("failed to get PostgreSQL connection string: %w", err)
			return
		}

		singletonDSN = dsn
		// Container is not stored - ryuk will handle cleanup automatically
	})

	return singletonDSN, singletonErr
}

// DSN creates an empty database and returns its connection string. The
// database is dropped when the test completes.
func DSN(tb testing.TB) string {
	tb.Helper()
	if testing.Short() {
		tb.Skip("skipping integration test in short mode")
	}

	admin, err := adminDSN()
	require.NoError(tb, err, "failed to start PostgreSQL")

	name := uniqueDBName("typedsql")
	require.NoError(tb, execAdmin(context.Background(), admin, "CREATE DATABASE "+name), "failed to create test database")

	tb.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = execAdmin(ctx, admin, "DROP DATABASE IF EXISTS "+name+" WITH (FORCE)")
	})

	dsn, err := replaceDBName(admin, name)
	require.NoError(tb, err)
	return dsn
}

// EmptyDB returns a database/sql connection to a fresh empty database.
// Works with both *testing.T and *testing.B.
func EmptyDB(tb testing.TB) *sql.DB {
	tb.Helper()

	dsn := DSN(tb)
	db, err := sql.Open("pgx", dsn)
	require.NoError(tb, err, "failed to connect to test database")
	require.NoError(tb, db.Ping(), "failed to ping test database")

	// Registered after DSN's cleanup so it runs first.
	tb.Cleanup(func() { _ = db.Close() })
	return db
}

// uniqueDBName generates a unique database name with the given prefix.
func uniqueDBName(prefix string) string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return fmt.Sprintf("%s_%s", prefix, hex.EncodeToString(b))
}

func execAdmin(ctx context.Context, dsn, stmt string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	_, err = db.ExecContext(ctx, stmt)
	return err
}

// replaceDBName replaces the database name in a postgres:// DSN.
func replaceDBName(dsn, name string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parsing dsn: %w", err)
	}
	u.Path = "/" + name
	return u.String(), nil
}
