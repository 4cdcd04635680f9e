package migrator_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/typedsql"
	"github.com/pthm/typedsql/internal/testutil"
	"github.com/pthm/typedsql/pkg/driver"
	"github.com/pthm/typedsql/pkg/migrator"
)

func blogTables() []*typedsql.Table {
	return []*typedsql.Table{
		typedsql.MustNewTable("users",
			typedsql.PrimaryKeyColumn("id").WithOptions("PRIMARY KEY"),
			typedsql.StringColumn("name"),
		),
		typedsql.MustNewTable("articles",
			typedsql.PrimaryKeyColumn("id").WithOptions("PRIMARY KEY"),
			typedsql.StringColumn("title"),
			typedsql.NumberColumn("userId"),
		),
	}
}

func TestMigrate(t *testing.T) {
	ctx := context.Background()
	db := testutil.EmptyDB(t)
	m := migrator.NewMigrator(db)
	tables := blogTables()

	skipped, err := m.Migrate(ctx, tables, migrator.MigrateOptions{})
	require.NoError(t, err)
	assert.False(t, skipped)

	defs, err := m.Probe(ctx, tables)
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.True(t, defs["articles"].Has("userId"))

	last, err := m.GetLastMigration(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, migrator.FormatVersion, last.FormatVersion)
	assert.Equal(t, []string{"articles", "users"}, last.TableNames)

	t.Run("unchanged schema is skipped", func(t *testing.T) {
		skipped, err := m.Migrate(ctx, blogTables(), migrator.MigrateOptions{})
		require.NoError(t, err)
		assert.True(t, skipped)
	})

	t.Run("force re-runs", func(t *testing.T) {
		skipped, err := m.Migrate(ctx, blogTables(), migrator.MigrateOptions{Force: true})
		require.NoError(t, err)
		assert.False(t, skipped)

		n, err := migrator.TrackingTable().Select().Count().Execute(ctx, driver.NewDB(db))
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("new columns are added", func(t *testing.T) {
		wider := blogTables()
		wider[0] = typedsql.MustNewTable("users",
			typedsql.PrimaryKeyColumn("id").WithOptions("PRIMARY KEY"),
			typedsql.StringColumn("name"),
			typedsql.StringColumn("email").Nullable(),
		)

		plan, err := m.Plan(ctx, wider)
		require.NoError(t, err)
		require.Len(t, plan, 1)
		compiled, err := plan[0].Compile()
		require.NoError(t, err)
		assert.Equal(t, "ALTER TABLE users ADD COLUMN email varchar(256)", compiled.Text)

		skipped, err := m.Migrate(ctx, wider, migrator.MigrateOptions{})
		require.NoError(t, err)
		assert.False(t, skipped)

		status, err := m.GetStatus(ctx, wider)
		require.NoError(t, err)
		assert.True(t, status.TrackingTableExists)
		assert.Zero(t, status.Pending())
	})
}

func TestMigrateDryRun(t *testing.T) {
	ctx := context.Background()
	db := testutil.EmptyDB(t)
	m := migrator.NewMigrator(db)

	var buf bytes.Buffer
	skipped, err := m.Migrate(ctx, blogTables(), migrator.MigrateOptions{DryRun: &buf})
	require.NoError(t, err)
	assert.False(t, skipped)

	out := buf.String()
	assert.Contains(t, out, "-- typedsql migration (dry-run)")
	assert.Contains(t, out, "CREATE TABLE typedsql_migrations (")
	assert.Contains(t, out, "CREATE TABLE users (id serial NOT NULL PRIMARY KEY, name varchar(256) NOT NULL);")
	assert.Contains(t, out, "-- Table Migrations (2 statements)")
	assert.Contains(t, out, "ARRAY['articles', 'users']);")

	status, err := m.GetStatus(ctx, blogTables())
	require.NoError(t, err)
	assert.False(t, status.TrackingTableExists)
	assert.Nil(t, status.LastMigration)
	assert.Equal(t, 2, status.Pending())
}

func TestGetStatusMissingColumns(t *testing.T) {
	ctx := context.Background()
	db := testutil.EmptyDB(t)

	_, err := db.ExecContext(ctx, "CREATE TABLE users (id serial PRIMARY KEY)")
	require.NoError(t, err)

	status, err := migrator.NewMigrator(db).GetStatus(ctx, blogTables())
	require.NoError(t, err)
	require.Len(t, status.Tables, 2)

	assert.Equal(t, migrator.TableStatus{Name: "users", Exists: true, MissingColumns: []string{"name"}}, status.Tables[0])
	assert.Equal(t, migrator.TableStatus{Name: "articles"}, status.Tables[1])
}

func TestMigrateFromFile(t *testing.T) {
	ctx := context.Background()
	db := testutil.EmptyDB(t)

	schema := `
tables:
  - name: notes
    columns:
      - {name: id, type: primary_key, options: PRIMARY KEY}
      - {name: body, type: string, database_type: text}
`
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(schema), 0o600))

	require.NoError(t, migrator.Migrate(ctx, db, path))

	skipped, err := migrator.MigrateWithOptions(ctx, db, path, migrator.MigrateOptions{})
	require.NoError(t, err)
	assert.True(t, skipped)

	require.NoError(t, migrator.MigrateFromString(ctx, db, schema))

	_, err = migrator.MigrateWithOptions(ctx, db, filepath.Join(t.TempDir(), "missing.yaml"), migrator.MigrateOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no schema found")
}
