package migrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/typedsql"
)

func TestComputeSchemaChecksum(t *testing.T) {
	users := typedsql.MustNewTable("users", typedsql.PrimaryKeyColumn("id"), typedsql.StringColumn("name"))
	same := typedsql.MustNewTable("users", typedsql.PrimaryKeyColumn("id"), typedsql.StringColumn("name"))
	wider := typedsql.MustNewTable("users", typedsql.PrimaryKeyColumn("id"), typedsql.StringColumn("name"), typedsql.NumberColumn("age"))

	a, err := ComputeSchemaChecksum([]*typedsql.Table{users})
	require.NoError(t, err)
	b, err := ComputeSchemaChecksum([]*typedsql.Table{same})
	require.NoError(t, err)
	c, err := ComputeSchemaChecksum([]*typedsql.Table{wider})
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestComputeSchemaChecksumInvalidColumn(t *testing.T) {
	bad := typedsql.MustNewTable("bad", typedsql.ColumnDef{Name: "x"})
	_, err := ComputeSchemaChecksum([]*typedsql.Table{bad})
	require.Error(t, err)
	assert.True(t, typedsql.IsUnknownColumnTypeErr(err))
}

func TestCheckTables(t *testing.T) {
	users := typedsql.MustNewTable("users", typedsql.PrimaryKeyColumn("id"))
	tests := []struct {
		name    string
		tables  []*typedsql.Table
		wantErr string
	}{
		{"ok", []*typedsql.Table{users}, ""},
		{"empty", nil, "no tables"},
		{"duplicate", []*typedsql.Table{users, typedsql.MustNewTable("USERS", typedsql.PrimaryKeyColumn("id"))}, "duplicate table"},
		{"reserved", []*typedsql.Table{TrackingTable()}, "reserved"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkTables(tt.tables)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestShouldSkipMigration(t *testing.T) {
	assert.False(t, shouldSkipMigration(nil, "abc"))
	assert.True(t, shouldSkipMigration(&MigrationRecord{SchemaChecksum: "abc", FormatVersion: FormatVersion}, "abc"))
	assert.False(t, shouldSkipMigration(&MigrationRecord{SchemaChecksum: "abc", FormatVersion: "0"}, "abc"))
	assert.False(t, shouldSkipMigration(&MigrationRecord{SchemaChecksum: "def", FormatVersion: FormatVersion}, "abc"))
}

func TestStatusPending(t *testing.T) {
	s := &Status{Tables: []TableStatus{
		{Name: "a", Exists: true},
		{Name: "b"},
		{Name: "c", Exists: true, MissingColumns: []string{"x"}},
	}}
	assert.Equal(t, 2, s.Pending())
	assert.True(t, s.Tables[0].UpToDate())
	assert.False(t, s.Tables[2].UpToDate())
}

func TestTableNamesSorted(t *testing.T) {
	tables := []*typedsql.Table{
		typedsql.MustNewTable("users", typedsql.PrimaryKeyColumn("id")),
		typedsql.MustNewTable("articles", typedsql.PrimaryKeyColumn("id")),
	}
	assert.Equal(t, []string{"articles", "users"}, tableNames(tables))
}
