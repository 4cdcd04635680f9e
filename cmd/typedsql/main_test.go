package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/typedsql/internal/cli"
	"github.com/pthm/typedsql/internal/testutil"
)

const testSchema = `
tables:
  - name: users
    columns:
      - {name: id, type: primary_key, options: PRIMARY KEY}
      - {name: name, type: string}
  - name: articles
    columns:
      - {name: id, type: primary_key, options: PRIMARY KEY}
      - {name: title, type: string, database_type: text}
      - {name: userId, type: number}
`

// setup writes a config file and schema into a temp dir.
func setup(t *testing.T, schema string) (configFile, schemaFile string) {
	t.Helper()
	dir := t.TempDir()
	schemaFile = filepath.Join(dir, "schema.yaml")
	require.NoError(t, os.WriteFile(schemaFile, []byte(schema), 0o600))
	configFile = filepath.Join(dir, "typedsql.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("schema: "+schemaFile+"\nlog:\n  level: error\n"), 0o600))
	return configFile, schemaFile
}

// run executes the CLI with args and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	// Flag variables are package globals shared across runs.
	validateSchema, compileSchema = "", ""
	migrateDB, migrateSchema, migrateDryRun, migrateForce, migrateConfirm = "", "", false, false, false
	statusDB, statusSchema = "", ""
	doctorDB, doctorSchema, doctorVerbose = "", "", false
	cfgFile, configShowSource, quiet, verbose = "", false, false, 0
	versionCheck = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestValidate(t *testing.T) {
	configFile, _ := setup(t, testSchema)

	out, err := run(t, "--config", configFile, "validate")
	require.NoError(t, err)
	assert.Equal(t, "Schema is valid. Found 2 tables:\n  - users (2 columns)\n  - articles (3 columns)\n", out)
}

func TestValidateInvalid(t *testing.T) {
	configFile, _ := setup(t, "tables:\n  - name: t\n    columns: [{name: a, type: blob}]\n")

	_, err := run(t, "--config", configFile, "validate")
	require.Error(t, err)
	assert.Equal(t, cli.ExitSchemaParse, cli.ExitCode(err))

	_, err = run(t, "--config", configFile, "validate", "--schema", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, cli.ExitSchemaParse, cli.ExitCode(err))
}

func TestCompile(t *testing.T) {
	configFile, _ := setup(t, testSchema)

	out, err := run(t, "--config", configFile, "compile")
	require.NoError(t, err)
	assert.Equal(t,
		"CREATE TABLE users (id serial NOT NULL PRIMARY KEY, name varchar(256) NOT NULL);\n"+
			"CREATE TABLE articles (id serial NOT NULL PRIMARY KEY, title text NOT NULL, userId bigint NOT NULL);\n",
		out)

	out, err = run(t, "--config", configFile, "compile", "articles")
	require.NoError(t, err)
	assert.NotContains(t, out, "users")

	_, err = run(t, "--config", configFile, "compile", "comments")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "comments is not declared")
}

func TestConfigShow(t *testing.T) {
	configFile, schemaFile := setup(t, testSchema)
	t.Setenv("TYPEDSQL_DATABASE_PASSWORD", "hunter2")

	out, err := run(t, "--config", configFile, "config", "show", "--source")
	require.NoError(t, err)
	assert.Contains(t, out, "Config file: "+configFile)
	assert.Contains(t, out, "schema: "+schemaFile)
	assert.Contains(t, out, "********")
	assert.NotContains(t, out, "hunter2")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "typedsql ")
}

func TestMigrateAndStatus(t *testing.T) {
	configFile, _ := setup(t, testSchema)
	dsn := testutil.DSN(t)

	out, err := run(t, "--config", configFile, "status", "--db", dsn)
	require.Error(t, err)
	assert.Equal(t, cli.ExitPending, cli.ExitCode(err))
	assert.Contains(t, out, "2 tables need migrating")

	out, err = run(t, "--config", configFile, "migrate", "--db", dsn, "--dry-run", "-q")
	require.NoError(t, err)
	assert.Contains(t, out, "CREATE TABLE users (")

	out, err = run(t, "--config", configFile, "migrate", "--db", dsn)
	require.NoError(t, err)
	assert.Contains(t, out, "Schema applied successfully (2 tables).")

	out, err = run(t, "--config", configFile, "migrate", "--db", dsn)
	require.NoError(t, err)
	assert.Contains(t, out, "Schema unchanged, migration skipped.")

	out, err = run(t, "--config", configFile, "status", "--db", dsn)
	require.NoError(t, err)
	assert.Contains(t, out, "up to date")
}

func TestMigrateUnreachableDatabase(t *testing.T) {
	configFile, _ := setup(t, testSchema)

	_, err := run(t, "--config", configFile, "migrate", "--db", "postgres://nobody@127.0.0.1:1/none?sslmode=disable&connect_timeout=1")
	require.Error(t, err)
	assert.Equal(t, cli.ExitDBConnect, cli.ExitCode(err))
}
