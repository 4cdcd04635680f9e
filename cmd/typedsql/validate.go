package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pthm/typedsql"
	"github.com/pthm/typedsql/internal/cli"
	"github.com/pthm/typedsql/pkg/parser"
)

var validateSchema string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate schema syntax",
	Long:  `Validate a schema file: YAML syntax, column types and unique table and column names.`,
	Example: `  # Validate a specific schema file
  typedsql validate --schema db/schema.yaml

  # Validate using config file settings
  typedsql validate`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tables, err := loadSchema(resolveString(validateSchema, cfg.Schema))
		if err != nil {
			return err
		}

		if !quiet {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Schema is valid. Found %d tables:\n", len(tables))
			for _, t := range tables {
				_, _ = fmt.Fprintf(out, "  - %s (%d columns)\n", t.Name(), len(t.Definitions()))
			}
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateSchema, "schema", "", "path to schema file")
}

// loadSchema parses the schema file at path, mapping failures to
// ExitSchemaParse.
func loadSchema(path string) ([]*typedsql.Table, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, cli.SchemaParseError(fmt.Sprintf("schema not found: %s", path), nil)
	}
	tables, err := parser.ParseSchema(path)
	if err != nil {
		return nil, cli.SchemaParseError("parsing schema", err)
	}
	return tables, nil
}
