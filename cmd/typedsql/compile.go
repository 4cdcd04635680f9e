package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pthm/typedsql"
	"github.com/pthm/typedsql/internal/cli"
)

var compileSchema string

var compileCmd = &cobra.Command{
	Use:   "compile [table...]",
	Short: "Print CREATE TABLE statements",
	Long:  `Print the CREATE TABLE statement of every table in the schema, or of the named tables. No database is needed.`,
	Example: `  # Print DDL for every table
  typedsql compile

  # Print DDL for two tables
  typedsql compile users articles`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tables, err := loadSchema(resolveString(compileSchema, cfg.Schema))
		if err != nil {
			return err
		}

		selected, err := selectTables(tables, args)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, t := range selected {
			compiled, err := t.Migrate().Create().Compile()
			if err != nil {
				return cli.SchemaParseError("compiling "+t.Name(), err)
			}
			_, _ = fmt.Fprintf(out, "%s;\n", compiled.Text)
		}
		return nil
	},
}

func init() {
	compileCmd.Flags().StringVar(&compileSchema, "schema", "", "path to schema file")
}

// selectTables returns the named tables in argument order, or every table
// when names is empty.
func selectTables(tables []*typedsql.Table, names []string) ([]*typedsql.Table, error) {
	if len(names) == 0 {
		return tables, nil
	}
	byName := make(map[string]*typedsql.Table, len(tables))
	for _, t := range tables {
		byName[t.Name()] = t
	}
	selected := make([]*typedsql.Table, 0, len(names))
	for _, n := range names {
		t, ok := byName[n]
		if !ok {
			return nil, cli.GeneralError(fmt.Sprintf("table %s is not declared in the schema", n), nil)
		}
		selected = append(selected, t)
	}
	return selected, nil
}
