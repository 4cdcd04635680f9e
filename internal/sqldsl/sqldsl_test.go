package sqldsl

import "testing"

func TestExpr_SQL(t *testing.T) {
	col := Col{Table: "users", Column: "id"}
	tests := []struct {
		name string
		expr Expr
		want string
	}{
		{"qualified column", col, `"users"."id"`},
		{"bare column", Col{Column: "id"}, `"id"`},
		{"quote escaping", Col{Table: `we"ird`, Column: "id"}, `"we""ird"."id"`},
		{"placeholder", Placeholder(12), "$12"},
		{"alias", Alias{Expr: col, Name: "users_id"}, `"users"."id" as "users_id"`},
		{"count", Func{Name: "count", Args: []Expr{Star}}, "count(*)"},
		{"compare", Compare{Left: col, Op: OpEq, Right: Placeholder(1)}, `"users"."id" = $1`},
		{"not like", Compare{Left: col, Op: OpNotLike, Right: Placeholder(2)}, `"users"."id" NOT LIKE $2`},
		{"is null", IsNull{Expr: col}, `"users"."id" IS NULL`},
		{"is not null", IsNotNull{Expr: col}, `"users"."id" IS NOT NULL`},
		{"and", And{Left: Raw("a"), Right: Raw("b")}, "(a) AND (b)"},
		{"or", Or{Left: Raw("a"), Right: Raw("b")}, "(a) OR (b)"},
		{"not", Not{Expr: Raw("a")}, "NOT (a)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.expr.SQL(); got != tt.want {
				t.Errorf("SQL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSelectStmt_SQL(t *testing.T) {
	id := Col{Table: "users", Column: "id"}
	tests := []struct {
		name string
		stmt SelectStmt
		want string
	}{
		{
			name: "star",
			stmt: SelectStmt{From: "users"},
			want: "SELECT * FROM users",
		},
		{
			name: "where",
			stmt: SelectStmt{
				ColumnExprs: []Expr{Alias{Expr: id, Name: "users_id"}},
				From:        "users",
				Where:       Compare{Left: id, Op: OpEq, Right: Placeholder(1)},
			},
			want: `SELECT "users"."id" as "users_id" FROM users WHERE "users"."id" = $1`,
		},
		{
			name: "joins in order",
			stmt: SelectStmt{
				ColumnExprs: []Expr{Func{Name: "count", Args: []Expr{Star}}},
				From:        "a",
				Joins: []JoinClause{
					{Type: JoinInner, Table: "b", On: Raw("x")},
					{Type: JoinLeft, Table: "c", On: Raw("y")},
				},
			},
			want: "SELECT count(*) FROM a INNER JOIN b ON x LEFT JOIN c ON y",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stmt.SQL(); got != tt.want {
				t.Errorf("SQL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMutation_SQL(t *testing.T) {
	tests := []struct {
		name string
		stmt Expr
		want string
	}{
		{
			name: "insert single row",
			stmt: InsertStmt{
				Table:     "users",
				Columns:   []string{"name"},
				Rows:      [][]Expr{{Placeholder(1)}},
				Returning: Star,
			},
			want: "INSERT INTO users(name) VALUES ($1) RETURNING *",
		},
		{
			name: "insert multiple rows",
			stmt: InsertStmt{
				Table:     "users",
				Columns:   []string{"id", "name"},
				Rows:      [][]Expr{{Placeholder(1), Placeholder(2)}, {Placeholder(3), Placeholder(4)}},
				Returning: Star,
			},
			want: "INSERT INTO users(id, name) VALUES ($1, $2), ($3, $4) RETURNING *",
		},
		{
			name: "insert select",
			stmt: InsertSelectStmt{Table: "archive", Query: SelectStmt{From: "users"}},
			want: "INSERT INTO archive (SELECT * FROM users)",
		},
		{
			name: "update",
			stmt: UpdateStmt{
				Table:     "users",
				Set:       []Assignment{{Column: "name", Value: Placeholder(1)}},
				Where:     Compare{Left: Col{Table: "users", Column: "id"}, Op: OpEq, Right: Placeholder(2)},
				Returning: Star,
			},
			want: `UPDATE users SET name = $1 WHERE "users"."id" = $2 RETURNING *`,
		},
		{
			name: "update without where",
			stmt: UpdateStmt{
				Table: "users",
				Set:   []Assignment{{Column: "a", Value: Placeholder(1)}, {Column: "b", Value: Placeholder(2)}},
			},
			want: "UPDATE users SET a = $1, b = $2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stmt.SQL(); got != tt.want {
				t.Errorf("SQL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDDL_SQL(t *testing.T) {
	defs := []ColumnDef{
		{Name: "id", Type: "serial", NotNull: true, Options: "PRIMARY KEY"},
		{Name: "name", Type: "varchar(256)"},
	}
	tests := []struct {
		name string
		stmt Expr
		want string
	}{
		{
			name: "create table",
			stmt: CreateTableStmt{Table: "users", Columns: defs},
			want: "CREATE TABLE users (id serial NOT NULL PRIMARY KEY, name varchar(256))",
		},
		{
			name: "alter table",
			stmt: AlterTableStmt{Table: "users", AddColumns: defs},
			want: "ALTER TABLE users ADD COLUMN id serial NOT NULL PRIMARY KEY, ADD COLUMN name varchar(256)",
		},
		{
			name: "alter table without columns",
			stmt: AlterTableStmt{Table: "users"},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stmt.SQL(); got != tt.want {
				t.Errorf("SQL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClauses(t *testing.T) {
	if got := Clauses("a", "", "b", ""); got != "a b" {
		t.Errorf("Clauses() = %q, want %q", got, "a b")
	}
	if got := Clauses(); got != "" {
		t.Errorf("Clauses() = %q, want empty", got)
	}
}
