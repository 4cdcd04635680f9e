package typedsql

import "github.com/pthm/typedsql/internal/sqldsl"

// Values accumulates bound parameters during a compilation pass.
type Values []any

// bind returns a new list with v appended and the placeholder that refers
// to it. The receiver's backing array is never written, so earlier
// snapshots and their placeholders stay valid.
func (vs Values) bind(v any) (sqldsl.Placeholder, Values) {
	next := append(vs[:len(vs):len(vs)], v)
	return sqldsl.Placeholder(len(next)), next
}
