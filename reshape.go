package typedsql

import "strings"

// Reshape splits flat result rows into one Row per table in scope.
//
// Projected columns are aliased "<table>_<column>". Each key is assigned to
// the table with the longest matching prefix, the prefix is stripped and the
// rest lower-cased. Keys matching no table in scope are dropped.
func (q Query) Reshape(rows []Row) [][]Row {
	tables := q.Tables()
	prefixes := make([]string, len(tables))
	for i, t := range tables {
		prefixes[i] = t.name + "_"
	}

	out := make([][]Row, len(rows))
	for n, flat := range rows {
		tuple := make([]Row, len(tables))
		for i := range tuple {
			tuple[i] = Row{}
		}
		for key, v := range flat {
			idx := longestPrefix(prefixes, key)
			if idx < 0 {
				continue
			}
			tuple[idx][strings.ToLower(key[len(prefixes[idx]):])] = v
		}
		out[n] = tuple
	}
	return out
}

func longestPrefix(prefixes []string, key string) int {
	best := -1
	for i, p := range prefixes {
		if strings.HasPrefix(key, p) && (best < 0 || len(p) > len(prefixes[best])) {
			best = i
		}
	}
	return best
}
