package sqlstore

import (
	"strconv"
	"strings"
)

// rebind converts "?" placeholders into the dialect's bind syntax.
//
//	SQLite:   WHERE id = ? AND user_id = ?     (unchanged)
//	Postgres: WHERE id = $1 AND user_id = $2
//
// Queries in this package never contain a literal "?" inside a string, so a
// plain left-to-right scan is enough.
func rebind(d Dialect, query string) string {
	if d != DialectPostgres || !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
