package db

import (
	"strconv"
	"strings"
)

// Rebind rewrites '?' placeholders to '$n' for postgres. Queries are written
// once in '?' form; queries must not contain literal question marks.
func Rebind(dialect, query string) string {
	if dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}
