package query

import "strings"

// EscapeLike neutralizes ILIKE wildcards in raw search input. Backslash must
// be replaced first, otherwise the escapes added for % and _ would themselves
// get re-escaped.
func EscapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
