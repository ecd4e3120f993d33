package query

import (
	"errors"
	"strings"
)

// ErrEmptyInClause is a programmer error: callers must branch around
// optional filters before building the clause, never pass an empty set.
var ErrEmptyInClause = errors.New("IN clause requires at least one value")

// BuildInClause emits "<column> IN (?,...)" with exactly len(values)
// placeholders and returns the values unchanged, in input order, for binding.
func BuildInClause(column string, values []any) (string, []any, error) {
	if len(values) == 0 {
		return "", nil, ErrEmptyInClause
	}

	placeholders := make([]string, len(values))
	for i := range placeholders {
		placeholders[i] = "?"
	}

	return column + " IN (" + strings.Join(placeholders, ",") + ")", values, nil
}

// Strings converts a string slice to the []any shape BuildInClause binds.
func Strings(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// Int64s converts an id slice to the []any shape BuildInClause binds.
func Int64s(values []int64) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
