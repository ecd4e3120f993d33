package query

import (
	"strconv"
	"strings"
)

// Rebind rewrites ? placeholders to the $1..$N form pgx executes. Fragments
// are composed and validated with ? so the whitelist can count placeholders
// independently of their final positions.
func Rebind(sql string) string {
	var b strings.Builder
	b.Grow(len(sql) + 8)

	n := 0
	for i := 0; i < len(sql); i++ {
		if sql[i] != '?' {
			b.WriteByte(sql[i])
			continue
		}
		n++
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}
