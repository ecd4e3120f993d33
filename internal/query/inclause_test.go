package query

import (
	"errors"
	"strings"
	"testing"
)

func TestBuildInClauseSingleValue(t *testing.T) {
	fragment, values, err := BuildInClause("t.league", []any{"LEC"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fragment != "t.league IN (?)" {
		t.Fatalf("unexpected fragment: %q", fragment)
	}
	if len(values) != 1 || values[0] != "LEC" {
		t.Fatalf("unexpected values: %v", values)
	}
}

func TestBuildInClauseMultipleValuesPreserveOrder(t *testing.T) {
	fragment, values, err := BuildInClause("pc.role", []any{"TOP", "MID", "BOT"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.Count(fragment, "?"); got != 3 {
		t.Fatalf("expected 3 placeholders, got %d in %q", got, fragment)
	}
	if fragment != "pc.role IN (?,?,?)" {
		t.Fatalf("unexpected fragment: %q", fragment)
	}
	for i, want := range []string{"TOP", "MID", "BOT"} {
		if values[i] != want {
			t.Fatalf("values out of order: %v", values)
		}
	}
}

func TestBuildInClauseMatchesWhitelist(t *testing.T) {
	fragment, _, err := BuildInClause("t.league", Strings([]string{"LEC", "LCS"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateCondition(fragment); err != nil {
		t.Fatalf("built fragment rejected by whitelist: %v", err)
	}
}

func TestBuildInClauseEmptyValues(t *testing.T) {
	_, _, err := BuildInClause("t.league", nil)
	if !errors.Is(err, ErrEmptyInClause) {
		t.Fatalf("expected ErrEmptyInClause, got %v", err)
	}
}
