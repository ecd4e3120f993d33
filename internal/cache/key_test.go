package cache

import (
	"regexp"
	"testing"
)

func TestBuildKeyOrderIndependentObjectKeys(t *testing.T) {
	a := BuildKey("teams", map[string]any{"a": 1, "b": 2})
	b := BuildKey("teams", map[string]any{"b": 2, "a": 1})
	if a != b {
		t.Fatalf("key order must not matter: %q != %q", a, b)
	}
}

func TestBuildKeyOrderIndependentArrays(t *testing.T) {
	a := BuildKey("teams", map[string]any{"x": []any{1, "a", 2}})
	b := BuildKey("teams", map[string]any{"x": []any{"a", 2, 1}})
	if a != b {
		t.Fatalf("array order must not matter: %q != %q", a, b)
	}

	c := BuildKey("teams", map[string]any{"leagues": []string{"LEC", "LCS"}})
	d := BuildKey("teams", map[string]any{"leagues": []string{"LCS", "LEC"}})
	if c != d {
		t.Fatalf("string slice order must not matter: %q != %q", c, d)
	}
}

func TestBuildKeyElidesEmptyValues(t *testing.T) {
	base := BuildKey("teams", map[string]any{"league": "LEC"})
	cases := []map[string]any{
		{"league": "LEC", "search": ""},
		{"league": "LEC", "roles": []string{}},
		{"league": "LEC", "minGames": nil},
		{"league": "LEC", "nested": map[string]any{"unused": ""}},
	}
	for i, params := range cases {
		if got := BuildKey("teams", params); got != base {
			t.Errorf("case %d: empty value must hash as absent: %q != %q", i, got, base)
		}
	}
}

func TestBuildKeyDistinguishesSemantics(t *testing.T) {
	keys := map[string]bool{}
	for _, params := range []map[string]any{
		{"league": "LEC"},
		{"league": "LCS"},
		{"league": "LEC", "page": 2},
		{"flag": true},
		{"flag": 1},
	} {
		keys[BuildKey("teams", params)] = true
	}
	if len(keys) != 5 {
		t.Fatalf("semantically different params collided: %d unique keys", len(keys))
	}
}

func TestBuildKeyPrefixSeparatesNamespaces(t *testing.T) {
	params := map[string]any{"league": "LEC"}
	if BuildKey("teams", params) == BuildKey("players", params) {
		t.Fatal("different prefixes must yield different keys")
	}
}

func TestBuildKeyFormat(t *testing.T) {
	format := regexp.MustCompile(`^dashboard:teams:[a-f0-9]{16}$`)
	key := BuildKey("teams", map[string]any{"league": "LEC", "page": 1})
	if !format.MatchString(key) {
		t.Fatalf("key %q does not match expected format", key)
	}
}

func TestBuildKeyDeterministic(t *testing.T) {
	params := map[string]any{
		"startDate": "2026-01-01",
		"endDate":   "2026-01-31",
		"leagues":   []string{"LEC", "LCS", "LCK"},
		"page":      3,
		"perPage":   25,
	}
	first := BuildKey("players", params)
	for i := 0; i < 10; i++ {
		if got := BuildKey("players", params); got != first {
			t.Fatalf("key not deterministic: %q != %q", got, first)
		}
	}
}
