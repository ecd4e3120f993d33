package query

import (
	"errors"
	"testing"
)

func TestValidateConditionAcceptsWhitelistedShapes(t *testing.T) {
	valid := []string{
		"t.id IN (?)",
		"t.league IN (?,?,?)",
		"t.league IN (?, ?, ?)",
		"t.region IN (?)",
		"p.id IN (?,?)",
		"pc.role IN (?,?,?,?,?)",
		"a.id IN (?)",
		"a.player_id IN (?,?)",
		"a.region IN (?)",
		"ds.account_id IN (?)",
		"ds.tier IN (?,?,?)",
		"t.is_active = true",
		"pc.end_date IS NULL",
		"pc.is_starter = true",
		"ds.date >= ?",
		"ds.date <= ?",
		"ds.date BETWEEN ? AND ?",
		"t.name ILIKE ?",
		"p.pseudo ILIKE ?",
		"(t.name ILIKE ? OR t.short_name ILIKE ?)",
		"(p.pseudo ILIKE ? OR p.slug ILIKE ?)",
		"SUM(rp.games) >= ?",
		"SUM(rp.wins) >= ?",
		"COALESCE(SUM(rp.games), 0) >= ?",
		"COALESCE(SUM(rp.best_lp), 0) >= ?",
		"COUNT(*) >= ?",
		"rp.games >= ?",
	}

	for _, condition := range valid {
		if err := ValidateCondition(condition); err != nil {
			t.Errorf("ValidateCondition(%q) = %v, want nil", condition, err)
		}
	}
}

func TestValidateConditionNormalizesWhitespace(t *testing.T) {
	cases := []string{
		"  t.is_active = true  ",
		"ds.date   BETWEEN ?   AND ?",
		"t.league\tIN (?, ?)",
	}
	for _, condition := range cases {
		if err := ValidateCondition(condition); err != nil {
			t.Errorf("ValidateCondition(%q) = %v, want nil", condition, err)
		}
	}
}

func TestValidateConditionRejectsHostileFragments(t *testing.T) {
	invalid := []string{
		"",
		"t.league IN ()",
		"t.league = 'LEC'",
		"t.is_active = false",
		"pc.end_date IS NOT NULL",
		"t.name LIKE ?",
		"ds.date >= ?; DROP TABLE teams",
		"t.is_active = true -- comment",
		"t.is_active = true /* comment */",
		"t.id IN (SELECT id FROM teams)",
		"t.league IN (?) UNION SELECT * FROM players",
		"t.league IN (?) OR 1=1",
		"x.league IN (?)",
		"t.password IN (?)",
		"teams.league IN (?)",
		"SUM(ds.games) >= 10",
		"COUNT(*) >= ?; COMMIT",
	}

	for _, condition := range invalid {
		err := ValidateCondition(condition)
		if err == nil {
			t.Errorf("ValidateCondition(%q) = nil, want InvalidFilterError", condition)
			continue
		}
		var invalidErr *InvalidFilterError
		if !errors.As(err, &invalidErr) {
			t.Errorf("ValidateCondition(%q) = %T, want *InvalidFilterError", condition, err)
		}
	}
}

func TestValidateConditions(t *testing.T) {
	if err := ValidateConditions(nil); err != nil {
		t.Fatalf("empty condition list should be valid, got %v", err)
	}

	err := ValidateConditions([]string{"t.is_active = true", "t.league = 'LEC'", "ds.date >= ?"})
	var invalidErr *InvalidFilterError
	if !errors.As(err, &invalidErr) {
		t.Fatalf("expected InvalidFilterError, got %v", err)
	}
	if invalidErr.Condition != "t.league = 'LEC'" {
		t.Fatalf("expected failure on first invalid element, got %q", invalidErr.Condition)
	}
}
