// Package query holds the building blocks the dashboard aggregator composes
// SQL from: a closed whitelist of filter fragments, an IN-clause builder, a
// placeholder rebinder and a timeout guard. Nothing in this package ever
// interpolates a user value into SQL text; values always travel as bound
// parameters next to a pre-approved fragment.
package query

import (
	"fmt"
	"regexp"
	"strings"
)

// InvalidFilterError means a condition fragment matched none of the
// whitelisted shapes. It is never recovered from: either an internal call
// site composed something it should not have, or a hostile fragment made it
// this far.
type InvalidFilterError struct {
	Condition string
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid filter condition: %q", e.Condition)
}

// Table aliases the whitelist is anchored to:
//
//	t  = teams
//	p  = players
//	pc = player_contracts
//	a  = lol_accounts
//	ds = lol_daily_stats
//	rp = the per-entity rollup CTE aggregated over in HAVING clauses
//
// Every fragment is matched end-to-end, so statement terminators, comments,
// UNIONs, subqueries, unknown aliases and inline literals all fail by simply
// not being on the list. Fixed literals are limited to "= true" and
// "IS NULL"; everything else binds through ? placeholders.
var allowedConditions = []*regexp.Regexp{
	// multi-value IN filters
	regexp.MustCompile(`^t\.id IN \(\?(?:, ?\?)*\)$`),
	regexp.MustCompile(`^t\.league IN \(\?(?:, ?\?)*\)$`),
	regexp.MustCompile(`^t\.region IN \(\?(?:, ?\?)*\)$`),
	regexp.MustCompile(`^p\.id IN \(\?(?:, ?\?)*\)$`),
	regexp.MustCompile(`^pc\.role IN \(\?(?:, ?\?)*\)$`),
	regexp.MustCompile(`^a\.id IN \(\?(?:, ?\?)*\)$`),
	regexp.MustCompile(`^a\.player_id IN \(\?(?:, ?\?)*\)$`),
	regexp.MustCompile(`^a\.region IN \(\?(?:, ?\?)*\)$`),
	regexp.MustCompile(`^ds\.account_id IN \(\?(?:, ?\?)*\)$`),
	regexp.MustCompile(`^ds\.tier IN \(\?(?:, ?\?)*\)$`),

	// fixed boolean / NULL eligibility literals
	regexp.MustCompile(`^t\.is_active = true$`),
	regexp.MustCompile(`^pc\.end_date IS NULL$`),
	regexp.MustCompile(`^pc\.is_starter = true$`),

	// date bounds
	regexp.MustCompile(`^ds\.date >= \?$`),
	regexp.MustCompile(`^ds\.date <= \?$`),
	regexp.MustCompile(`^ds\.date BETWEEN \? AND \?$`),

	// case-insensitive search
	regexp.MustCompile(`^t\.name ILIKE \?$`),
	regexp.MustCompile(`^p\.pseudo ILIKE \?$`),
	regexp.MustCompile(`^\(t\.name ILIKE \? OR t\.short_name ILIKE \?\)$`),
	regexp.MustCompile(`^\(p\.pseudo ILIKE \? OR p\.slug ILIKE \?\)$`),

	// aggregate HAVING forms over the rollup relation
	regexp.MustCompile(`^SUM\(rp\.games\) >= \?$`),
	regexp.MustCompile(`^SUM\(rp\.wins\) >= \?$`),
	regexp.MustCompile(`^COALESCE\(SUM\(rp\.games\), ?0\) >= \?$`),
	regexp.MustCompile(`^COALESCE\(SUM\(rp\.best_lp\), ?0\) >= \?$`),
	regexp.MustCompile(`^COUNT\(\*\) >= \?$`),
	regexp.MustCompile(`^rp\.games >= \?$`),
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// ValidateCondition accepts a fragment only when it matches one of the
// whitelisted shapes. Whitespace is collapsed and trimmed before matching;
// no other rewriting happens.
func ValidateCondition(condition string) error {
	normalized := strings.TrimSpace(whitespaceRe.ReplaceAllString(condition, " "))
	for _, pattern := range allowedConditions {
		if pattern.MatchString(normalized) {
			return nil
		}
	}
	return &InvalidFilterError{Condition: condition}
}

// ValidateConditions fails on the first invalid element. An empty slice is
// valid.
func ValidateConditions(conditions []string) error {
	for _, condition := range conditions {
		if err := ValidateCondition(condition); err != nil {
			return err
		}
	}
	return nil
}
