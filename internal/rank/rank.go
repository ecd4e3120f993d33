// Package rank holds the pure ordering rules of the ranked ladder: the tier
// total order, which tiers contribute LP, how a player's best account is
// chosen and how embedded rows are sorted for display.
package rank

import (
	"sort"
	"strings"

	"lol-dashboard/internal/constants"
	"lol-dashboard/internal/domain"
)

var tierOrder = map[string]int{
	"IRON":        1,
	"BRONZE":      2,
	"SILVER":      3,
	"GOLD":        4,
	"PLATINUM":    5,
	"EMERALD":     6,
	"DIAMOND":     7,
	"MASTER":      8,
	"GRANDMASTER": 9,
	"CHALLENGER":  10,
}

var roleOrder = map[string]int{
	"TOP":     0,
	"JUNGLE":  1,
	"MID":     2,
	"BOT":     3,
	"ADC":     3,
	"SUPPORT": 4,
}

const unknownRolePriority = 5

// TierRank returns the tier's position in the fixed total order, 0 for
// unknown/unranked.
func TierRank(tier string) int {
	return tierOrder[strings.ToUpper(tier)]
}

// LPEligible reports whether a tier's LP counts toward aggregation. Below
// MASTER the ladder ranks by division, so LP is treated as 0.
func LPEligible(tier string) bool {
	return TierRank(tier) >= tierOrder["MASTER"]
}

// EffectiveLP is the LP an account contributes to aggregation.
func EffectiveLP(tier string, lp int) int {
	if LPEligible(tier) {
		return lp
	}
	return 0
}

// RolePriority maps a contract role to its display position. Unknown roles
// sort last.
func RolePriority(role string) int {
	if p, ok := roleOrder[strings.ToUpper(role)]; ok {
		return p
	}
	return unknownRolePriority
}

// accountLess orders accounts best-first: tier rank descending, then
// effective LP descending, then account id ascending as the stable tie-break.
func accountLess(a, b domain.AccountRow) bool {
	ra, rb := TierRank(a.Tier), TierRank(b.Tier)
	if ra != rb {
		return ra > rb
	}
	la, lb := EffectiveLP(a.Tier, a.LP), EffectiveLP(b.Tier, b.LP)
	if la != lb {
		return la > lb
	}
	return a.AccountID < b.AccountID
}

// BestAccount picks the account a player is ranked by. Returns nil for an
// empty slice.
func BestAccount(accounts []domain.AccountRow) *domain.AccountRow {
	if len(accounts) == 0 {
		return nil
	}
	best := accounts[0]
	for _, account := range accounts[1:] {
		if accountLess(account, best) {
			best = account
		}
	}
	return &best
}

// BestLP is the effective LP of the player's best account, 0 when the player
// has no accounts or none at MASTER+.
func BestLP(accounts []domain.AccountRow) int {
	best := BestAccount(accounts)
	if best == nil {
		return 0
	}
	return EffectiveLP(best.Tier, best.LP)
}

// SortAccounts orders a player's accounts best-first, in place.
func SortAccounts(accounts []domain.AccountRow) {
	sort.SliceStable(accounts, func(i, j int) bool {
		return accountLess(accounts[i], accounts[j])
	})
}

// SortPlayersByRole orders a team's players by role priority, in place.
// Ties within a role keep the underlying order.
func SortPlayersByRole(players []domain.PlayerRow) {
	sort.SliceStable(players, func(i, j int) bool {
		return RolePriority(players[i].Role) < RolePriority(players[j].Role)
	})
}

// TeamTotalLP sums the best-account LP of the top contributors, capped at the
// roster size (5). A team with fewer eligible players sums whatever it has.
func TeamTotalLP(players []domain.PlayerRow) int {
	lps := make([]int, len(players))
	for i, player := range players {
		lps[i] = player.TotalLP
	}
	sort.Sort(sort.Reverse(sort.IntSlice(lps)))

	total := 0
	for i, lp := range lps {
		if i >= constants.TopRosterSize {
			break
		}
		total += lp
	}
	return total
}
