package rank

import (
	"testing"

	"lol-dashboard/internal/domain"
)

func TestTierRankTotalOrder(t *testing.T) {
	tiers := []string{"IRON", "BRONZE", "SILVER", "GOLD", "PLATINUM", "EMERALD", "DIAMOND", "MASTER", "GRANDMASTER", "CHALLENGER"}
	for i := 1; i < len(tiers); i++ {
		if TierRank(tiers[i-1]) >= TierRank(tiers[i]) {
			t.Fatalf("expected %s < %s", tiers[i-1], tiers[i])
		}
	}
	if TierRank("UNRANKED") != 0 {
		t.Fatalf("unknown tier should rank 0")
	}
}

func TestEffectiveLPGatesBelowMaster(t *testing.T) {
	if got := EffectiveLP("DIAMOND", 850); got != 0 {
		t.Fatalf("DIAMOND LP must be 0, got %d", got)
	}
	if got := EffectiveLP("MASTER", 340); got != 340 {
		t.Fatalf("MASTER LP must pass through, got %d", got)
	}
	if got := EffectiveLP("CHALLENGER", 1200); got != 1200 {
		t.Fatalf("CHALLENGER LP must pass through, got %d", got)
	}
}

func TestBestAccountTierBeatsLP(t *testing.T) {
	accounts := []domain.AccountRow{
		{AccountID: 1, Tier: "MASTER", LP: 500},
		{AccountID: 2, Tier: "GRANDMASTER", LP: 0},
		{AccountID: 3, Tier: "CHALLENGER", LP: 100},
	}
	best := BestAccount(accounts)
	if best == nil || best.AccountID != 3 {
		t.Fatalf("expected CHALLENGER account, got %+v", best)
	}
}

func TestBestAccountLPBreaksTierTies(t *testing.T) {
	accounts := []domain.AccountRow{
		{AccountID: 1, Tier: "MASTER", LP: 100},
		{AccountID: 2, Tier: "MASTER", LP: 500},
		{AccountID: 3, Tier: "MASTER", LP: 200},
	}
	if got := BestLP(accounts); got != 500 {
		t.Fatalf("expected best LP 500, got %d", got)
	}
}

func TestBestAccountEqualTierAndLPPicksLowestID(t *testing.T) {
	accounts := []domain.AccountRow{
		{AccountID: 9, Tier: "MASTER", LP: 300},
		{AccountID: 4, Tier: "MASTER", LP: 300},
	}
	best := BestAccount(accounts)
	if best == nil || best.AccountID != 4 {
		t.Fatalf("expected account 4, got %+v", best)
	}
}

func TestBestLPBelowMasterIsZero(t *testing.T) {
	accounts := []domain.AccountRow{
		{AccountID: 1, Tier: "DIAMOND", LP: 99},
		{AccountID: 2, Tier: "GOLD", LP: 80},
	}
	if got := BestLP(accounts); got != 0 {
		t.Fatalf("expected 0 LP below MASTER, got %d", got)
	}
	if BestLP(nil) != 0 {
		t.Fatal("expected 0 LP for no accounts")
	}
}

func TestSortAccounts(t *testing.T) {
	accounts := []domain.AccountRow{
		{AccountID: 1, Tier: "DIAMOND", LP: 999},
		{AccountID: 2, Tier: "CHALLENGER", LP: 50},
		{AccountID: 3, Tier: "MASTER", LP: 400},
		{AccountID: 4, Tier: "GRANDMASTER", LP: 10},
	}
	SortAccounts(accounts)

	want := []int64{2, 4, 3, 1}
	for i, id := range want {
		if accounts[i].AccountID != id {
			t.Fatalf("unexpected order at %d: got %d, want %d", i, accounts[i].AccountID, id)
		}
	}
}

func TestSortPlayersByRole(t *testing.T) {
	players := []domain.PlayerRow{
		{PlayerID: 1, Role: "SUPPORT"},
		{PlayerID: 2, Role: "TOP"},
		{PlayerID: 3, Role: "COACH"},
		{PlayerID: 4, Role: "MID"},
		{PlayerID: 5, Role: "BOT"},
		{PlayerID: 6, Role: "JUNGLE"},
	}
	SortPlayersByRole(players)

	want := []int64{2, 6, 4, 5, 1, 3}
	for i, id := range want {
		if players[i].PlayerID != id {
			t.Fatalf("unexpected order at %d: got %d, want %d", i, players[i].PlayerID, id)
		}
	}
}

func TestSortPlayersByRoleIsStableWithinRole(t *testing.T) {
	players := []domain.PlayerRow{
		{PlayerID: 10, Role: "MID"},
		{PlayerID: 11, Role: "MID"},
		{PlayerID: 12, Role: "TOP"},
	}
	SortPlayersByRole(players)

	if players[0].PlayerID != 12 || players[1].PlayerID != 10 || players[2].PlayerID != 11 {
		t.Fatalf("unexpected order: %+v", players)
	}
}

func TestTeamTotalLPTopFiveOnly(t *testing.T) {
	players := []domain.PlayerRow{
		{TotalLP: 1000}, {TotalLP: 900}, {TotalLP: 800},
		{TotalLP: 700}, {TotalLP: 600}, {TotalLP: 500}, {TotalLP: 400},
	}
	if got := TeamTotalLP(players); got != 4000 {
		t.Fatalf("expected top-5 sum 4000, got %d", got)
	}
}

func TestTeamTotalLPShortRoster(t *testing.T) {
	players := []domain.PlayerRow{{TotalLP: 300}, {TotalLP: 200}}
	if got := TeamTotalLP(players); got != 500 {
		t.Fatalf("expected 500, got %d", got)
	}
	if TeamTotalLP(nil) != 0 {
		t.Fatal("expected 0 for empty roster")
	}
}
