package server

import (
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"lol-dashboard/internal/domain"
)

func TestParseLeaderboardFilters(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		wantErr bool
		check   func(t *testing.T, f domain.LeaderboardFilters)
	}{
		{
			name:   "full filter set",
			target: "/api/dashboard/teams?startDate=2026-01-01&endDate=2026-01-31&leagues=LEC,LFL&roles=TOP,MID&minGames=20&search=Kar&page=2&perPage=50&sort=lp",
			check: func(t *testing.T, f domain.LeaderboardFilters) {
				if f.StartDate.Format("2006-01-02") != "2026-01-01" {
					t.Errorf("startDate = %v", f.StartDate)
				}
				if len(f.Leagues) != 2 || f.Leagues[1] != "LFL" {
					t.Errorf("leagues = %v", f.Leagues)
				}
				if len(f.Roles) != 2 {
					t.Errorf("roles = %v", f.Roles)
				}
				if f.MinGames != 20 || f.Search != "Kar" || f.Page != 2 || f.PerPage != 50 || f.Sort != "lp" {
					t.Errorf("filters = %+v", f)
				}
			},
		},
		{
			name:   "defaults",
			target: "/api/dashboard/teams",
			check: func(t *testing.T, f domain.LeaderboardFilters) {
				if f.Page != 1 || f.PerPage != 25 || f.Sort != domain.SortGames {
					t.Errorf("defaults = %+v", f)
				}
				if got := f.EndDate.Sub(f.StartDate); got != 7*24*time.Hour {
					t.Errorf("default window = %v", got)
				}
			},
		},
		{
			name:   "perPage clamped to maximum",
			target: "/api/dashboard/teams?perPage=5000",
			check: func(t *testing.T, f domain.LeaderboardFilters) {
				if f.PerPage != 100 {
					t.Errorf("perPage = %d, want 100", f.PerPage)
				}
			},
		},
		{
			name:   "csv values trimmed and empties dropped",
			target: "/api/dashboard/teams?leagues=LEC,%20,LFL,",
			check: func(t *testing.T, f domain.LeaderboardFilters) {
				if len(f.Leagues) != 2 {
					t.Errorf("leagues = %v", f.Leagues)
				}
			},
		},
		{name: "malformed date", target: "/api/dashboard/teams?startDate=01-01-2026", wantErr: true},
		{name: "inverted range", target: "/api/dashboard/teams?startDate=2026-02-01&endDate=2026-01-01", wantErr: true},
		{name: "span over a year", target: "/api/dashboard/teams?startDate=2025-01-01&endDate=2026-06-01", wantErr: true},
		{name: "page zero", target: "/api/dashboard/teams?page=0", wantErr: true},
		{name: "negative page", target: "/api/dashboard/teams?page=-3", wantErr: true},
		{name: "unknown sort", target: "/api/dashboard/teams?sort=elo", wantErr: true},
		{name: "negative minGames", target: "/api/dashboard/teams?minGames=-1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := parseLeaderboardFilters(httptest.NewRequest("GET", tt.target, nil))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if _, ok := err.(*ParamError); !ok {
					t.Fatalf("expected *ParamError, got %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, f)
		})
	}
}

func TestParseEntityIDs(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		want    []int64
		wantErr error
	}{
		{
			name:   "dedupe preserves first occurrence",
			target: "/history?ids=3,1,3,2,1",
			want:   []int64{3, 1, 2},
		},
		{
			name:   "single id",
			target: "/history?ids=42",
			want:   []int64{42},
		},
		{
			name:   "invalid tokens silently dropped",
			target: "/history?ids=5,abc,0,-3,3000000000",
			want:   []int64{5},
		},
		{
			name:   "valid ids survive surrounding garbage",
			target: "/history?ids=abc,7,,9,-1",
			want:   []int64{7, 9},
		},
		{name: "missing parameter", target: "/history", wantErr: errMissingIDs},
		{name: "empty parameter", target: "/history?ids=", wantErr: &ParamError{}},
		{name: "only separators", target: "/history?ids=,,", wantErr: &ParamError{}},
		{name: "no valid survivors", target: "/history?ids=abc,0,-5,3000000000", wantErr: &ParamError{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseEntityIDs(httptest.NewRequest("GET", tt.target, nil))
			switch tt.wantErr.(type) {
			case nil:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if len(got) != len(tt.want) {
					t.Fatalf("ids = %v, want %v", got, tt.want)
				}
				for i := range got {
					if got[i] != tt.want[i] {
						t.Fatalf("ids = %v, want %v", got, tt.want)
					}
				}
			case *ParamError:
				if _, ok := err.(*ParamError); !ok {
					t.Fatalf("expected *ParamError, got %v (%T)", err, err)
				}
			default:
				if err != tt.wantErr {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
			}
		})
	}
}

func TestParseEntityIDsCap(t *testing.T) {
	target := "/history?ids=1"
	for i := 2; i <= 60; i++ {
		target += "," + strconv.Itoa(i)
	}

	ids, err := parseEntityIDs(httptest.NewRequest("GET", target, nil))
	if err != nil {
		t.Fatalf("oversized list must be truncated, not rejected: %v", err)
	}
	if len(ids) != 50 {
		t.Fatalf("got %d ids, want 50", len(ids))
	}
	if ids[0] != 1 || ids[49] != 50 {
		t.Fatalf("truncation must keep the first 50 valid ids, got [%d..%d]", ids[0], ids[49])
	}
}
