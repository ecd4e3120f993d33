package server

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"lol-dashboard/internal/constants"
	"lol-dashboard/internal/domain"
)

// ParamError is a request the client can fix. Mapped to 422.
type ParamError struct {
	Param   string
	Message string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Message)
}

func paramErr(param, message string) *ParamError {
	return &ParamError{Param: param, Message: message}
}

const dateLayout = "2006-01-02"

// defaultWindowDays is the lookback applied when the client sends no dates.
const defaultWindowDays = 7

func parseDateRange(q map[string][]string) (start, end time.Time, err error) {
	startRaw := firstValue(q, "startDate")
	endRaw := firstValue(q, "endDate")

	now := time.Now().UTC().Truncate(24 * time.Hour)
	end = now
	start = now.AddDate(0, 0, -defaultWindowDays)

	if endRaw != "" {
		end, err = time.Parse(dateLayout, endRaw)
		if err != nil {
			return start, end, paramErr("endDate", "expected YYYY-MM-DD")
		}
	}
	if startRaw != "" {
		start, err = time.Parse(dateLayout, startRaw)
		if err != nil {
			return start, end, paramErr("startDate", "expected YYYY-MM-DD")
		}
	} else if endRaw != "" {
		start = end.AddDate(0, 0, -defaultWindowDays)
	}

	if end.Before(start) {
		return start, end, paramErr("endDate", "must not be before startDate")
	}
	if end.Sub(start) > constants.MaxDateSpan {
		return start, end, paramErr("endDate", "date span exceeds 365 days")
	}
	return start, end, nil
}

func parsePage(q map[string][]string) (page, perPage int, err error) {
	page = 1
	if raw := firstValue(q, "page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, paramErr("page", "expected a positive integer")
		}
	}

	perPage = constants.DefaultPerPage
	if raw := firstValue(q, "perPage"); raw != "" {
		perPage, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, paramErr("perPage", "expected an integer")
		}
		if perPage < 1 {
			perPage = 1
		}
		if perPage > constants.MaxPerPage {
			perPage = constants.MaxPerPage
		}
	}
	return page, perPage, nil
}

func parseCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			values = append(values, v)
		}
	}
	return values
}

func parseSort(q map[string][]string) (string, error) {
	raw := firstValue(q, "sort")
	switch raw {
	case "", domain.SortGames:
		return domain.SortGames, nil
	case domain.SortLP, domain.SortWinrate:
		return raw, nil
	default:
		return "", paramErr("sort", "expected games, lp or winrate")
	}
}

func parseViewMode(q map[string][]string, fallback string) (string, error) {
	raw := firstValue(q, "viewMode")
	switch raw {
	case "":
		return fallback, nil
	case domain.ViewModeTeam, domain.ViewModePlayer:
		return raw, nil
	default:
		return "", paramErr("viewMode", "expected team or player")
	}
}

func parseLimit(q map[string][]string) (int, error) {
	raw := firstValue(q, "limit")
	if raw == "" {
		return constants.MoverLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, paramErr("limit", "expected a positive integer")
	}
	if limit > constants.MaxBatchIDs {
		limit = constants.MaxBatchIDs
	}
	return limit, nil
}

// parseEntityIDs implements the batch contract: comma-separated id tokens,
// invalid ones (non-numeric, non-positive, beyond int32) silently dropped,
// deduplicated preserving first occurrence, truncated to 50. Only a token set
// that yields no valid id at all is an error.
func parseEntityIDs(r *http.Request) ([]int64, error) {
	if !r.URL.Query().Has("ids") {
		return nil, errMissingIDs
	}

	seen := make(map[int64]struct{})
	ids := make([]int64, 0, 8)
	for _, raw := range parseCSV(r.URL.Query().Get("ids")) {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 1 || id > math.MaxInt32 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
		if len(ids) == constants.MaxBatchIDs {
			break
		}
	}

	if len(ids) == 0 {
		return nil, paramErr("ids", "expected at least one positive integer id")
	}
	return ids, nil
}

func parseLeaderboardFilters(r *http.Request) (domain.LeaderboardFilters, error) {
	q := r.URL.Query()
	var f domain.LeaderboardFilters
	var err error

	if f.StartDate, f.EndDate, err = parseDateRange(q); err != nil {
		return f, err
	}
	if f.Page, f.PerPage, err = parsePage(q); err != nil {
		return f, err
	}
	if f.Sort, err = parseSort(q); err != nil {
		return f, err
	}

	f.Leagues = parseCSV(q.Get("leagues"))
	f.Roles = parseCSV(q.Get("roles"))
	f.Search = strings.TrimSpace(q.Get("search"))

	if raw := firstValue(q, "minGames"); raw != "" {
		f.MinGames, err = strconv.Atoi(raw)
		if err != nil || f.MinGames < 0 {
			return f, paramErr("minGames", "expected a non-negative integer")
		}
	}
	return f, nil
}

func firstValue(q map[string][]string, key string) string {
	if vs := q[key]; len(vs) > 0 {
		return strings.TrimSpace(vs[0])
	}
	return ""
}
