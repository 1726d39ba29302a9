package outcomes

import (
	"fmt"
	"net/url"
	"strconv"

	"gitlab.com/otp-2025.net/internal/domain"
)

// ListOutcomesRequest holds the query of GET /api/outcomes
type ListOutcomesRequest struct {
	Limit int
}

func parseListOutcomesRequest(query url.Values) (ListOutcomesRequest, error) {
	var req ListOutcomesRequest
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return req, fmt.Errorf("invalid limit %q", raw)
		}
		req.Limit = limit
	}
	return req, nil
}

// ListOutcomesResponse represents a page of recent outcomes
type ListOutcomesResponse struct {
	Outcomes []*domain.UnitOutcome `json:"outcomes"`
}

// StatsResponse reports outcome counts
type StatsResponse struct {
	domain.OutcomeStats
	Total int64 `json:"total"`
}
