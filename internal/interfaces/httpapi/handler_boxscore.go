package httpapi

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/riskibarqy/volleystats/internal/usecase"
)

func (h *Handler) ParseBoxScore(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ParseBoxScore")
	defer span.End()

	var req parseBoxScoreRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	totals, err := h.statsService.ParseText(ctx, req.Text)
	if err != nil {
		h.logger.WarnContext(ctx, "parse box score text failed", "text_bytes", len(req.Text), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, boxScoreDTO{Teams: totals})
}

func (h *Handler) GetBoxScore(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetBoxScore")
	defer span.End()

	statsURL := strings.TrimSpace(r.URL.Query().Get("stats_url"))
	if statsURL == "" {
		writeError(ctx, w, fmt.Errorf("%w: stats_url query parameter is required", usecase.ErrInvalidInput))
		return
	}
	if parsed, err := url.Parse(statsURL); err != nil || parsed.Host == "" {
		writeError(ctx, w, fmt.Errorf("%w: stats_url must be an absolute URL", usecase.ErrInvalidInput))
		return
	}

	totals, err := h.statsService.FetchTotals(ctx, statsURL)
	if err != nil {
		h.logger.WarnContext(ctx, "fetch box score failed", "stats_url", statsURL, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, boxScoreDTO{StatsURL: statsURL, Teams: totals})
}

type collectedMatchDTO struct {
	Match matchDTO `json:"match"`
	Teams int      `json:"teams"`
}

type teamAggregateResponseDTO struct {
	usecase.TeamAggregate
	Matches []collectedMatchDTO `json:"matches"`
}

func (h *Handler) AggregateTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AggregateTeam")
	defer span.End()

	var req teamAggregateRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	matches, err := matchesToDomain(req.Matches)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	collected, err := h.statsService.CollectTotals(ctx, matches)
	if err != nil {
		h.logger.WarnContext(ctx, "collect totals failed", "team", req.Team, "matches", len(matches), "error", err)
		writeError(ctx, w, err)
		return
	}

	aggregate, err := h.statsService.TeamAggregate(ctx, req.Team, collected)
	if err != nil {
		h.logger.WarnContext(ctx, "aggregate team failed", "team", req.Team, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]collectedMatchDTO, 0, len(collected))
	for _, item := range collected {
		items = append(items, collectedMatchDTO{Match: matchToDTO(item.Match), Teams: len(item.Totals)})
	}

	writeSuccess(ctx, w, http.StatusOK, teamAggregateResponseDTO{TeamAggregate: aggregate, Matches: items})
}
