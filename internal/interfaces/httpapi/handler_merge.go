package httpapi

import (
	"net/http"
	"strconv"

	"github.com/riskibarqy/volleystats/internal/infrastructure/csvsource"
)

func (h *Handler) Merge(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Merge")
	defer span.End()

	var req mergeRequest
	if err := h.decodeRequest(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.mergeService.Merge(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "merge failed",
			"schedules", len(input.SchedulePaths),
			"matches", len(input.Matches),
			"csv_files", len(input.CSVFiles),
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, mergeResultToDTO(ctx, result))
}

func (h *Handler) GetLatestMerge(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLatestMerge")
	defer span.End()

	run, err := h.mergeService.LatestRun(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "get latest merge run failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, mergeRunToDTO(run))
}

func (h *Handler) ExportLatestMerge(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ExportLatestMerge")
	defer span.End()

	encoded, run, err := h.mergeService.ExportLatest(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "export latest merge run failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	w.Header().Set("Content-Type", csvsource.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+run.ID+`.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(encoded)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(encoded)
}
