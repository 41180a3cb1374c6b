package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerBoxScoreRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/boxscores/parse", handler.ParseBoxScore)
	mux.HandleFunc("GET /v1/boxscores", handler.GetBoxScore)
	mux.HandleFunc("POST /v1/teams/aggregate", handler.AggregateTeam)
}

// Merge runs read files from the server's CSV directory, so they sit behind
// the API token when one is configured.
func registerMergeRoutes(mux *http.ServeMux, handler *Handler, apiToken string) {
	mux.Handle("POST /v1/merge", RequireAPIToken(apiToken, http.HandlerFunc(handler.Merge)))
	mux.HandleFunc("GET /v1/merge/latest", handler.GetLatestMerge)
	mux.HandleFunc("GET /v1/merge/export", handler.ExportLatestMerge)
}
