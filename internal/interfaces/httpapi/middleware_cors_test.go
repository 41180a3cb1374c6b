package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name        string
		allowed     []string
		method      string
		origin      string
		wantStatus  int
		wantOrigin  string
		wantHeaders bool
	}{
		{name: "configured origin", allowed: []string{" https://stats.usc-muenster.de "}, method: http.MethodGet, origin: "https://stats.usc-muenster.de", wantStatus: http.StatusOK, wantOrigin: "https://stats.usc-muenster.de", wantHeaders: true},
		{name: "wildcard preflight", allowed: []string{"*"}, method: http.MethodOptions, origin: "https://stats.usc-muenster.de", wantStatus: http.StatusNoContent, wantOrigin: "*", wantHeaders: true},
		{name: "unknown origin", allowed: []string{"https://allowed.example.com"}, method: http.MethodGet, origin: "https://not-allowed.example.com", wantStatus: http.StatusOK},
		{name: "no origin header", allowed: []string{"*"}, method: http.MethodOptions, wantStatus: http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/v1/merge/latest", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			rec := httptest.NewRecorder()

			CORS(tc.allowed, next).ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("unexpected status: got=%d want=%d", rec.Code, tc.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tc.wantOrigin {
				t.Fatalf("unexpected Access-Control-Allow-Origin: got=%q want=%q", got, tc.wantOrigin)
			}
			allowHeaders := rec.Header().Get("Access-Control-Allow-Headers")
			if tc.wantHeaders != strings.Contains(allowHeaders, apiTokenHeader) {
				t.Fatalf("unexpected Access-Control-Allow-Headers: %q", allowHeaders)
			}
		})
	}
}
