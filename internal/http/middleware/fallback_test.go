package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJSONFallback(t *testing.T) {
	t.Parallel()

	router := http.NewServeMux()
	router.HandleFunc("GET /api/mountains", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})
	h := JSONFallback(router)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantBody   string
		wantAllow  bool
	}{
		{name: "matched route", method: http.MethodGet, path: "/api/mountains", wantStatus: http.StatusOK, wantBody: `[]`},
		{name: "wrong method", method: http.MethodPatch, path: "/api/mountains", wantStatus: http.StatusMethodNotAllowed, wantBody: `{"error":"Method Not Allowed"}`, wantAllow: true},
		{name: "unknown path", method: http.MethodGet, path: "/nowhere", wantStatus: http.StatusNotFound, wantBody: `{"error":"Not Found"}`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(test.method, test.path, nil))

			assert.Equal(t, test.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, test.wantBody, rec.Body.String())
			assert.Equal(t, test.wantAllow, rec.Header().Get("Allow") != "")
		})
	}
}
