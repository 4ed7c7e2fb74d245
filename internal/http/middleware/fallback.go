package middleware

import (
	"net/http"

	"github.com/aanand-mishra/mountains-api/internal/utils/response"
)

// jsonErrorWriter swallows the plain-text body ServeMux writes for its own
// 404 and 405 answers; the status and headers such as Allow pass through.
type jsonErrorWriter struct {
	http.ResponseWriter
	status int
}

func (w *jsonErrorWriter) WriteHeader(status int) {
	w.status = status
	w.Header().Set("Content-Type", "application/json")
	w.Header().Del("X-Content-Type-Options")
	w.ResponseWriter.WriteHeader(status)
}

func (w *jsonErrorWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.WriteHeader(http.StatusOK)
	}
	if w.status >= http.StatusBadRequest {
		return len(b), nil
	}
	return w.ResponseWriter.Write(b)
}

// JSONFallback serves router, answering requests that match no route with
// the same {"error": ...} envelope the handlers use.
func JSONFallback(router *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, pattern := router.Handler(r); pattern != "" {
			router.ServeHTTP(w, r)
			return
		}

		ew := &jsonErrorWriter{ResponseWriter: w}
		router.ServeHTTP(ew, r)

		if ew.status >= http.StatusBadRequest {
			response.WriteBody(w, response.Message(http.StatusText(ew.status)))
		}
	})
}
