// Package middleware holds the http.Handler wrappers applied around the
// router: the Basic-Auth guard and request logging.
package middleware

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/aanand-mishra/mountains-api/internal/config"
	"github.com/aanand-mishra/mountains-api/internal/utils/response"
)

// Guard checks Basic-Auth credentials against one configured pair.
type Guard struct {
	username     []byte
	password     []byte
	passwordHash []byte
	realm        string
}

// NewGuard builds a Guard from the auth section of the config. A bcrypt
// password hash, when present, is used instead of the plain password.
func NewGuard(cfg config.Auth) *Guard {
	g := &Guard{
		username: []byte(cfg.Username),
		password: []byte(cfg.Password),
		realm:    cfg.Realm,
	}
	if cfg.PasswordHash != "" {
		g.passwordHash = []byte(cfg.PasswordHash)
	}
	if g.realm == "" {
		g.realm = "Secure Area"
	}

	return g
}

// Valid reports whether header is a Basic-Auth value carrying the
// configured username and password. Malformed input of any kind is
// reported as invalid, never as an error.
func (g *Guard) Valid(header string) bool {
	scheme, encoded, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Basic") {
		return false
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return false
	}

	// Split at the first colon: passwords may contain ':' but usernames may not.
	username, password, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return false
	}

	if len(g.username) == 0 || subtle.ConstantTimeCompare([]byte(username), g.username) != 1 {
		return false
	}

	if g.passwordHash != nil {
		return bcrypt.CompareHashAndPassword(g.passwordHash, []byte(password)) == nil
	}

	return subtle.ConstantTimeCompare([]byte(password), g.password) == 1
}

// Middleware rejects requests without valid credentials with 401 and a
// WWW-Authenticate challenge. The request body is never read on that path.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	challenge := fmt.Sprintf("Basic realm=%q", g.realm)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !g.Valid(header) {
			slog.Warn("unauthorized request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Bool("header_present", header != ""))

			w.Header().Set("WWW-Authenticate", challenge)
			response.WriteJSON(w, http.StatusUnauthorized, response.Message(response.MsgUnauthorized))
			return
		}

		next.ServeHTTP(w, r)
	})
}
