package auth

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Public reports requests served without a token: the health check and CORS preflights.
func Public(r *http.Request) bool {
	return r.Method == http.MethodOptions || r.URL.Path == "/healthz"
}

// Authenticate verifies the bearer token of every non public request and stores the
// resulting Caller on the request context. Failures are answered with a JSON 401.
func Authenticate(v *Verifier, public func(*http.Request) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if public != nil && public(r) {
				next.ServeHTTP(w, r)
				return
			}

			raw, err := bearer(r.Header.Get("Authorization"))
			if err == nil {
				var caller *Caller
				if caller, err = v.Verify(raw); err == nil {
					next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), caller)))
					return
				}
			}
			unauthorized(w, err)
		})
	}
}

func bearer(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrInvalidToken
	}
	return token, nil
}

func unauthorized(w http.ResponseWriter, err error) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="timeline"`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"type": "unauthorized", "detail": err.Error()})
}
