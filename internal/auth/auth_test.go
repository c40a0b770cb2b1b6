package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-secret"
	testIssuer = "test-issuer"
)

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   "alice",
		"iss":   testIssuer,
		"exp":   time.Now().Add(time.Hour).Unix(),
		"scope": "timeline:read other:scope",
	}
}

func TestVerifyValidToken(t *testing.T) {
	caller, err := NewVerifier(testSecret, testIssuer).Verify(signToken(t, validClaims(), testSecret))
	require.NoError(t, err)
	require.Equal(t, "alice", caller.Subject)
	require.True(t, caller.Can(ScopeTimelineRead))
	require.True(t, caller.Can("other:scope"))
	require.False(t, caller.Can("timeline:write"))
	require.WithinDuration(t, time.Now().Add(time.Hour), caller.Expiry, 2*time.Second)

	require.Empty(t, caller.Grants)
	require.True(t, caller.MayRead("anyone"))
}

func TestVerifyScopeListAndGrants(t *testing.T) {
	c := validClaims()
	c["scope"] = []string{ScopeTimelineRead}
	c["connections"] = []string{"bob", " carol ", "bob"}

	caller, err := NewVerifier(testSecret, testIssuer).Verify(signToken(t, c, testSecret))
	require.NoError(t, err)
	require.True(t, caller.Can(ScopeTimelineRead))
	require.Equal(t, []string{"bob", "carol"}, caller.Grants)
	require.True(t, caller.MayRead("carol"))
	require.False(t, caller.MayRead("mallory"))
}

func TestVerifyRejects(t *testing.T) {
	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Hour).Unix()

	wrongIssuer := validClaims()
	wrongIssuer["iss"] = "someone-else"

	noSubject := validClaims()
	delete(noSubject, "sub")

	noExpiry := validClaims()
	delete(noExpiry, "exp")

	badScope := validClaims()
	badScope["scope"] = 42

	cases := map[string]string{
		"expired":      signToken(t, expired, testSecret),
		"wrong issuer": signToken(t, wrongIssuer, testSecret),
		"no subject":   signToken(t, noSubject, testSecret),
		"no expiry":    signToken(t, noExpiry, testSecret),
		"bad scope":    signToken(t, badScope, testSecret),
		"wrong secret": signToken(t, validClaims(), "other-secret"),
		"garbage":      "not-a-jwt",
	}
	verifier := NewVerifier(testSecret, testIssuer)
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := verifier.Verify(token)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	_, err := verifier.Verify("  ")
	require.ErrorIs(t, err, ErrMissingToken)
}

func TestCallerDenied(t *testing.T) {
	caller := NewCaller("alice", time.Time{}, nil, []string{"bob"})
	require.Equal(t, []string{"carol", "dave"}, caller.Denied([]string{"bob", "carol", "dave"}))
	require.Empty(t, NewCaller("alice", time.Time{}, nil, nil).Denied([]string{"carol"}))

	var missing *Caller
	require.False(t, missing.Can(ScopeTimelineRead))
	require.False(t, missing.MayRead("bob"))
}

func TestAuthenticate(t *testing.T) {
	var seen *Caller
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = CallerFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	handler := Authenticate(NewVerifier(testSecret, testIssuer), Public)(next)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Nil(t, seen)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/v1/activities", nil))
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/activities", nil))
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, `Bearer realm="timeline"`, rr.Header().Get("WWW-Authenticate"))
	var body map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	require.Equal(t, "unauthorized", body["type"])
	require.Equal(t, ErrMissingToken.Error(), body["detail"])

	req := httptest.NewRequest(http.MethodGet, "/v1/activities", nil)
	req.Header.Set("Authorization", "Basic abc")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/activities", nil)
	req.Header.Set("Authorization", "bearer "+signToken(t, validClaims(), testSecret))
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.NotNil(t, seen)
	require.Equal(t, "alice", seen.Subject)
}
