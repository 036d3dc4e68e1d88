package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"vendor-compliance/backend/internal/config"

	"github.com/coreos/go-oidc"
	"github.com/stretchr/testify/assert"
)

// NoOpLogger for testing
type NoOpLogger struct{}

func (l *NoOpLogger) Debug(msg string, args ...any) {}
func (l *NoOpLogger) Info(msg string, args ...any)  {}
func (l *NoOpLogger) Error(msg string, args ...any) {}

// MockKeySet satisfies oidc.KeySet to bypass signature verification
type MockKeySet struct{}

func (m *MockKeySet) VerifySignature(ctx context.Context, jwtToken string) ([]byte, error) {
	parts := strings.Split(jwtToken, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("malformed jwt")
	}
	return base64.RawURLEncoding.DecodeString(parts[1])
}

func fakeToken(t *testing.T, claims map[string]interface{}) string {
	t.Helper()
	headerBytes, _ := json.Marshal(map[string]interface{}{
		"alg": "RS256",
		"typ": "JWT",
		"kid": "test-key",
	})
	payload, _ := json.Marshal(claims)
	return base64.RawURLEncoding.EncodeToString(headerBytes) + "." +
		base64.RawURLEncoding.EncodeToString(payload) + "." +
		base64.RawURLEncoding.EncodeToString([]byte("fakesignature"))
}

func TestRequireAuth_BearerToken_ExtractsUser(t *testing.T) {
	issuer := "https://test-issuer.com"
	clientID := "test-client"

	token := fakeToken(t, map[string]interface{}{
		"iss":   issuer,
		"aud":   clientID,
		"sub":   "test-user",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"iat":   time.Now().Add(-1 * time.Minute).Unix(),
		"email": "reviewer@acme.com",
	})

	verifier := oidc.NewVerifier(issuer, &MockKeySet{}, &oidc.Config{
		ClientID:          clientID,
		SkipClientIDCheck: true, // Matches logic in auth.go for apiVerifier
	})

	a := &Auth{
		apiVerifier: verifier,
		logger:      &NoOpLogger{},
	}

	req := httptest.NewRequest("GET", "/api/v1/workflow/schema", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserID(r.Context())
		assert.True(t, ok, "user_id should be in context")
		assert.Equal(t, "reviewer@acme.com", userID)
		w.WriteHeader(http.StatusOK)
	})

	a.RequireAuth(nextHandler).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Logf("Response Body: %s", rec.Body.String())
	}
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuth_SubjectFallback(t *testing.T) {
	issuer := "https://test-issuer.com"
	token := fakeToken(t, map[string]interface{}{
		"iss": issuer,
		"sub": "service-account-42",
		"exp": time.Now().Add(time.Hour).Unix(),
		"iat": time.Now().Add(-1 * time.Minute).Unix(),
	})

	verifier := oidc.NewVerifier(issuer, &MockKeySet{}, &oidc.Config{SkipClientIDCheck: true})
	a := &Auth{apiVerifier: verifier, logger: &NoOpLogger{}}

	req := httptest.NewRequest("GET", "/api/v1/workflow/schema", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := UserID(r.Context())
		assert.Equal(t, "service-account-42", userID)
		w.WriteHeader(http.StatusOK)
	})

	a.RequireAuth(nextHandler).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuth_BypassMode(t *testing.T) {
	cfg := &config.Config{Environment: "DEV"}
	cfg.Auth.DevModeBypass = true

	a, err := New(context.Background(), cfg, &NoOpLogger{})
	assert.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/v1/workflow/schema", nil)
	rec := httptest.NewRecorder()

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserID(r.Context())
		assert.True(t, ok)
		assert.Equal(t, "dev@localhost", userID)
		w.WriteHeader(http.StatusOK)
	})

	a.RequireAuth(nextHandler).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuth_NoCookieRedirectsToLogin(t *testing.T) {
	verifier := oidc.NewVerifier("https://test-issuer.com", &MockKeySet{}, &oidc.Config{SkipClientIDCheck: true})
	a := &Auth{verifier: verifier, apiVerifier: verifier, logger: &NoOpLogger{}}

	req := httptest.NewRequest("GET", "/api/v1/workflow/schema", nil)
	rec := httptest.NewRecorder()

	a.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run without credentials")
	})).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestRequireAuth_ExpiredTokenRejected(t *testing.T) {
	issuer := "https://test-issuer.com"
	token := fakeToken(t, map[string]interface{}{
		"iss": issuer,
		"sub": "test-user",
		"exp": time.Now().Add(-time.Hour).Unix(),
		"iat": time.Now().Add(-2 * time.Hour).Unix(),
	})

	verifier := oidc.NewVerifier(issuer, &MockKeySet{}, &oidc.Config{SkipClientIDCheck: true})
	a := &Auth{apiVerifier: verifier, logger: &NoOpLogger{}}

	req := httptest.NewRequest("GET", "/api/v1/workflow/schema", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	a.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run with an expired token")
	})).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNew_IncompleteConfigRejected(t *testing.T) {
	cfg := &config.Config{Environment: "PROD"}
	_, err := New(context.Background(), cfg, &NoOpLogger{})
	assert.Error(t, err)
}
