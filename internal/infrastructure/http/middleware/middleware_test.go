package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/crewrelief/crewrelief/internal/application/ports"
	"github.com/crewrelief/crewrelief/internal/domain"
)

type stubValidator map[string]ports.AccessClaims

func (s stubValidator) ValidateAccessToken(_ context.Context, token string) (ports.AccessClaims, error) {
	c, ok := s[token]
	if !ok {
		return ports.AccessClaims{}, errors.New("bad token")
	}
	return c, nil
}

type stubRevocations map[string]bool

func (s stubRevocations) Revoke(context.Context, string, time.Time) error { return nil }
func (s stubRevocations) IsRevoked(_ context.Context, id string) (bool, error) {
	return s[id], nil
}

type recordingEnsurer struct{ seen []domain.UserID }

func (r *recordingEnsurer) Execute(_ context.Context, id domain.UserID, email string) (*domain.UserProfile, error) {
	r.seen = append(r.seen, id)
	return domain.NewDefaultProfile(id, email), nil
}

func TestAuthValidator(t *testing.T) {
	validator := stubValidator{
		"good":     {UserID: "u1", TokenID: "j1"},
		"revoked":  {UserID: "u2", TokenID: "j2"},
		"external": {UserID: "oidc|42", Email: "x@example.com", External: true},
	}
	ensurer := &recordingEnsurer{}
	mw := NewAuthValidator(validator, stubRevocations{"j2": true}, ensurer, zerolog.Nop())
	var caller domain.UserID
	h := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller = CallerID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCaller domain.UserID
	}{
		{"missing", "", http.StatusUnauthorized, ""},
		{"not bearer", "Basic abc", http.StatusUnauthorized, ""},
		{"invalid", "Bearer nope", http.StatusUnauthorized, ""},
		{"revoked", "Bearer revoked", http.StatusUnauthorized, ""},
		{"valid", "Bearer good", http.StatusOK, "u1"},
		{"external", "Bearer external", http.StatusOK, "oidc|42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller = ""
			req := httptest.NewRequest(http.MethodGet, "/profile", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus || caller != tt.wantCaller {
				t.Errorf("status = %d caller = %q; want %d %q", rec.Code, caller, tt.wantStatus, tt.wantCaller)
			}
		})
	}
	if len(ensurer.seen) != 1 || ensurer.seen[0] != "oidc|42" {
		t.Errorf("profile bootstrap ran for %v; want only the external identity", ensurer.seen)
	}
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://app.crewrelief.io"}, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	tests := []struct {
		name       string
		origin     string
		wantStatus int
		wantAllow  string
	}{
		{"allowed preflight", "https://app.crewrelief.io", http.StatusNoContent, "https://app.crewrelief.io"},
		{"foreign preflight", "https://evil.example", http.StatusForbidden, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/matches", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodGet)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus || rec.Header().Get("Access-Control-Allow-Origin") != tt.wantAllow {
				t.Errorf("status = %d allow = %q", rec.Code, rec.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func TestRequireAdminSecret(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	tests := []struct {
		name   string
		secret string
		sent   string
		want   int
	}{
		{"not configured", "", "", http.StatusUnauthorized},
		{"wrong", "s3cret", "guess", http.StatusUnauthorized},
		{"right", "s3cret", "s3cret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/admin/users/u1/cleanup", nil)
			req.Header.Set(adminSecretHeader, tt.sent)
			rec := httptest.NewRecorder()
			RequireAdminSecret(tt.secret)(ok).ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestUserRateLimiter(t *testing.T) {
	limit, err := NewUserRateLimiter("2-M")
	if err != nil {
		t.Fatal(err)
	}
	h := limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }))
	call := func(userID string) int {
		req := httptest.NewRequest(http.MethodGet, "/matches", nil)
		if userID != "" {
			req = req.WithContext(WithClaims(req.Context(), ports.AccessClaims{UserID: userID}))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	for i, want := range []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests} {
		if got := call("ana"); got != want {
			t.Errorf("ana request %d: status %d, want %d", i+1, got, want)
		}
	}
	if got := call("ben"); got != http.StatusOK {
		t.Errorf("ben shares ana's budget: status %d", got)
	}
	for i := 0; i < 3; i++ {
		if got := call(""); got != http.StatusOK {
			t.Errorf("anonymous request %d: status %d, want pass-through", i+1, got)
		}
	}
}

func TestRateLimiter_EmptyBudgetDisables(t *testing.T) {
	limit, err := NewIPRateLimiter("")
	if err != nil {
		t.Fatal(err)
	}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	if got := limit(next); got == nil {
		t.Fatal("nil handler")
	}
	if _, err := NewIPRateLimiter("lots"); err == nil {
		t.Error("malformed budget accepted")
	}
}
