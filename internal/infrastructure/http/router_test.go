package http

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/crewrelief/crewrelief/internal/application/account"
	"github.com/crewrelief/crewrelief/internal/application/matching"
	"github.com/crewrelief/crewrelief/internal/application/profile"
	"github.com/crewrelief/crewrelief/internal/application/status"
	"github.com/crewrelief/crewrelief/internal/domain"
	"github.com/crewrelief/crewrelief/internal/infrastructure/auth"
	"github.com/crewrelief/crewrelief/internal/infrastructure/cache"
	"github.com/crewrelief/crewrelief/internal/infrastructure/http/handlers"
	"github.com/crewrelief/crewrelief/internal/infrastructure/http/middleware"
	"github.com/crewrelief/crewrelief/internal/infrastructure/identity"
	"github.com/crewrelief/crewrelief/internal/infrastructure/lockout"
	"github.com/crewrelief/crewrelief/internal/infrastructure/persistence/memory"
	"github.com/crewrelief/crewrelief/internal/infrastructure/persistence/repository"
	"github.com/crewrelief/crewrelief/internal/infrastructure/queue"
	"github.com/crewrelief/crewrelief/internal/infrastructure/security"
	"github.com/crewrelief/crewrelief/internal/infrastructure/storage"
	"github.com/crewrelief/crewrelief/internal/infrastructure/webhook"
)

const testAdminSecret = "s3cret"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := zerolog.Nop()
	store, err := memory.NewDocumentStore()
	if err != nil {
		t.Fatal(err)
	}
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	profiles := repository.NewProfileRepository(store)
	assignments := repository.NewAssignmentRepository(store)
	cleanup := status.NewCleanupDuplicates(profiles, assignments, log)
	enq := queue.NewInlineEnqueuer(func(ctx context.Context, id domain.UserID) error {
		_, err := cleanup.Reconcile(ctx, id)
		return err
	}, webhook.NewNoopEmitter(), log)
	hasher := security.NewArgon2Hasher(security.Argon2Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	idp := identity.NewLocalProvider(repository.NewAccountRepository(store), repository.NewPasswordResetRepository(store),
		hasher, enq, "http://localhost/reset", 0, log)
	issuer := auth.NewTokenIssuer(key, "crewrelief", "crewrelief-api")
	revocations := cache.NewMemoryRevocationStore()
	tracker := matching.NewTracker()
	ensure := account.NewEnsureProfile(profiles, log)
	metrics := middleware.PromMatchMetrics{}

	find := matching.NewFindMatches(profiles, assignments, tracker, metrics, log, 4, matching.CanonicalWindowDays)
	router := NewRouter(RouterConfig{
		AuthHandler: handlers.NewAuthHandler(
			account.NewSignUp(idp, profiles, issuer, 0, log),
			account.NewSignIn(idp, ensure, lockout.NewSignInLockout(5, 60), enq, issuer, 0, log),
			account.NewSignOut(revocations),
			account.NewForgotPassword(idp, log),
			account.NewResetPassword(idp),
			enq, log),
		HealthHandler: handlers.NewHealthHandler(store, nil),
		ProfileHandler: handlers.NewProfileHandler(
			profile.NewGetProfile(profiles),
			profile.NewUpdateProfile(profiles, assignments, log),
			profile.NewViewProfile(profiles, assignments),
			account.NewDeleteAccount(idp, profiles, assignments, storage.NewNoopPhotoStore(log), revocations, tracker, log),
			enq, log),
		AssignmentsHandler: handlers.NewAssignmentsHandler(profile.NewGetAssignments(profiles, assignments),
			status.NewChangeStatus(profiles, assignments, metrics, log), enq, log),
		MatchesHandler: handlers.NewMatchesHandler(find, log),
		AdminHandler:   handlers.NewAdminHandler(cleanup, log),
		RequireJWT:     middleware.NewAuthValidator(auth.ChainValidator{issuer}, revocations, ensure, log).Handler,
		RequireAdmin:   middleware.RequireAdminSecret(testAdminSecret),
		Log:            log,
		APIVersion:     "1",
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

type client struct {
	t     *testing.T
	srv   *httptest.Server
	token string
}

func (c *client) do(method, path string, body interface{}, headers ...string) (int, map[string]interface{}) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			c.t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, c.srv.URL+path, &buf)
	if err != nil {
		c.t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := c.srv.Client().Do(req)
	if err != nil {
		c.t.Fatal(err)
	}
	defer resp.Body.Close()
	out := map[string]interface{}{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func signUp(t *testing.T, srv *httptest.Server, email string) (*client, string) {
	t.Helper()
	c := &client{t: t, srv: srv}
	code, body := c.do(http.MethodPost, "/auth/signup", map[string]string{"email": email, "password": "correct-horse"})
	if code != http.StatusCreated {
		t.Fatalf("signup %s: %d %v", email, code, body)
	}
	c.token = body["access_token"].(string)
	return c, body["user"].(map[string]interface{})["id"].(string)
}

func TestRouter_ShipAndLandUsersFindEachOther(t *testing.T) {
	srv := newTestServer(t)

	ship, _ := signUp(t, srv, "ship@example.com")
	if code, body := ship.do(http.MethodPatch, "/profile", map[string]string{
		"presentRank": "Chief Officer", "fleetWorking": "Container", "company": "Maersk",
	}); code != http.StatusOK {
		t.Fatalf("patch profile: %d %v", code, body)
	}
	code, body := ship.do(http.MethodPost, "/assignments/ship", map[string]interface{}{
		"from": "onLand", "shipName": "Emma", "contractLength": 6, "dateOfOnboard": "2024-01-15",
	})
	if code != http.StatusOK {
		t.Fatalf("save ship: %d %v", code, body)
	}
	if got := body["profile"].(map[string]interface{})["currentStatus"]; got != "onShip" {
		t.Errorf("status after ship save = %v", got)
	}
	if got := body["shipAssignment"].(map[string]interface{})["expectedReleaseDate"]; got != "2024-07-15" {
		t.Errorf("release date = %v", got)
	}

	land, landID := signUp(t, srv, "land@example.com")
	land.do(http.MethodPatch, "/profile", map[string]string{"presentRank": "chief officer", "fleetWorking": "Container Fleet"})
	if code, body := land.do(http.MethodPost, "/assignments/land", map[string]interface{}{
		"company": "Maersk Line", "dateHome": "2024-05-01", "expectedJoiningDate": "2024-07-20",
	}); code != http.StatusOK {
		t.Fatalf("save land: %d %v", code, body)
	}

	code, body = ship.do(http.MethodGet, "/matches", nil)
	if code != http.StatusOK {
		t.Fatalf("matches: %d %v", code, body)
	}
	matches := body["matches"].([]interface{})
	if len(matches) != 1 {
		t.Fatalf("matches = %v", matches)
	}
	m := matches[0].(map[string]interface{})
	if m["kind"] != "land" || m["profile"].(map[string]interface{})["id"] != landID {
		t.Errorf("match = %v", m)
	}
	if body["mode"] != matching.ModeDerived {
		t.Errorf("mode = %v", body["mode"])
	}

	if code, _ := ship.do(http.MethodGet, "/matches/latest", nil); code != http.StatusOK {
		t.Errorf("latest: %d", code)
	}
	if code, _ := ship.do(http.MethodGet, "/profiles/"+landID, nil); code != http.StatusOK {
		t.Errorf("view profile: %d", code)
	}
	if code, body := ship.do(http.MethodGet, "/matches?date=2024-13-40", nil); code != http.StatusBadRequest {
		t.Errorf("bad date: %d %v", code, body)
	}
}

func TestRouter_Unauthenticated(t *testing.T) {
	srv := newTestServer(t)
	c := &client{t: t, srv: srv}
	for _, path := range []string{"/profile", "/assignments", "/matches"} {
		code, body := c.do(http.MethodGet, path, nil)
		if code != http.StatusUnauthorized || body["code"] != handlers.ErrCodeUnauthorized {
			t.Errorf("GET %s = %d %v", path, code, body)
		}
	}
}

func TestRouter_LogoutRevokesToken(t *testing.T) {
	srv := newTestServer(t)
	c, _ := signUp(t, srv, "ana@example.com")
	if code, _ := c.do(http.MethodPost, "/auth/logout", nil); code != http.StatusNoContent {
		t.Fatalf("logout: %d", code)
	}
	code, body := c.do(http.MethodGet, "/profile", nil)
	if code != http.StatusUnauthorized || body["code"] != "session_revoked" {
		t.Errorf("after logout: %d %v", code, body)
	}
}

func TestRouter_LoginAndErrors(t *testing.T) {
	srv := newTestServer(t)
	signUp(t, srv, "ana@example.com")
	anon := &client{t: t, srv: srv}

	tests := []struct {
		name     string
		path     string
		body     interface{}
		wantCode int
		wantErr  string
	}{
		{"login ok", "/auth/login", map[string]string{"email": "ANA@example.com", "password": "correct-horse"}, http.StatusOK, ""},
		{"wrong password", "/auth/login", map[string]string{"email": "ana@example.com", "password": "nope-nope"}, http.StatusUnauthorized, handlers.ErrCodeInvalidCredentials},
		{"duplicate signup", "/auth/signup", map[string]string{"email": "ana@example.com", "password": "correct-horse"}, http.StatusConflict, handlers.ErrCodeEmailTaken},
		{"bad email", "/auth/signup", map[string]string{"email": "nope", "password": "correct-horse"}, http.StatusBadRequest, handlers.ErrCodeInvalidRequest},
		{"forgot unknown", "/auth/forgot-password", map[string]string{"email": "ghost@example.com"}, http.StatusAccepted, ""},
		{"reset bad token", "/auth/reset-password", map[string]string{"token": "abc", "new_password": "long-enough"}, http.StatusBadRequest, handlers.ErrCodeInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := anon.do(http.MethodPost, tt.path, tt.body)
			if code != tt.wantCode {
				t.Fatalf("code = %d, want %d (%v)", code, tt.wantCode, body)
			}
			if tt.wantErr != "" && body["code"] != tt.wantErr {
				t.Errorf("error code = %v, want %s", body["code"], tt.wantErr)
			}
		})
	}
}

func TestRouter_AssignmentValidation(t *testing.T) {
	srv := newTestServer(t)
	c, _ := signUp(t, srv, "ana@example.com")
	code, body := c.do(http.MethodPost, "/assignments/ship", map[string]interface{}{"shipName": "Emma"})
	if code != http.StatusBadRequest || body["code"] != handlers.ErrCodeInvalidRequest {
		t.Errorf("missing onboard date: %d %v", code, body)
	}
	code, body = c.do(http.MethodGet, "/assignments", nil)
	if code != http.StatusOK || body["currentStatus"] != "onLand" || body["shipAssignment"] != nil {
		t.Errorf("nothing should have been written: %d %v", code, body)
	}
}

func TestRouter_DeleteAccount(t *testing.T) {
	srv := newTestServer(t)
	c, _ := signUp(t, srv, "ana@example.com")
	c.do(http.MethodPost, "/assignments/land", map[string]interface{}{"expectedJoiningDate": "2024-07-20"})
	code, body := c.do(http.MethodDelete, "/profile", nil)
	if code != http.StatusOK || body["assignmentsDeleted"] != float64(1) {
		t.Fatalf("delete: %d %v", code, body)
	}
	anon := &client{t: t, srv: srv}
	if code, _ := anon.do(http.MethodPost, "/auth/login", map[string]string{"email": "ana@example.com", "password": "correct-horse"}); code != http.StatusUnauthorized {
		t.Errorf("login after delete: %d", code)
	}
}

func TestRouter_Admin(t *testing.T) {
	srv := newTestServer(t)
	c, id := signUp(t, srv, "ana@example.com")
	c.token = ""
	if code, _ := c.do(http.MethodPost, "/admin/users/"+id+"/cleanup", nil); code != http.StatusUnauthorized {
		t.Errorf("without secret: %d", code)
	}
	code, body := c.do(http.MethodPost, "/admin/users/"+id+"/cleanup", nil, "X-Crewrelief-Admin-Secret", testAdminSecret)
	if code != http.StatusOK || body["currentStatus"] != "onLand" {
		t.Errorf("cleanup: %d %v", code, body)
	}
	code, body = c.do(http.MethodPost, "/admin/users/"+id+"/assignments/boat/dedupe", nil, "X-Crewrelief-Admin-Secret", testAdminSecret)
	if code != http.StatusBadRequest {
		t.Errorf("bad kind: %d %v", code, body)
	}
}

func TestRouter_Health(t *testing.T) {
	srv := newTestServer(t)
	resp, err := srv.Client().Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("X-API-Version") != "1" {
		t.Errorf("health: %d version=%q", resp.StatusCode, resp.Header.Get("X-API-Version"))
	}
}
