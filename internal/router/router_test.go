package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/journeymate/backend/internal/repositories"
	"github.com/journeymate/backend/pkg/config"
	"github.com/journeymate/backend/pkg/filestore"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	return newLimitedServer(t, config.RateLimitConfig{}, nil)
}

func newLimitedServer(t *testing.T, limits config.RateLimitConfig, rdb *redis.Client) *echo.Echo {
	t.Helper()
	dir := t.TempDir()

	db, err := config.OpenSQLite(filepath.Join(dir, "api.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repositories.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	files, err := filestore.New(filepath.Join(dir, "uploads"))
	if err != nil {
		t.Fatalf("filestore: %v", err)
	}

	cfg := &config.Config{
		Env:           "test",
		JWTSecret:     "router-test-secret",
		JWTExpiration: time.Hour,
		BcryptCost:    bcrypt.MinCost,
		UploadDir:     filepath.Join(dir, "uploads"),
		MaxUploadSize: "10M",
		RateLimit:     limits,
	}
	return New(Deps{Config: cfg, DB: db, Files: files, Redis: rdb})
}

func call(t *testing.T, e *echo.Echo, method, path, token string, body io.Reader, contentType string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
	}
	return rec.Code, env
}

func callJSON(t *testing.T, e *echo.Echo, method, path, token string, payload any) (int, envelope) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	return call(t, e, method, path, token, body, echo.MIMEApplicationJSON)
}

func decode(t *testing.T, env envelope, v any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}

type account struct {
	UID      string
	Username string
	Token    string
}

func signUp(t *testing.T, e *echo.Echo, name, email string) account {
	t.Helper()
	status, env := callJSON(t, e, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": email, "password": "secret123", "full_name": name,
	})
	if status != http.StatusCreated || !env.Success {
		t.Fatalf("register %s: %d %+v", email, status, env.Error)
	}
	var reg struct {
		UID      string `json:"uid"`
		Username string `json:"username"`
	}
	decode(t, env, &reg)

	status, env = callJSON(t, e, http.MethodPost, "/api/auth/login", "", map[string]any{
		"username": reg.Username, "password": "secret123",
	})
	if status != http.StatusOK {
		t.Fatalf("login %s: %d %+v", reg.Username, status, env.Error)
	}
	var login struct {
		Token string `json:"token"`
	}
	decode(t, env, &login)
	if login.Token == "" {
		t.Fatalf("login returned no token")
	}
	return account{UID: reg.UID, Username: reg.Username, Token: login.Token}
}

func tripForm(t *testing.T, title string, imageCount int) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := map[string]string{
		"title":              title,
		"description":        "Two weeks along the coast",
		"destination":        "Lisbon",
		"amount":             "1200",
		"min_age":            "20",
		"max_age":            "40",
		"person_count":       "4",
		"trip_starting_date": "2099-07-01",
		"trip_ending_date":   "2099-07-15",
		"post_expire_date":   "2099-06-30",
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for i := 0; i < imageCount; i++ {
		part, err := w.CreateFormFile("images", fmt.Sprintf("photo%d.png", i))
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		part.Write([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, w.FormDataContentType()
}

type tripView struct {
	UID    string   `json:"uid"`
	Title  string   `json:"title"`
	Images []string `json:"images"`
	Image  string   `json:"image"`
	Rating float64  `json:"rating"`
}

func TestHealth(t *testing.T) {
	e := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	e := newTestServer(t)

	status, env := callJSON(t, e, http.MethodGet, "/api/trips", "", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
	if env.Success || env.Error.Code != "UNAUTHORIZED" {
		t.Fatalf("expected UNAUTHORIZED envelope, got %+v", env)
	}

	status, env = callJSON(t, e, http.MethodPost, "/api/auth/login", "", map[string]any{"username": "ghost", "password": "nope"})
	if status != http.StatusUnauthorized || env.Error.Code != "UNAUTHORIZED" {
		t.Fatalf("expected 401 for unknown login, got %d %+v", status, env.Error)
	}
}

func TestRegisterValidationAndDuplicates(t *testing.T) {
	e := newTestServer(t)

	status, env := callJSON(t, e, http.MethodPost, "/api/auth/register", "", map[string]any{"email": "not-an-email", "password": "secret123", "full_name": "Jane Doe"})
	if status != http.StatusBadRequest || env.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected 400 VALIDATION_ERROR, got %d %+v", status, env.Error)
	}

	signUp(t, e, "Jane Doe", "jane@example.com")
	status, env = callJSON(t, e, http.MethodPost, "/api/auth/register", "", map[string]any{"email": "jane@example.com", "password": "secret123", "full_name": "Jane Again"})
	if status != http.StatusConflict || env.Error.Code != "DUPLICATE_RESOURCE" {
		t.Fatalf("expected 409 DUPLICATE_RESOURCE, got %d %+v", status, env.Error)
	}
}

func TestTripFlow(t *testing.T) {
	e := newTestServer(t)
	owner := signUp(t, e, "Olivia Owner", "olivia@example.com")
	alice := signUp(t, e, "Alice Walker", "alice@example.com")
	bob := signUp(t, e, "Bob Stone", "bob@example.com")

	body, contentType := tripForm(t, "Coast", 2)
	status, env := call(t, e, http.MethodPost, "/api/trips", owner.Token, body, contentType)
	if status != http.StatusCreated {
		t.Fatalf("create trip: %d %+v", status, env.Error)
	}
	var created tripView
	decode(t, env, &created)
	if len(created.Images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(created.Images))
	}

	for _, rater := range []struct {
		acc    account
		rating int
	}{{alice, 4}, {bob, 5}} {
		status, env := callJSON(t, e, http.MethodPost, "/api/trip-feedback", rater.acc.Token, map[string]any{
			"trip_post_uid": created.UID, "to_user_uid": owner.UID, "rating": rater.rating,
		})
		if status != http.StatusCreated {
			t.Fatalf("feedback from %s: %d %+v", rater.acc.Username, status, env.Error)
		}
	}

	status, env = callJSON(t, e, http.MethodPost, "/api/trip-feedback", alice.Token, map[string]any{
		"trip_post_uid": created.UID, "to_user_uid": owner.UID, "rating": 6,
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for rating 6, got %d", status)
	}

	status, env = callJSON(t, e, http.MethodGet, "/api/trips", alice.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("list trips: %d %+v", status, env.Error)
	}
	var listed []tripView
	decode(t, env, &listed)
	if len(listed) != 1 {
		t.Fatalf("expected one active trip, got %d", len(listed))
	}
	if listed[0].Rating != 4.5 {
		t.Fatalf("expected rating 4.5, got %v", listed[0].Rating)
	}
	if listed[0].Image == "" || len(listed[0].Images) != 0 {
		t.Fatalf("listing carries exactly one image")
	}

	status, env = callJSON(t, e, http.MethodDelete, "/api/trips/"+created.UID, alice.Token, nil)
	if status != http.StatusForbidden || env.Error.Code != "FORBIDDEN" {
		t.Fatalf("expected 403 for non-owner delete, got %d %+v", status, env.Error)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/trips/"+created.UID, nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+owner.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("owner delete: %d %s", rec.Code, rec.Body.String())
	}
	status, _ = callJSON(t, e, http.MethodGet, "/api/trips/"+created.UID, owner.Token, nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", status)
	}
}

func TestAdminOnlyUserListing(t *testing.T) {
	e := newTestServer(t)
	user := signUp(t, e, "Plain User", "plain@example.com")

	status, env := callJSON(t, e, http.MethodGet, "/api/users", user.Token, nil)
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin listing, got %d %+v", status, env.Error)
	}

	status, env = callJSON(t, e, http.MethodGet, "/api/users/me", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("me: %d %+v", status, env.Error)
	}
	var me struct {
		UID string `json:"uid"`
	}
	decode(t, env, &me)
	if me.UID != user.UID {
		t.Fatalf("expected %s, got %s", user.UID, me.UID)
	}
}

func TestRateLimitIsPerCaller(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	e := newLimitedServer(t, config.RateLimitConfig{
		Enabled:        true,
		Capacity:       3,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            2 * time.Hour,
		Prefix:         "rl",
	}, rdb)
	alice := signUp(t, e, "Alice Walker", "alice@example.com")
	bob := signUp(t, e, "Bob Stone", "bob@example.com")

	for _, acc := range []account{alice, bob} {
		for i := 0; i < 3; i++ {
			if status, env := callJSON(t, e, http.MethodGet, "/api/users/me", acc.Token, nil); status != http.StatusOK {
				t.Fatalf("%s request %d: expected 200, got %d %+v", acc.Username, i+1, status, env.Error)
			}
		}
	}

	status, env := callJSON(t, e, http.MethodGet, "/api/users/me", alice.Token, nil)
	if status != http.StatusTooManyRequests || env.Error.Code != "RATE_LIMITED" {
		t.Fatalf("expected 429 RATE_LIMITED once the bucket is empty, got %d %+v", status, env.Error)
	}
}
