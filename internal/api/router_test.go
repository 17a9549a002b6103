package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/bgf/dashboard-api/internal/api/handler"
	"github.com/bgf/dashboard-api/internal/core/domain"
	"github.com/bgf/dashboard-api/internal/core/service"
)

const testSecret = "router-test-secret"

type emptyCodeStore struct{}

func (emptyCodeStore) List(context.Context) ([]domain.StaffAccessCode, error) { return nil, nil }
func (emptyCodeStore) Upsert(context.Context, domain.StaffAccessCode) error  { return nil }

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type testServer struct {
	http.Handler
	clock *clock
}

func newTestServer(t *testing.T, ratePerMin int) *testServer {
	t.Helper()
	clk := &clock{now: time.Now().UTC()}
	codes := service.NewAccessCodeCache(emptyCodeStore{}, time.Minute, clk.Now, zerolog.Nop())
	staff := service.NewStaffAuthService(codes, service.StaffAuthConfig{Secret: testSecret, Now: clk.Now}, zerolog.Nop())

	e := NewRouter(Deps{
		Log:             zerolog.Nop(),
		StaffAuth:       staff,
		Auth:            service.NewAuthService(nil, testSecret, 0),
		Health:          map[string]handler.Pinger{},
		Cookie:          handler.CookieConfig{Name: staff.CookieName(), TTL: staff.TTL()},
		LoginRatePerMin: ratePerMin,
		Metrics:         prometheus.NewRegistry(),
	})
	return &testServer{Handler: e, clock: clk}
}

func (s *testServer) do(method, target, body string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) staffLogin(t *testing.T, code string) *http.Cookie {
	t.Helper()
	rec := s.do(http.MethodPost, "/api/staff-auth/login", `{"fullName":"Jane Doe","accessCode":"`+code+`"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("staff login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == service.DefaultStaffCookie {
			return c
		}
	}
	t.Fatal("staff login: no session cookie set")
	return nil
}

func userToken(t *testing.T, role domain.Role) string {
	t.Helper()
	now := time.Now()
	claims := service.UserClaims{
		Email:  "bea@example.com",
		Name:   "Bea",
		Role:   role,
		Status: domain.UserActive,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user_1",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid error body %q: %v", rec.Body.String(), err)
	}
	return body.Error
}

func TestRouter_StaffLoginCookieOpensNavigation(t *testing.T) {
	srv := newTestServer(t, 0)
	cookie := srv.staffLogin(t, "hop001")

	if !cookie.HttpOnly {
		t.Error("expected HttpOnly cookie")
	}
	if cookie.SameSite != http.SameSiteStrictMode {
		t.Errorf("expected SameSite=Strict, got %v", cookie.SameSite)
	}
	if cookie.MaxAge != int((4 * time.Hour).Seconds()) {
		t.Errorf("expected 4h max age, got %d", cookie.MaxAge)
	}

	rec := srv.do(http.MethodGet, "/api/access/navigation", "", func(r *http.Request) { r.AddCookie(cookie) })
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var nav struct {
		Role   domain.Role `json:"role"`
		Routes []string    `json:"routes"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &nav); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if nav.Role != domain.RoleHeadOfPrograms {
		t.Errorf("expected head of programs role, got %q", nav.Role)
	}
}

func TestRouter_StaffLoginRejectsUnknownCode(t *testing.T) {
	srv := newTestServer(t, 0)

	rec := srv.do(http.MethodPost, "/api/staff-auth/login", `{"fullName":"Jane","accessCode":"NOPE"}`, nil)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if got := errorMessage(t, rec); got != "Invalid access code" {
		t.Errorf("unexpected message %q", got)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("expected no cookie on failed login")
	}
}

func TestRouter_StaffLoginMissingFields(t *testing.T) {
	srv := newTestServer(t, 0)

	rec := srv.do(http.MethodPost, "/api/staff-auth/login", `{"fullName":"  ","accessCode":"PO001"}`, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := errorMessage(t, rec); got != "Full name and access code are required" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestRouter_VerifyDistinguishesFailures(t *testing.T) {
	srv := newTestServer(t, 0)
	cookie := srv.staffLogin(t, "PO001")

	ok := srv.do(http.MethodGet, "/api/staff-auth/verify", "", func(r *http.Request) { r.AddCookie(cookie) })
	if ok.Code != http.StatusOK {
		t.Fatalf("fresh token: expected 200, got %d", ok.Code)
	}

	tests := []struct {
		name    string
		mutate  func(*http.Request)
		advance time.Duration
		wantMsg string
	}{
		{"missing", nil, 0, "No authentication token provided"},
		{
			"malformed",
			func(r *http.Request) { r.Header.Set("Authorization", "Bearer not-a-jwt") },
			0,
			"Malformed token",
		},
		{
			"expired",
			func(r *http.Request) { r.AddCookie(cookie) },
			4*time.Hour + time.Second,
			"Token has expired",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv.clock.Advance(tt.advance)
			rec := srv.do(http.MethodGet, "/api/staff-auth/verify", "", tt.mutate)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			if got := errorMessage(t, rec); got != tt.wantMsg {
				t.Errorf("expected %q, got %q", tt.wantMsg, got)
			}
		})
	}
}

func TestRouter_LogoutExpiresCookie(t *testing.T) {
	srv := newTestServer(t, 0)

	rec := srv.do(http.MethodPost, "/api/staff-auth/logout", "", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 || cookies[0].Value != "" {
		t.Errorf("expected a cleared cookie, got %+v", cookies)
	}
}

func TestRouter_BeneficiaryCannotSendNotifications(t *testing.T) {
	srv := newTestServer(t, 0)
	token := userToken(t, domain.RoleBeneficiary)

	rec := srv.do(http.MethodPost, "/api/notifications", `{"user_id":"user_2","title":"hi"}`, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	})

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_ProtectedRouteWithoutToken(t *testing.T) {
	srv := newTestServer(t, 0)

	rec := srv.do(http.MethodGet, "/api/requests", "", nil)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRouter_LoginRateLimited(t *testing.T) {
	srv := newTestServer(t, 2)
	body := `{"fullName":"Jane","accessCode":"NOPE"}`

	for i := 0; i < 2; i++ {
		if rec := srv.do(http.MethodPost, "/api/staff-auth/login", body, nil); rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, rec.Code)
		}
	}
	rec := srv.do(http.MethodPost, "/api/staff-auth/login", body, nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestRouter_HealthAndUnknownRoute(t *testing.T) {
	srv := newTestServer(t, 0)

	if rec := srv.do(http.MethodGet, "/health", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", rec.Code)
	}

	rec := srv.do(http.MethodGet, "/api/nothing-here", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if got := errorMessage(t, rec); got != "Not Found" {
		t.Errorf("expected Not Found envelope, got %q", got)
	}
}
