package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestLoginLimiter_PerIP(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	l := NewLoginLimiter(3)
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Fatal("fourth attempt in the same instant should be refused")
	}
	if !l.Allow("10.0.0.2") {
		t.Fatal("another IP has its own bucket")
	}

	now = now.Add(21 * time.Second)
	if !l.Allow("10.0.0.1") {
		t.Fatal("a token refills within 21s at 3/min")
	}
}

func TestLoginLimiter_SweepsIdleBuckets(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	l := NewLoginLimiter(5)
	l.now = func() time.Time { return now }

	l.Allow("10.0.0.1")
	now = now.Add(bucketTTL + sweepInterval + time.Second)
	l.Allow("10.0.0.2")

	if _, ok := l.buckets["10.0.0.1"]; ok {
		t.Fatal("idle bucket should have been swept")
	}
}

func TestLoginLimiter_Disabled(t *testing.T) {
	l := NewLoginLimiter(0)
	for i := 0; i < 100; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatal("limiter with no rate should allow everything")
		}
	}
}

func TestLoginLimiter_Middleware(t *testing.T) {
	e := echo.New()
	l := NewLoginLimiter(1)
	handler := l.Middleware("staff")(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	newCtx := func() echo.Context {
		req := httptest.NewRequest(http.MethodPost, "/api/staff-auth/login", nil)
		req.RemoteAddr = "192.0.2.7:4711"
		return e.NewContext(req, httptest.NewRecorder())
	}

	if err := handler(newCtx()); err != nil {
		t.Fatalf("first attempt: %v", err)
	}
	err := handler(newCtx())
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %v", err)
	}
}
