package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/bgf/dashboard-api/internal/core/access"
	"github.com/bgf/dashboard-api/internal/core/domain"
	"github.com/bgf/dashboard-api/internal/core/ports"
)

func newAuthHandler(auth *stubAuthService, users *stubUserService) *AuthHandler {
	if users == nil {
		users = &stubUserService{}
	}
	return NewAuthHandler(auth, users, access.Default)
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*domain.User, error) {
			if in.Email != "bea@example.com" || in.FullName != "Bea Ortiz" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: "user_1", Email: in.Email, FullName: in.FullName, Role: domain.RoleBeneficiary}, nil
		},
	}
	h := newAuthHandler(stub, nil)

	c, rec := newCtx(http.MethodPost, "/api/auth/register", `{"email":"bea@example.com","password":"s3cret-pass","full_name":"Bea Ortiz"}`, nil)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["role"] != "beneficiary" {
		t.Fatalf("unexpected user payload: %+v", resp)
	}
	if _, leaked := user["PasswordHash"]; leaked {
		t.Fatal("password hash must not be serialized")
	}
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := newAuthHandler(stub, nil)

	c, _ := newCtx(http.MethodPost, "/api/auth/register", `{"email":"not-an-email","password":"short","full_name":""}`, nil)
	err := h.Register(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
	msg, _ := he.Message.(string)
	for _, want := range []string{"email must be a valid email", "password must be at least 8", "full_name is required"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}

func TestAuthHandler_Register_UserExists(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}
	h := newAuthHandler(stub, nil)

	c, _ := newCtx(http.MethodPost, "/api/auth/register", `{"email":"bea@example.com","password":"s3cret-pass","full_name":"Bea"}`, nil)
	if err := h.Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(_ context.Context, email, password string) (string, *domain.User, error) {
			if password != "s3cret-pass" {
				return "", nil, domain.ErrInvalidCredentials
			}
			return "token123", &domain.User{ID: "user_1", Email: email, Role: domain.RoleBeneficiary}, nil
		},
	}
	h := newAuthHandler(stub, nil)

	c, rec := newCtx(http.MethodPost, "/api/auth/login", `{"email":"bea@example.com","password":"s3cret-pass"}`, nil)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Token != "token123" || resp.User == nil || resp.User.ID != "user_1" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	c, _ = newCtx(http.MethodPost, "/api/auth/login", `{"email":"bea@example.com","password":"wrong"}`, nil)
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	c, _ = newCtx(http.MethodPost, "/api/auth/login", `{`, nil)
	var he *echo.HTTPError
	if err := h.Login(c); !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	users := &stubUserService{users: map[string]*domain.User{
		"user_1": {ID: "user_1", Email: "bea@example.com", Role: domain.RoleBeneficiary, Status: domain.UserActive},
		"user_9": {ID: "user_9", Role: domain.RoleBeneficiary, Status: domain.UserInactive},
	}}
	h := newAuthHandler(&stubAuthService{}, users)

	c, rec := newCtx(http.MethodGet, "/api/auth/me", "", beneficiary)
	if err := h.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp meResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Kind != "user" || resp.User == nil || !containsRoute(resp.Navigation, "/requests/new") {
		t.Fatalf("unexpected response: %+v", resp)
	}

	c, rec = newCtx(http.MethodGet, "/api/auth/me", "", hopStaff)
	if err := h.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp = meResponse{}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Kind != "staff" || resp.Staff == nil || !containsRoute(resp.Navigation, "/reports") {
		t.Fatalf("unexpected staff response: %+v", resp)
	}

	deactivated := domain.RegularUser{ID: "user_9", Role: domain.RoleBeneficiary, Status: domain.UserActive}
	c, _ = newCtx(http.MethodGet, "/api/auth/me", "", deactivated)
	if err := h.Me(c); !errors.Is(err, domain.ErrUserInactive) {
		t.Fatalf("expected ErrUserInactive for a since-deactivated account, got %v", err)
	}

	c, _ = newCtx(http.MethodGet, "/api/auth/me", "", nil)
	if err := h.Me(c); err == nil {
		t.Fatal("expected an error without identity")
	}
}

func containsRoute(routes []string, want string) bool {
	for _, r := range routes {
		if r == want {
			return true
		}
	}
	return false
}
