package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bgf/dashboard-api/internal/core/domain"
)

func TestHTTPErrorHandler_MapsDomainErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"access code", domain.ErrAccessCodeInvalid, http.StatusUnauthorized, "Invalid access code"},
		{"missing token", domain.ErrTokenMissing, http.StatusUnauthorized, "No authentication token provided"},
		{"malformed token", domain.ErrTokenMalformed, http.StatusUnauthorized, "Malformed token"},
		{"expired token", domain.ErrTokenExpired, http.StatusUnauthorized, "Token has expired"},
		{"not staff", domain.ErrNotStaff, http.StatusUnauthorized, "Token does not belong to a staff member"},
		{"bad signature", domain.ErrTokenInvalid, http.StatusUnauthorized, "Invalid token"},
		{"credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{"inactive", domain.ErrUserInactive, http.StatusForbidden, "user account is inactive"},
		{"forbidden wrapped", fmt.Errorf("delegate: %w", domain.ErrForbidden), http.StatusForbidden, "access forbidden"},
		{"request missing", domain.ErrRequestNotFound, http.StatusNotFound, "request not found"},
		{"workflow missing", domain.ErrWorkflowNotFound, http.StatusNotFound, "workflow record not found"},
		{"user missing", domain.ErrUserNotFound, http.StatusNotFound, "user not found"},
		{"notification missing", domain.ErrNotificationNotFound, http.StatusNotFound, "notification not found"},
		{"duplicate email", domain.ErrUserExists, http.StatusConflict, "user already exists"},
		{"duplicate request", fmt.Errorf("insert request: %w", domain.ErrDuplicateRequest), http.StatusConflict, "request already exists"},
		{
			"bad transition keeps detail",
			fmt.Errorf("update stage: %w: submitted -> approved", domain.ErrInvalidTransition),
			http.StatusUnprocessableEntity,
			"update stage: invalid stage transition: submitted -> approved",
		},
		{"locked", domain.ErrRequestLocked, http.StatusUnprocessableEntity, "request can no longer be edited"},
		{
			"invalid input keeps detail",
			fmt.Errorf("create request: %w: title is required", domain.ErrInvalidInput),
			http.StatusBadRequest,
			"create request: invalid input: title is required",
		},
		{"echo error", echo.NewHTTPError(http.StatusTooManyRequests, "slow down"), http.StatusTooManyRequests, "slow down"},
		{"unknown", errors.New("mongo: connection reset"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/api/requests", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			NewHTTPErrorHandler(zerolog.Nop())(tt.err, c)

			if rec.Code != tt.wantCode {
				t.Fatalf("expected status %d, got %d", tt.wantCode, rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON body %q: %v", rec.Body.String(), err)
			}
			if body.Error != tt.wantMsg {
				t.Errorf("expected message %q, got %q", tt.wantMsg, body.Error)
			}
		})
	}
}

func TestHTTPErrorHandler_HeadHasNoBody(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodHead, "/api/requests/1", nil)
	rec := httptest.NewRecorder()

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrRequestNotFound, e.NewContext(req, rec))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", rec.Body.String())
	}
}

func TestHTTPErrorHandler_SkipsCommittedResponse(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = c.String(http.StatusOK, "done")

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrForbidden, c)

	if rec.Code != http.StatusOK || rec.Body.String() != "done" {
		t.Errorf("expected untouched response, got %d %q", rec.Code, rec.Body.String())
	}
}
