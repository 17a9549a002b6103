package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bgf/dashboard-api/internal/core/domain"
	"github.com/bgf/dashboard-api/internal/core/ports"
)

// CookieConfig controls the staff session cookie.
type CookieConfig struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// StaffAuthHandler serves the access-code login flow.
type StaffAuthHandler struct {
	svc    ports.StaffAuthService
	cookie CookieConfig
}

func NewStaffAuthHandler(svc ports.StaffAuthService, cookie CookieConfig) *StaffAuthHandler {
	return &StaffAuthHandler{svc: svc, cookie: cookie}
}

type staffLoginRequest struct {
	FullName   string `json:"fullName"`
	AccessCode string `json:"accessCode"`
}

type staffResponse struct {
	Message string            `json:"message"`
	Staff   *domain.StaffUser `json:"staff,omitempty"`
	Token   string            `json:"token,omitempty"`
}

// Login exchanges a full name and access code for a staff token.
//
// @Summary      Staff login with an access code
// @Tags         staff-auth
// @Accept       json
// @Produce      json
// @Param        body  body      staffLoginRequest  true  "Name and access code"
// @Success      200   {object}  staffResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /api/staff-auth/login [post]
func (h *StaffAuthHandler) Login(c echo.Context) error {
	var req staffLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if strings.TrimSpace(req.FullName) == "" || strings.TrimSpace(req.AccessCode) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Full name and access code are required")
	}

	tok, err := h.svc.IssueStaffToken(c.Request().Context(), req.FullName, req.AccessCode)
	if err != nil {
		return err
	}

	c.SetCookie(h.sessionCookie(tok.Token, int(h.cookie.TTL.Seconds())))
	return c.JSON(http.StatusOK, staffResponse{
		Message: "Login successful",
		Staff:   &tok.Staff,
		Token:   tok.Token,
	})
}

// Verify checks the staff token from the cookie or bearer header.
//
// @Summary      Verify the current staff token
// @Tags         staff-auth
// @Produce      json
// @Success      200  {object}  staffResponse
// @Failure      401  {object}  map[string]string
// @Router       /api/staff-auth/verify [get]
func (h *StaffAuthHandler) Verify(c echo.Context) error {
	staff, err := h.svc.VerifyStaffToken(h.svc.TokenFromRequest(c.Request()))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, staffResponse{Message: "Token is valid", Staff: &staff})
}

// Logout clears the staff cookie. The token itself stays valid until it
// expires.
//
// @Summary      Staff logout
// @Tags         staff-auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /api/staff-auth/logout [post]
func (h *StaffAuthHandler) Logout(c echo.Context) error {
	c.SetCookie(h.sessionCookie("", -1))
	return c.JSON(http.StatusOK, messageResponse{Message: "Logged out"})
}

func (h *StaffAuthHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}
