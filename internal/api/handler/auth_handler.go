package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bgf/dashboard-api/internal/core/access"
	"github.com/bgf/dashboard-api/internal/core/domain"
	"github.com/bgf/dashboard-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	users       ports.UserService
	routes      *access.Table
}

func NewAuthHandler(authService ports.AuthService, users ports.UserService, routes *access.Table) *AuthHandler {
	return &AuthHandler{authService: authService, users: users, routes: routes}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required,max=120"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string       `json:"token,omitempty"`
	User  *domain.User `json:"user,omitempty"`
}

type meResponse struct {
	Kind       string            `json:"kind"`
	User       *domain.User      `json:"user,omitempty"`
	Staff      *domain.StaffUser `json:"staff,omitempty"`
	Navigation []string          `json:"navigation"`
}

// Register creates a new beneficiary account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, authResponse{User: user})
}

// Login authenticates a user and returns a JWT token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{Token: token, User: user})
}

// Me returns the signed-in identity. Regular accounts are re-read so role
// and status changes show up without a new login.
//
// @Summary      Current identity
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  meResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}

	switch v := id.(type) {
	case domain.StaffUser:
		return c.JSON(http.StatusOK, meResponse{
			Kind:       "staff",
			Staff:      &v,
			Navigation: h.routes.Navigation(v.Role),
		})
	case domain.RegularUser:
		user, err := h.users.Get(c.Request().Context(), v.ID)
		if err != nil {
			return err
		}
		if user.Status != domain.UserActive {
			return domain.ErrUserInactive
		}
		return c.JSON(http.StatusOK, meResponse{
			Kind:       "user",
			User:       user,
			Navigation: h.routes.Navigation(user.Role),
		})
	}
	return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
}
