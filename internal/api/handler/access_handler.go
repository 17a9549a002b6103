package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bgf/dashboard-api/internal/api/middleware"
	"github.com/bgf/dashboard-api/internal/core/access"
	"github.com/bgf/dashboard-api/internal/core/domain"
)

// AccessHandler exposes the route guard to the dashboard front end.
type AccessHandler struct {
	routes *access.Table
}

func NewAccessHandler(routes *access.Table) *AccessHandler {
	return &AccessHandler{routes: routes}
}

type accessCheckRequest struct {
	Path string `json:"path" validate:"required"`
}

type navigationResponse struct {
	Role   domain.Role `json:"role"`
	Routes []string    `json:"routes"`
}

// Check decides a navigation. Anonymous callers are allowed; they get the
// login redirect for protected paths.
//
// @Summary      Decide whether the caller may open a dashboard path
// @Tags         access
// @Accept       json
// @Produce      json
// @Param        body  body      accessCheckRequest  true  "Path to check"
// @Success      200   {object}  access.Decision
// @Failure      422   {object}  map[string]string
// @Router       /api/access/check [post]
func (h *AccessHandler) Check(c echo.Context) error {
	var req accessCheckRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	var id domain.Identity
	if v, ok := middleware.IdentityFrom(c); ok {
		id = v
	}
	return c.JSON(http.StatusOK, h.routes.Decide(id, req.Path))
}

// Navigation lists the static routes the caller's role may open.
//
// @Summary      Navigation entries for the caller
// @Tags         access
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  navigationResponse
// @Failure      401  {object}  map[string]string
// @Router       /api/access/navigation [get]
func (h *AccessHandler) Navigation(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	role := id.IdentityRole()
	return c.JSON(http.StatusOK, navigationResponse{Role: role, Routes: h.routes.Navigation(role)})
}
