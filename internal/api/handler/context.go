package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/bgf/dashboard-api/internal/api/middleware"
	"github.com/bgf/dashboard-api/internal/core/domain"
)

// caller returns the identity injected by the auth middleware. Its absence
// means the route was registered without it, which is a 401 for the client.
func caller(c echo.Context) (domain.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return id, nil
}

// bindValid binds the body and runs struct validation. Malformed payloads
// are 400, validation failures 422.
func bindValid(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}

// queryInt parses an optional integer query parameter; invalid values fall
// back to 0 and the service applies its defaults.
func queryInt(c echo.Context, name string) int {
	n, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return 0
	}
	return n
}

type messageResponse struct {
	Message string `json:"message"`
}
