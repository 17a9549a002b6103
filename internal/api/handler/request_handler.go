package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bgf/dashboard-api/internal/core/domain"
	"github.com/bgf/dashboard-api/internal/core/ports"
)

// RequestHandler handles HTTP requests for request submission and upkeep.
type RequestHandler struct {
	service ports.RequestService
}

func NewRequestHandler(service ports.RequestService) *RequestHandler {
	return &RequestHandler{service: service}
}

// Create handles POST /api/requests.
//
// @Summary      Submit a new request
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string                false  "Idempotency key to prevent duplicate submissions"
// @Param        body             body      createRequestRequest  true   "Request details"
// @Success      201              {object}  requestResponse
// @Success      200              {object}  requestResponse  "Replay of an earlier submission"
// @Failure      400              {object}  map[string]string
// @Failure      403              {object}  map[string]string
// @Failure      422              {object}  map[string]string
// @Router       /api/requests [post]
func (h *RequestHandler) Create(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	var req createRequestRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	in := ports.CreateRequestInput{
		Title:          req.Title,
		Description:    req.Description,
		Type:           domain.RequestType(req.Type),
		Amount:         req.Amount,
		Requester:      id,
		IdempotencyKey: c.Request().Header.Get("Idempotency-Key"),
	}
	if u, ok := id.(domain.RegularUser); ok {
		in.RequesterEmail = u.Email
	}

	result, err := h.service.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}

	if result.AlreadyExisted {
		c.Response().Header().Set("Idempotent-Replayed", "true")
		return c.JSON(http.StatusOK, toRequestResponse(result.Request))
	}
	return c.JSON(http.StatusCreated, toRequestResponse(result.Request))
}

// List handles GET /api/requests.
//
// @Summary      List requests
// @Description  Beneficiaries only see their own requests.
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        status       query     string  false  "Filter by status"
// @Param        type         query     string  false  "Filter by request type"
// @Param        assigned_to  query     string  false  "Filter by assignee id"
// @Param        search       query     string  false  "Partial match on ticket number or title"
// @Param        page         query     int     false  "Page (1-based)"
// @Param        limit        query     int     false  "Page size (max 100)"
// @Success      200          {object}  listRequestsResponse
// @Failure      401          {object}  map[string]string
// @Router       /api/requests [get]
func (h *RequestHandler) List(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}

	result, err := h.service.List(c.Request().Context(), ports.ListRequestsInput{
		Caller:     id,
		Status:     c.QueryParam("status"),
		Type:       c.QueryParam("type"),
		AssignedTo: c.QueryParam("assigned_to"),
		Search:     c.QueryParam("search"),
		Page:       queryInt(c, "page"),
		Limit:      queryInt(c, "limit"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListResponse(result))
}

// Get handles GET /api/requests/:id.
//
// @Summary      Get a request with its workflow state
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request id"
// @Success      200  {object}  requestDetailResponse
// @Failure      404  {object}  map[string]string
// @Router       /api/requests/{id} [get]
func (h *RequestHandler) Get(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}

	detail, err := h.service.Get(c.Request().Context(), id, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDetailResponse(detail))
}

// Update handles PUT /api/requests/:id.
//
// @Summary      Edit a request
// @Description  Allowed for the requester while the request is submitted or pending information.
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Request id"
// @Param        body  body      updateRequestRequest  true  "Fields to change"
// @Success      200   {object}  requestResponse
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /api/requests/{id} [put]
func (h *RequestHandler) Update(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	var req updateRequestRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	updated, err := h.service.Update(c.Request().Context(), id, c.Param("id"), ports.UpdateRequestInput{
		Title:       req.Title,
		Description: req.Description,
		Amount:      req.Amount,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRequestResponse(updated))
}

// AddDocument handles POST /api/requests/:id/documents.
//
// @Summary      Attach document metadata
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Request id"
// @Param        body  body      addDocumentRequest  true  "Document metadata"
// @Success      201   {object}  messageResponse
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /api/requests/{id}/documents [post]
func (h *RequestHandler) AddDocument(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	var req addDocumentRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	err = h.service.AddDocument(c.Request().Context(), id, c.Param("id"), domain.Document{
		Name:     req.Name,
		URL:      req.URL,
		MimeType: req.MimeType,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, messageResponse{Message: "document added"})
}

// Delete handles DELETE /api/requests/:id.
//
// @Summary      Delete a request
// @Tags         requests
// @Security     BearerAuth
// @Param        id   path  string  true  "Request id"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/requests/{id} [delete]
func (h *RequestHandler) Delete(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), id, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
