package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bgf/dashboard-api/internal/core/domain"
	"github.com/bgf/dashboard-api/internal/core/ports"
)

// WorkflowHandler drives requests through their stages.
type WorkflowHandler struct {
	requests ports.RequestService
	workflow ports.WorkflowService
}

func NewWorkflowHandler(requests ports.RequestService, workflow ports.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{requests: requests, workflow: workflow}
}

// Get handles GET /api/requests/:id/workflow.
//
// @Summary      Workflow record and next possible stages
// @Tags         workflow
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request id"
// @Success      200  {object}  workflowResponse
// @Failure      404  {object}  map[string]string
// @Router       /api/requests/{id}/workflow [get]
func (h *WorkflowHandler) Get(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}

	detail, err := h.requests.Get(c.Request().Context(), id, c.Param("id"))
	if err != nil {
		return err
	}
	if detail.Workflow == nil {
		return domain.ErrWorkflowNotFound
	}
	next := h.workflow.GetNextPossibleStages(detail.Request.Type, detail.Workflow.CurrentStage)
	if next == nil {
		next = []domain.RequestStatus{}
	}
	return c.JSON(http.StatusOK, workflowResponse{Workflow: detail.Workflow, NextStages: next})
}

// UpdateStage handles PUT /api/requests/:id/stage.
//
// @Summary      Move a request to another stage
// @Tags         workflow
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Request id"
// @Param        body  body      updateStageRequest  true  "Target stage"
// @Success      200   {object}  domain.WorkflowRecord
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /api/requests/{id}/stage [put]
func (h *WorkflowHandler) UpdateStage(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	var req updateStageRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	rec, err := h.workflow.UpdateStage(c.Request().Context(), id, c.Param("id"), domain.RequestStatus(req.Stage), req.Details)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

// Delegate handles POST /api/requests/:id/delegate.
//
// @Summary      Assign a request to a staff member
// @Tags         workflow
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string           true  "Request id"
// @Param        body  body      delegateRequest  true  "Delegate and reason"
// @Success      200   {object}  messageResponse
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/requests/{id}/delegate [post]
func (h *WorkflowHandler) Delegate(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	var req delegateRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	if err := h.workflow.DelegateRequest(c.Request().Context(), id, c.Param("id"), req.StaffID, req.Reason); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "request delegated"})
}

// History handles GET /api/requests/:id/history.
//
// @Summary      Request history, oldest first
// @Tags         workflow
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request id"
// @Success      200  {object}  historyResponse
// @Failure      404  {object}  map[string]string
// @Router       /api/requests/{id}/history [get]
func (h *WorkflowHandler) History(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}

	entries, err := h.workflow.History(c.Request().Context(), id, c.Param("id"))
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	return c.JSON(http.StatusOK, historyResponse{Items: entries})
}

// Comment handles POST /api/requests/:id/comments.
//
// @Summary      Comment on a request
// @Tags         workflow
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Request id"
// @Param        body  body      commentRequest  true  "Comment"
// @Success      201   {object}  messageResponse
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /api/requests/{id}/comments [post]
func (h *WorkflowHandler) Comment(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	var req commentRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	if err := h.workflow.AddComment(c.Request().Context(), id, c.Param("id"), req.Text); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, messageResponse{Message: "comment added"})
}
