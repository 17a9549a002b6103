package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bgf/dashboard-api/internal/core/domain"
	"github.com/bgf/dashboard-api/internal/core/ports"
)

// Streamer upgrades a request into a live notification stream.
type Streamer interface {
	Serve(w http.ResponseWriter, r *http.Request, userID string) error
}

// NotificationHandler exposes the caller's notifications.
type NotificationHandler struct {
	service ports.NotificationService
	stream  Streamer
}

func NewNotificationHandler(service ports.NotificationService, stream Streamer) *NotificationHandler {
	return &NotificationHandler{service: service, stream: stream}
}

type createNotificationRequest struct {
	UserID   string `json:"user_id" validate:"required"`
	Title    string `json:"title" validate:"required,max=200"`
	Message  string `json:"message" validate:"required,max=2000"`
	Type     string `json:"type" validate:"omitempty,oneof=info success warning error"`
	Category string `json:"category" validate:"max=50"`
	Email    string `json:"email" validate:"omitempty,email"`
}

type notificationListResponse struct {
	Items       []domain.Notification `json:"items"`
	Total       int64                 `json:"total"`
	UnreadCount int64                 `json:"unread_count"`
	Page        int                   `json:"page"`
	Limit       int                   `json:"limit"`
}

type unreadCountResponse struct {
	Count int64 `json:"count"`
}

type markAllResponse struct {
	Updated int64 `json:"updated"`
}

// List handles GET /api/notifications.
//
// @Summary      List the caller's notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        unread  query     bool  false  "Only unread"
// @Param        page    query     int   false  "Page (1-based)"
// @Param        limit   query     int   false  "Page size (max 100)"
// @Success      200     {object}  notificationListResponse
// @Router       /api/notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}

	unread := c.QueryParam("unread") == "true"
	page, err := h.service.List(c.Request().Context(), id.IdentityID(), unread, queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		return err
	}
	items := page.Items
	if items == nil {
		items = []domain.Notification{}
	}
	return c.JSON(http.StatusOK, notificationListResponse{
		Items:       items,
		Total:       page.Total,
		UnreadCount: page.UnreadCount,
		Page:        page.Page,
		Limit:       page.Limit,
	})
}

// Create handles POST /api/notifications. Staff only.
//
// @Summary      Send a notification to a user
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createNotificationRequest  true  "Notification"
// @Success      201   {object}  domain.Notification
// @Failure      403   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /api/notifications [post]
func (h *NotificationHandler) Create(c echo.Context) error {
	var req createNotificationRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	n, err := h.service.CreateNotification(c.Request().Context(), ports.CreateNotificationInput{
		UserID:   req.UserID,
		Title:    req.Title,
		Message:  req.Message,
		Type:     domain.NotificationType(req.Type),
		Category: req.Category,
		Email:    req.Email,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, n)
}

// UnreadCount handles GET /api/notifications/unread-count.
//
// @Summary      Number of unread notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  unreadCountResponse
// @Router       /api/notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	n, err := h.service.GetUnreadCount(c.Request().Context(), id.IdentityID())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, unreadCountResponse{Count: n})
}

// MarkRead handles PUT /api/notifications/:id/read.
//
// @Summary      Mark one notification as read
// @Tags         notifications
// @Security     BearerAuth
// @Param        id   path  string  true  "Notification id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /api/notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	if err := h.service.MarkAsRead(c.Request().Context(), id.IdentityID(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkAllRead handles PUT /api/notifications/read-all.
//
// @Summary      Mark all notifications as read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  markAllResponse
// @Router       /api/notifications/read-all [put]
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	n, err := h.service.MarkAllAsRead(c.Request().Context(), id.IdentityID())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, markAllResponse{Updated: n})
}

// Delete handles DELETE /api/notifications/:id.
//
// @Summary      Delete a notification
// @Tags         notifications
// @Security     BearerAuth
// @Param        id   path  string  true  "Notification id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /api/notifications/{id} [delete]
func (h *NotificationHandler) Delete(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteNotification(c.Request().Context(), id.IdentityID(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Stream handles GET /api/notifications/stream as a websocket.
//
// @Summary      Live notification stream (websocket)
// @Tags         notifications
// @Security     BearerAuth
// @Param        token  query  string  false  "Bearer token, for clients that cannot set headers"
// @Success      101
// @Router       /api/notifications/stream [get]
func (h *NotificationHandler) Stream(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	if err := h.stream.Serve(c.Response(), c.Request(), id.IdentityID()); err != nil {
		// The upgrader already wrote the HTTP error.
		c.Logger().Debugf("websocket upgrade failed: %v", err)
	}
	return nil
}
