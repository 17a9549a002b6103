package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bgf/dashboard-api/internal/core/domain"
	"github.com/bgf/dashboard-api/internal/core/ports"
)

type ReportHandler struct {
	service ports.ReportService
}

func NewReportHandler(service ports.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

type summaryResponse struct {
	Total          int64            `json:"total"`
	ByStatus       map[string]int64 `json:"by_status"`
	ByType         map[string]int64 `json:"by_type"`
	ApprovedAmount float64          `json:"approved_amount"`
	Pending        int64            `json:"pending"`
}

type activityResponse struct {
	Items []domain.ActivityLog `json:"items"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}

// Summary handles GET /api/reports/summary.
//
// @Summary      Request totals for the dashboard
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  summaryResponse
// @Failure      403  {object}  map[string]string
// @Router       /api/reports/summary [get]
func (h *ReportHandler) Summary(c echo.Context) error {
	s, err := h.service.Summary(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summaryResponse{
		Total:          s.Total,
		ByStatus:       s.ByStatus,
		ByType:         s.ByType,
		ApprovedAmount: s.ApprovedAmount,
		Pending:        s.Pending,
	})
}

// Activity handles GET /api/activity.
//
// @Summary      Recent activity, newest first
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page (1-based)"
// @Param        limit  query     int  false  "Page size (max 100)"
// @Success      200    {object}  activityResponse
// @Failure      403    {object}  map[string]string
// @Router       /api/activity [get]
func (h *ReportHandler) Activity(c echo.Context) error {
	page, err := h.service.Activity(c.Request().Context(), queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		return err
	}
	items := page.Items
	if items == nil {
		items = []domain.ActivityLog{}
	}
	return c.JSON(http.StatusOK, activityResponse{
		Items: items,
		Total: page.Total,
		Page:  page.Page,
		Limit: page.Limit,
	})
}
