package handler

import (
	"github.com/bgf/dashboard-api/internal/core/domain"
	"github.com/bgf/dashboard-api/internal/core/ports"
)

// --- Request bodies ---

type createRequestRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=5000"`
	Type        string   `json:"type" validate:"required,oneof=funding partnership scholarship general"`
	Amount      *float64 `json:"amount" validate:"omitempty,gte=0"`
}

type updateRequestRequest struct {
	Title       *string  `json:"title" validate:"omitempty,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Amount      *float64 `json:"amount" validate:"omitempty,gte=0"`
}

type addDocumentRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	URL      string `json:"url" validate:"required,url"`
	MimeType string `json:"mime_type"`
}

type updateStageRequest struct {
	Stage   string `json:"stage" validate:"required"`
	Details string `json:"details" validate:"max=2000"`
}

type delegateRequest struct {
	StaffID string `json:"staff_id" validate:"required"`
	Reason  string `json:"reason" validate:"max=2000"`
}

type commentRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// --- Responses ---

type requestLinks struct {
	Self     string `json:"self"`
	Workflow string `json:"workflow"`
	History  string `json:"history"`
}

type requestResponse struct {
	*domain.Request
	Links requestLinks `json:"_links"`
}

type requestDetailResponse struct {
	Request    requestResponse        `json:"request"`
	Workflow   *domain.WorkflowRecord `json:"workflow,omitempty"`
	NextStages []domain.RequestStatus `json:"next_stages"`
	Progress   *int                   `json:"progress,omitempty"`
}

type listRequestsResponse struct {
	Items      []requestResponse `json:"items"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

type workflowResponse struct {
	Workflow   *domain.WorkflowRecord `json:"workflow"`
	NextStages []domain.RequestStatus `json:"next_stages"`
}

type historyResponse struct {
	Items []domain.HistoryEntry `json:"items"`
}

// --- Mappers ---

func toRequestResponse(r *domain.Request) requestResponse {
	self := "/api/requests/" + r.ID
	return requestResponse{
		Request: r,
		Links: requestLinks{
			Self:     self,
			Workflow: self + "/workflow",
			History:  self + "/history",
		},
	}
}

func toDetailResponse(d *ports.RequestDetail) requestDetailResponse {
	next := d.NextStages
	if next == nil {
		next = []domain.RequestStatus{}
	}
	return requestDetailResponse{
		Request:    toRequestResponse(d.Request),
		Workflow:   d.Workflow,
		NextStages: next,
		Progress:   d.Progress,
	}
}

func toListResponse(r *ports.ListRequestsResult) listRequestsResponse {
	items := make([]requestResponse, 0, len(r.Items))
	for _, req := range r.Items {
		items = append(items, toRequestResponse(req))
	}
	return listRequestsResponse{
		Items:      items,
		Total:      r.Total,
		Page:       r.Page,
		Limit:      r.Limit,
		TotalPages: r.TotalPages,
	}
}
