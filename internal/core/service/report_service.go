package service

import (
	"context"

	"github.com/bgf/dashboard-api/internal/core/ports"
)

// ReportService serves the aggregate dashboard figures.
type ReportService struct {
	requests ports.RequestRepository
	activity ports.ActivityRepository
}

func NewReportService(requests ports.RequestRepository, activity ports.ActivityRepository) *ReportService {
	return &ReportService{requests: requests, activity: activity}
}

var _ ports.ReportService = (*ReportService)(nil)

func (s *ReportService) Summary(ctx context.Context) (*ports.RequestSummary, error) {
	return s.requests.Summary(ctx)
}

// Activity returns the most recent activity first.
func (s *ReportService) Activity(ctx context.Context, page, limit int) (*ports.ActivityPage, error) {
	page, limit = pageParams(page, limit)
	items, total, err := s.activity.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	return &ports.ActivityPage{Items: items, Total: total, Page: page, Limit: limit}, nil
}
