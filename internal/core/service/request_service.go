package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bgf/dashboard-api/internal/api/metrics"
	"github.com/bgf/dashboard-api/internal/core/domain"
	"github.com/bgf/dashboard-api/internal/core/ports"
	"github.com/bgf/dashboard-api/internal/core/workflow"
	"github.com/bgf/dashboard-api/internal/pkg/ids"
)

// IdempotencyStore remembers which request an Idempotency-Key produced.
type IdempotencyStore interface {
	Lookup(ctx context.Context, key string) (requestID string, found bool, err error)
	Remember(ctx context.Context, key, requestID string) error
}

// RequestService implements request submission and maintenance.
type RequestService struct {
	graphs    *workflow.Registry
	repo      ports.RequestRepository
	workflows ports.WorkflowRepository
	idem      IdempotencyStore
	notifier  Notifier
	activity  activityRecorder
	now       func() time.Time
	logger    zerolog.Logger
}

// NewRequestService wires the request use cases. idem, activityRepo and
// notifier may be nil.
func NewRequestService(
	graphs *workflow.Registry,
	repo ports.RequestRepository,
	workflows ports.WorkflowRepository,
	idem IdempotencyStore,
	activityRepo ports.ActivityRepository,
	notifier Notifier,
	logger zerolog.Logger,
) *RequestService {
	return &RequestService{
		graphs:    graphs,
		repo:      repo,
		workflows: workflows,
		idem:      idem,
		notifier:  notifier,
		activity:  activityRecorder{repo: activityRepo, log: logger},
		now:       time.Now,
		logger:    logger,
	}
}

var _ ports.RequestService = (*RequestService)(nil)

// Create submits a new request. If the idempotency key was already used by
// the same requester, the earlier request is returned without side effects.
func (s *RequestService) Create(ctx context.Context, in ports.CreateRequestInput) (*ports.CreateRequestResult, error) {
	if in.Requester == nil {
		return nil, domain.ErrForbidden
	}
	if role := in.Requester.IdentityRole(); role != domain.RoleBeneficiary && role != domain.RoleAdmin {
		return nil, fmt.Errorf("create request: %w: %s may not submit requests", domain.ErrForbidden, role)
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("create request: %w: title is required", domain.ErrInvalidInput)
	}
	if in.Amount != nil && *in.Amount < 0 {
		return nil, fmt.Errorf("create request: %w: amount must not be negative", domain.ErrInvalidInput)
	}
	graph, ok := s.graphs.Graph(in.Type)
	if !ok {
		return nil, fmt.Errorf("create request: %w: %s", domain.ErrUnknownRequestType, in.Type)
	}

	var idemKey string
	if in.IdempotencyKey != "" {
		idemKey = in.Requester.IdentityID() + ":" + in.IdempotencyKey
		if existing := s.replay(ctx, idemKey); existing != nil {
			s.logger.Info().Str("idempotency_key", in.IdempotencyKey).Str("ticket_number", existing.TicketNumber).Msg("idempotent replay")
			return &ports.CreateRequestResult{Request: existing, AlreadyExisted: true}, nil
		}
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	req := &domain.Request{
		ID:             ids.New(now),
		TicketNumber:   generateTicketNumber(),
		Title:          title,
		Description:    strings.TrimSpace(in.Description),
		Type:           in.Type,
		Status:         graph.Initial,
		Amount:         in.Amount,
		RequesterID:    in.Requester.IdentityID(),
		RequesterName:  in.Requester.DisplayName(),
		RequesterEmail: in.RequesterEmail,
		Documents:      []domain.Document{},
		IdempotencyKey: idemKey,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, req); err != nil {
		// A concurrent submission with the same key won the insert.
		if idemKey != "" && errors.Is(err, domain.ErrDuplicateRequest) {
			if existing, findErr := s.repo.FindByIdempotencyKey(ctx, idemKey); findErr == nil {
				s.logger.Info().Str("idempotency_key", in.IdempotencyKey).Str("ticket_number", existing.TicketNumber).Msg("idempotent replay after duplicate insert")
				return &ports.CreateRequestResult{Request: existing, AlreadyExisted: true}, nil
			}
		}
		s.logger.Error().Err(err).Msg("failed to create request")
		return nil, fmt.Errorf("create request: %w", err)
	}

	rec := &domain.WorkflowRecord{
		RequestID:    req.ID,
		RequestType:  req.Type,
		CurrentStage: graph.Initial,
		UpdatedAt:    now,
	}
	if err := s.workflows.Create(ctx, rec); err != nil {
		if delErr := s.repo.Delete(ctx, req.ID); delErr != nil {
			s.logger.Error().Err(delErr).Str("request_id", req.ID).Msg("failed to roll back request without workflow")
		}
		return nil, fmt.Errorf("create request: workflow: %w", err)
	}

	entry := &domain.HistoryEntry{
		RequestID: req.ID,
		Action:    domain.ActionStatusChange,
		NewStatus: graph.Initial,
		ActorID:   req.RequesterID,
		ActorName: req.RequesterName,
		Details:   "Request submitted",
		CreatedAt: now,
	}
	if err := appendHistory(ctx, s.workflows, entry); err != nil {
		s.rollback(ctx, req.ID)
		return nil, fmt.Errorf("create request: history: %w", err)
	}

	if idemKey != "" && s.idem != nil {
		if err := s.idem.Remember(ctx, idemKey, req.ID); err != nil {
			s.logger.Warn().Err(err).Str("request_id", req.ID).Msg("failed to store idempotency key")
		}
	}

	metrics.RequestsCreatedTotal.WithLabelValues(string(req.Type)).Inc()
	s.logger.Info().Str("ticket_number", req.TicketNumber).Str("requester_id", req.RequesterID).Msg("request created")

	s.activity.record(ctx, in.Requester, "create", "request", req.ID, req.TicketNumber, now)
	if s.notifier != nil {
		_, err := s.notifier.CreateNotification(ctx, ports.CreateNotificationInput{
			UserID:   req.RequesterID,
			Title:    "Request " + req.TicketNumber + " submitted",
			Message:  fmt.Sprintf("We received %q and will review it shortly.", req.Title),
			Type:     domain.NotificationSuccess,
			Category: domain.CategoryWorkflow,
			Email:    req.RequesterEmail,
		})
		if err != nil {
			metrics.FanoutErrorsTotal.WithLabelValues("workflow").Inc()
			s.logger.Warn().Err(err).Str("request_id", req.ID).Msg("submission notification failed")
		}
	}

	return &ports.CreateRequestResult{Request: req}, nil
}

// rollback removes a request whose workflow record exists but whose first
// history entry could not be written.
func (s *RequestService) rollback(ctx context.Context, requestID string) {
	ctx = context.WithoutCancel(ctx)
	if err := s.workflows.Delete(ctx, requestID); err != nil {
		s.logger.Error().Err(err).Str("request_id", requestID).Msg("failed to roll back workflow record")
	}
	if err := s.repo.Delete(ctx, requestID); err != nil {
		s.logger.Error().Err(err).Str("request_id", requestID).Msg("failed to roll back request")
	}
}

// replay returns the request an idempotency key already produced. Redis is
// consulted first; the stored key on the request is the fallback.
func (s *RequestService) replay(ctx context.Context, key string) *domain.Request {
	if s.idem != nil {
		id, found, err := s.idem.Lookup(ctx, key)
		switch {
		case err != nil:
			s.logger.Warn().Err(err).Msg("idempotency lookup failed, checking store")
		case found:
			existing, err := s.repo.FindByID(ctx, id)
			if err == nil {
				return existing
			}
		default:
			return nil
		}
	}
	existing, err := s.repo.FindByIdempotencyKey(ctx, key)
	if err != nil {
		return nil
	}
	return existing
}

// Get returns a request with its workflow state.
func (s *RequestService) Get(ctx context.Context, caller domain.Identity, id string) (*ports.RequestDetail, error) {
	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(caller, req) {
		return nil, domain.ErrRequestNotFound
	}

	detail := &ports.RequestDetail{Request: req, NextStages: []domain.RequestStatus{}}
	rec, err := s.workflows.Find(ctx, id)
	switch {
	case err == nil:
		detail.Workflow = rec
		detail.NextStages = s.graphs.NextStages(rec.RequestType, rec.CurrentStage)
	case errors.Is(err, domain.ErrWorkflowNotFound):
		s.logger.Warn().Str("request_id", id).Msg("request has no workflow record")
	default:
		return nil, err
	}
	if pct, ok := req.Status.Progress(); ok {
		detail.Progress = &pct
	}
	return detail, nil
}

// List returns a page of requests. Non-staff callers only see their own.
func (s *RequestService) List(ctx context.Context, in ports.ListRequestsInput) (*ports.ListRequestsResult, error) {
	if in.Caller == nil {
		return nil, domain.ErrForbidden
	}
	page, limit := pageParams(in.Page, in.Limit)

	filter := ports.ListRequestsFilter{
		Status:     in.Status,
		Type:       in.Type,
		AssignedTo: in.AssignedTo,
		Search:     strings.TrimSpace(in.Search),
		Page:       page,
		Limit:      limit,
	}
	if !in.Caller.IdentityRole().IsStaff() {
		filter.RequesterID = in.Caller.IdentityID()
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ports.ListRequestsResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

// Update edits the request body while it is still editable.
func (s *RequestService) Update(ctx context.Context, caller domain.Identity, id string, in ports.UpdateRequestInput) (*domain.Request, error) {
	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(caller, req) {
		return nil, domain.ErrRequestNotFound
	}
	if caller.IdentityID() != req.RequesterID && caller.IdentityRole() != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	if !req.Status.Editable() {
		return nil, fmt.Errorf("update request: %w (status %s)", domain.ErrRequestLocked, req.Status)
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, fmt.Errorf("update request: %w: title is required", domain.ErrInvalidInput)
		}
		req.Title = title
	}
	if in.Description != nil {
		req.Description = strings.TrimSpace(*in.Description)
	}
	if in.Amount != nil {
		if *in.Amount < 0 {
			return nil, fmt.Errorf("update request: %w: amount must not be negative", domain.ErrInvalidInput)
		}
		req.Amount = in.Amount
	}
	req.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, req); err != nil {
		return nil, fmt.Errorf("update request: %w", err)
	}
	s.activity.record(ctx, caller, "update", "request", req.ID, req.TicketNumber, req.UpdatedAt)
	return req, nil
}

// AddDocument attaches document metadata to a request.
func (s *RequestService) AddDocument(ctx context.Context, caller domain.Identity, id string, doc domain.Document) error {
	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !canView(caller, req) {
		return domain.ErrRequestNotFound
	}
	doc.Name = strings.TrimSpace(doc.Name)
	doc.URL = strings.TrimSpace(doc.URL)
	if doc.Name == "" || doc.URL == "" {
		return fmt.Errorf("add document: %w: name and url are required", domain.ErrInvalidInput)
	}
	doc.UploadedBy = caller.IdentityID()
	doc.UploadedAt = s.now().UTC()

	if err := s.repo.AddDocument(ctx, id, doc); err != nil {
		return fmt.Errorf("add document: %w", err)
	}
	s.activity.record(ctx, caller, "add_document", "request", id, doc.Name, doc.UploadedAt)
	return nil
}

// Delete removes a request and its workflow record. History is kept.
func (s *RequestService) Delete(ctx context.Context, caller domain.Identity, id string) error {
	if caller == nil || caller.IdentityRole() != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.workflows.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrWorkflowNotFound) {
		s.logger.Warn().Err(err).Str("request_id", id).Msg("failed to delete workflow record")
	}
	s.activity.record(ctx, caller, "delete", "request", id, "", s.now().UTC())
	return nil
}

// generateTicketNumber returns a ticket number in the format BGF-XXXXXXXX.
func generateTicketNumber() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("BGF-%08X", time.Now().UnixNano()&0xFFFFFFFF)
	}
	return fmt.Sprintf("BGF-%08X", b)
}
