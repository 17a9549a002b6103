package service

import (
	"context"
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

// WorkflowService moves requests along their stage graphs.
type WorkflowService struct {
	graphs    *workflow.Registry
	requests  ports.RequestRepository
	workflows ports.WorkflowRepository
	notifier  Notifier
	activity  activityRecorder
	now       func() time.Time
	log       zerolog.Logger
}

// NewWorkflowService wires the workflow engine. activityRepo may be nil.
func NewWorkflowService(
	graphs *workflow.Registry,
	requests ports.RequestRepository,
	workflows ports.WorkflowRepository,
	activityRepo ports.ActivityRepository,
	notifier Notifier,
	log zerolog.Logger,
) *WorkflowService {
	return &WorkflowService{
		graphs:    graphs,
		requests:  requests,
		workflows: workflows,
		notifier:  notifier,
		activity:  activityRecorder{repo: activityRepo, log: log},
		now:       time.Now,
		log:       log,
	}
}

var _ ports.WorkflowService = (*WorkflowService)(nil)

// GetNextPossibleStages lists the stages reachable in one step. It is empty
// for terminal stages and unknown types.
func (s *WorkflowService) GetNextPossibleStages(requestType domain.RequestType, currentStage domain.RequestStatus) []domain.RequestStatus {
	return s.graphs.NextStages(requestType, currentStage)
}

// UpdateStage moves a request to newStage. The allowed targets are derived
// from the persisted stage, never from the caller.
func (s *WorkflowService) UpdateStage(ctx context.Context, actor domain.Identity, requestID string, newStage domain.RequestStatus, details string) (*domain.WorkflowRecord, error) {
	if actor == nil {
		return nil, domain.ErrForbidden
	}

	// 1. Load the request and its workflow record.
	req, rec, err := s.load(ctx, actor, requestID)
	if err != nil {
		metrics.StageTransitionErrorsTotal.WithLabelValues("not_found").Inc()
		return nil, fmt.Errorf("update stage: %w", err)
	}
	graph, ok := s.graphs.Graph(rec.RequestType)
	if !ok {
		return nil, fmt.Errorf("update stage: %w: %s", domain.ErrUnknownRequestType, rec.RequestType)
	}
	from := rec.CurrentStage

	// 2. Validate the edge.
	if !s.graphs.CanTransition(rec.RequestType, from, newStage) {
		metrics.StageTransitionErrorsTotal.WithLabelValues("invalid_transition").Inc()
		return nil, fmt.Errorf("update stage: %w (from %s to %s)", domain.ErrInvalidTransition, from, newStage)
	}

	// 3. Check who may take it.
	if !mayMove(graph, req, actor, from, newStage) {
		metrics.StageTransitionErrorsTotal.WithLabelValues("forbidden").Inc()
		return nil, fmt.Errorf("update stage: %w: %s may not act on %s", domain.ErrForbidden, actor.IdentityRole(), from)
	}

	// 4. Persist stage, status and exactly one history entry.
	at, err := nextHistoryTime(ctx, s.workflows, requestID, s.now())
	if err != nil {
		metrics.StageTransitionErrorsTotal.WithLabelValues("store").Inc()
		return nil, fmt.Errorf("update stage: %w", err)
	}
	entry := &domain.HistoryEntry{
		ID:             ids.New(at),
		RequestID:      requestID,
		Action:         domain.ActionStatusChange,
		PreviousStatus: from,
		NewStatus:      newStage,
		ActorID:        actor.IdentityID(),
		ActorName:      actor.DisplayName(),
		Details:        strings.TrimSpace(details),
		CreatedAt:      at,
	}
	if err := s.workflows.Transition(ctx, entry); err != nil {
		reason := "store"
		if errors.Is(err, domain.ErrInvalidTransition) {
			reason = "conflict"
		}
		metrics.StageTransitionErrorsTotal.WithLabelValues(reason).Inc()
		return nil, fmt.Errorf("update stage: %w", err)
	}

	rec.CurrentStage = newStage
	rec.UpdatedAt = at
	metrics.StageTransitionsTotal.WithLabelValues(string(rec.RequestType), string(newStage)).Inc()

	s.log.Info().
		Str("request_id", requestID).
		Str("from", string(from)).
		Str("to", string(newStage)).
		Str("actor_id", actor.IdentityID()).
		Msg("stage updated")

	// 5. Side effects never fail the transition.
	s.activity.record(ctx, actor, "stage_change", "request", requestID, fmt.Sprintf("%s -> %s", from, newStage), at)
	s.notify(ctx, ports.CreateNotificationInput{
		UserID:   req.RequesterID,
		Title:    "Request " + req.TicketNumber + " updated",
		Message:  fmt.Sprintf("Your request %q moved to %s.", req.Title, stageLabel(newStage)),
		Type:     stageNotificationType(newStage),
		Category: domain.CategoryWorkflow,
		Email:    req.RequesterEmail,
	})

	return rec, nil
}

// DelegateRequest reassigns a request to another staff member.
func (s *WorkflowService) DelegateRequest(ctx context.Context, actor domain.Identity, requestID, staffID, reason string) error {
	if actor == nil || !actor.IdentityRole().IsStaff() {
		return domain.ErrForbidden
	}
	staffID = strings.TrimSpace(staffID)
	if staffID == "" {
		return fmt.Errorf("delegate: %w: staff id is required", domain.ErrInvalidInput)
	}

	req, rec, err := s.load(ctx, actor, requestID)
	if err != nil {
		return fmt.Errorf("delegate: %w", err)
	}

	at, err := nextHistoryTime(ctx, s.workflows, requestID, s.now())
	if err != nil {
		return fmt.Errorf("delegate: %w", err)
	}
	if err := s.workflows.Assign(ctx, requestID, staffID, at); err != nil {
		return fmt.Errorf("delegate: workflow: %w", err)
	}
	if err := s.requests.SetAssignee(ctx, requestID, staffID, at); err != nil {
		return fmt.Errorf("delegate: request: %w", err)
	}

	details := "Delegated to " + staffID
	if reason = strings.TrimSpace(reason); reason != "" {
		details += ": " + reason
	}
	entry := &domain.HistoryEntry{
		RequestID:      requestID,
		Action:         domain.ActionAssignment,
		PreviousStatus: rec.CurrentStage,
		NewStatus:      rec.CurrentStage,
		ActorID:        actor.IdentityID(),
		ActorName:      actor.DisplayName(),
		Details:        details,
		CreatedAt:      at,
	}
	if err := appendHistory(ctx, s.workflows, entry); err != nil {
		return fmt.Errorf("delegate: %w", err)
	}

	metrics.DelegationsTotal.Inc()
	s.log.Info().Str("request_id", requestID).Str("assigned_to", staffID).Str("actor_id", actor.IdentityID()).Msg("request delegated")

	s.activity.record(ctx, actor, "delegate", "request", requestID, details, at)
	s.notify(ctx, ports.CreateNotificationInput{
		UserID:   staffID,
		Title:    "Request " + req.TicketNumber + " assigned to you",
		Message:  fmt.Sprintf("%s delegated %q to you.", actor.DisplayName(), req.Title),
		Type:     domain.NotificationInfo,
		Category: domain.CategoryAssignment,
	})
	return nil
}

// AddComment appends a comment entry to the request history.
func (s *WorkflowService) AddComment(ctx context.Context, actor domain.Identity, requestID, text string) error {
	if actor == nil {
		return domain.ErrForbidden
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("comment: %w: text is required", domain.ErrInvalidInput)
	}

	req, rec, err := s.load(ctx, actor, requestID)
	if err != nil {
		return fmt.Errorf("comment: %w", err)
	}

	at, err := nextHistoryTime(ctx, s.workflows, requestID, s.now())
	if err != nil {
		return fmt.Errorf("comment: %w", err)
	}
	entry := &domain.HistoryEntry{
		RequestID: requestID,
		Action:    domain.ActionComment,
		NewStatus: rec.CurrentStage,
		ActorID:   actor.IdentityID(),
		ActorName: actor.DisplayName(),
		Details:   text,
		CreatedAt: at,
	}
	if err := appendHistory(ctx, s.workflows, entry); err != nil {
		return fmt.Errorf("comment: %w", err)
	}

	if actor.IdentityID() != req.RequesterID {
		s.notify(ctx, ports.CreateNotificationInput{
			UserID:   req.RequesterID,
			Title:    "New comment on " + req.TicketNumber,
			Message:  fmt.Sprintf("%s commented on %q.", actor.DisplayName(), req.Title),
			Type:     domain.NotificationInfo,
			Category: domain.CategoryWorkflow,
		})
	}
	return nil
}

// History returns the request's entries oldest first.
func (s *WorkflowService) History(ctx context.Context, caller domain.Identity, requestID string) ([]domain.HistoryEntry, error) {
	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	if !canView(caller, req) {
		return nil, fmt.Errorf("history: %w", domain.ErrRequestNotFound)
	}
	return s.workflows.History(ctx, requestID)
}

// load fetches the request and its workflow record. Requests the caller may
// not see are reported as not found.
func (s *WorkflowService) load(ctx context.Context, caller domain.Identity, requestID string) (*domain.Request, *domain.WorkflowRecord, error) {
	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	if !canView(caller, req) {
		return nil, nil, domain.ErrRequestNotFound
	}
	rec, err := s.workflows.Find(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	return req, rec, nil
}

func (s *WorkflowService) notify(ctx context.Context, in ports.CreateNotificationInput) {
	if s.notifier == nil || in.UserID == "" {
		return
	}
	if _, err := s.notifier.CreateNotification(ctx, in); err != nil {
		metrics.FanoutErrorsTotal.WithLabelValues("workflow").Inc()
		s.log.Warn().Err(err).Str("user_id", in.UserID).Msg("workflow notification failed")
	}
}

// mayMove reports whether actor may take the from -> to edge. Reviewers act
// on the stages their role is listed for; requesters may only withdraw.
func mayMove(g *workflow.Graph, req *domain.Request, actor domain.Identity, from, to domain.RequestStatus) bool {
	role := actor.IdentityRole()
	if role.IsStaff() && g.MayAct(from, role) {
		return true
	}
	return actor.IdentityID() == req.RequesterID && g.RequesterMay(to)
}

func stageNotificationType(stage domain.RequestStatus) domain.NotificationType {
	switch stage {
	case domain.StatusApproved:
		return domain.NotificationSuccess
	case domain.StatusRejected:
		return domain.NotificationError
	case domain.StatusPendingInformation:
		return domain.NotificationWarning
	default:
		return domain.NotificationInfo
	}
}

func stageLabel(stage domain.RequestStatus) string {
	return strings.ReplaceAll(string(stage), "_", " ")
}
