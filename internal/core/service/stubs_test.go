package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bgf/dashboard-api/internal/core/domain"
	"github.com/bgf/dashboard-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Clock
// ---------------------------------------------------------------------------

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users map[string]*domain.User // keyed by id
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.users[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) List(_ context.Context, f ports.ListUsersFilter) ([]*domain.User, int64, error) {
	var out []*domain.User
	for _, u := range r.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

// ---------------------------------------------------------------------------
// Access codes
// ---------------------------------------------------------------------------

type stubAccessCodeRepo struct {
	codes []domain.StaffAccessCode
	err   error
	calls int
}

func (r *stubAccessCodeRepo) List(_ context.Context) ([]domain.StaffAccessCode, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	out := make([]domain.StaffAccessCode, len(r.codes))
	copy(out, r.codes)
	return out, nil
}

func (r *stubAccessCodeRepo) Upsert(_ context.Context, code domain.StaffAccessCode) error {
	for i, c := range r.codes {
		if c.Code == code.Code {
			r.codes[i] = code
			return nil
		}
	}
	r.codes = append(r.codes, code)
	return nil
}

// ---------------------------------------------------------------------------
// Requests and workflows
// ---------------------------------------------------------------------------

type stubRequestRepo struct {
	byID      map[string]*domain.Request
	createErr error
	listed    []ports.ListRequestsFilter
}

func newStubRequestRepo() *stubRequestRepo {
	return &stubRequestRepo{byID: make(map[string]*domain.Request)}
}

func cloneRequest(r *domain.Request) *domain.Request {
	clone := *r
	clone.Documents = append([]domain.Document(nil), r.Documents...)
	return &clone
}

func (r *stubRequestRepo) Create(_ context.Context, req *domain.Request) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.byID[req.ID] = cloneRequest(req)
	return nil
}

func (r *stubRequestRepo) FindByID(_ context.Context, id string) (*domain.Request, error) {
	req, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	return cloneRequest(req), nil
}

func (r *stubRequestRepo) FindByIdempotencyKey(_ context.Context, key string) (*domain.Request, error) {
	for _, req := range r.byID {
		if req.IdempotencyKey == key {
			return cloneRequest(req), nil
		}
	}
	return nil, domain.ErrRequestNotFound
}

func (r *stubRequestRepo) List(_ context.Context, f ports.ListRequestsFilter) ([]*domain.Request, int64, error) {
	r.listed = append(r.listed, f)
	var out []*domain.Request
	for _, req := range r.byID {
		if f.RequesterID != "" && req.RequesterID != f.RequesterID {
			continue
		}
		if f.Status != "" && string(req.Status) != f.Status {
			continue
		}
		out = append(out, cloneRequest(req))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *stubRequestRepo) Update(_ context.Context, req *domain.Request) error {
	if _, ok := r.byID[req.ID]; !ok {
		return domain.ErrRequestNotFound
	}
	r.byID[req.ID] = cloneRequest(req)
	return nil
}

func (r *stubRequestRepo) SetAssignee(_ context.Context, id, assignee string, at time.Time) error {
	req, ok := r.byID[id]
	if !ok {
		return domain.ErrRequestNotFound
	}
	req.AssignedTo = assignee
	req.UpdatedAt = at
	return nil
}

func (r *stubRequestRepo) AddDocument(_ context.Context, id string, doc domain.Document) error {
	req, ok := r.byID[id]
	if !ok {
		return domain.ErrRequestNotFound
	}
	req.Documents = append(req.Documents, doc)
	return nil
}

func (r *stubRequestRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrRequestNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubRequestRepo) Summary(_ context.Context) (*ports.RequestSummary, error) {
	s := &ports.RequestSummary{ByStatus: map[string]int64{}, ByType: map[string]int64{}}
	for _, req := range r.byID {
		s.Total++
		s.ByStatus[string(req.Status)]++
		s.ByType[string(req.Type)]++
	}
	return s, nil
}

type stubWorkflowRepo struct {
	records   map[string]*domain.WorkflowRecord
	history   map[string][]domain.HistoryEntry
	createErr error
	appendErr error

	// requests receives the status half of a Transition when set.
	requests *stubRequestRepo
	// onTransition runs before a Transition is applied.
	onTransition func()
}

func newStubWorkflowRepo() *stubWorkflowRepo {
	return &stubWorkflowRepo{
		records: make(map[string]*domain.WorkflowRecord),
		history: make(map[string][]domain.HistoryEntry),
	}
}

func (r *stubWorkflowRepo) Create(_ context.Context, rec *domain.WorkflowRecord) error {
	if r.createErr != nil {
		return r.createErr
	}
	clone := *rec
	r.records[rec.RequestID] = &clone
	return nil
}

func (r *stubWorkflowRepo) Find(_ context.Context, requestID string) (*domain.WorkflowRecord, error) {
	rec, ok := r.records[requestID]
	if !ok {
		return nil, domain.ErrWorkflowNotFound
	}
	clone := *rec
	return &clone, nil
}

func (r *stubWorkflowRepo) Transition(_ context.Context, e *domain.HistoryEntry) error {
	if r.onTransition != nil {
		r.onTransition()
	}
	if r.appendErr != nil {
		return r.appendErr
	}
	rec, ok := r.records[e.RequestID]
	if !ok {
		return domain.ErrWorkflowNotFound
	}
	if rec.CurrentStage != e.PreviousStatus {
		return fmt.Errorf("%w: stage changed concurrently", domain.ErrInvalidTransition)
	}
	rec.CurrentStage = e.NewStatus
	rec.UpdatedAt = e.CreatedAt
	r.history[e.RequestID] = append(r.history[e.RequestID], *e)
	if r.requests != nil {
		if req, ok := r.requests.byID[e.RequestID]; ok {
			req.Status = e.NewStatus
			req.UpdatedAt = e.CreatedAt
		}
	}
	return nil
}

func (r *stubWorkflowRepo) Assign(_ context.Context, requestID, staffID string, at time.Time) error {
	rec, ok := r.records[requestID]
	if !ok {
		return domain.ErrWorkflowNotFound
	}
	rec.AssignedTo = staffID
	rec.UpdatedAt = at
	return nil
}

func (r *stubWorkflowRepo) AppendHistory(_ context.Context, e *domain.HistoryEntry) error {
	if r.appendErr != nil {
		return r.appendErr
	}
	r.history[e.RequestID] = append(r.history[e.RequestID], *e)
	return nil
}

func (r *stubWorkflowRepo) History(_ context.Context, requestID string) ([]domain.HistoryEntry, error) {
	return append([]domain.HistoryEntry(nil), r.history[requestID]...), nil
}

func (r *stubWorkflowRepo) LatestHistory(_ context.Context, requestID string) (*domain.HistoryEntry, error) {
	h := r.history[requestID]
	if len(h) == 0 {
		return nil, nil
	}
	last := h[len(h)-1]
	return &last, nil
}

func (r *stubWorkflowRepo) Delete(_ context.Context, requestID string) error {
	if _, ok := r.records[requestID]; !ok {
		return domain.ErrWorkflowNotFound
	}
	delete(r.records, requestID)
	return nil
}

type stubActivityRepo struct {
	entries []domain.ActivityLog
	err     error
}

func (r *stubActivityRepo) Insert(_ context.Context, e *domain.ActivityLog) error {
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, *e)
	return nil
}

func (r *stubActivityRepo) List(_ context.Context, page, limit int) ([]domain.ActivityLog, int64, error) {
	return r.entries, int64(len(r.entries)), nil
}

func (r *stubActivityRepo) actions() string {
	var out []string
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return strings.Join(out, ",")
}

// ---------------------------------------------------------------------------
// Notifications
// ---------------------------------------------------------------------------

type stubNotifier struct {
	sent []ports.CreateNotificationInput
	err  error
}

func (n *stubNotifier) CreateNotification(_ context.Context, in ports.CreateNotificationInput) (*domain.Notification, error) {
	if n.err != nil {
		return nil, n.err
	}
	n.sent = append(n.sent, in)
	return &domain.Notification{UserID: in.UserID, Title: in.Title, Type: in.Type}, nil
}

type stubNotificationRepo struct {
	items     []domain.Notification
	createErr error
}

func (r *stubNotificationRepo) Create(_ context.Context, n *domain.Notification) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.items = append(r.items, *n)
	return nil
}

func (r *stubNotificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool, page, limit int) ([]domain.Notification, int64, error) {
	var out []domain.Notification
	for _, n := range r.items {
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		out = append(out, n)
	}
	return out, int64(len(out)), nil
}

func (r *stubNotificationRepo) MarkRead(_ context.Context, id, userID string, at time.Time) error {
	for i := range r.items {
		if r.items[i].ID == id && r.items[i].UserID == userID {
			r.items[i].IsRead = true
			r.items[i].ReadAt = &at
			return nil
		}
	}
	return domain.ErrNotificationNotFound
}

func (r *stubNotificationRepo) MarkAllRead(_ context.Context, userID string, at time.Time) (int64, error) {
	var n int64
	for i := range r.items {
		if r.items[i].UserID == userID && !r.items[i].IsRead {
			r.items[i].IsRead = true
			r.items[i].ReadAt = &at
			n++
		}
	}
	return n, nil
}

func (r *stubNotificationRepo) Delete(_ context.Context, id, userID string) error {
	for i := range r.items {
		if r.items[i].ID == id && r.items[i].UserID == userID {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotificationNotFound
}

func (r *stubNotificationRepo) CountUnread(_ context.Context, userID string) (int64, error) {
	var n int64
	for _, it := range r.items {
		if it.UserID == userID && !it.IsRead {
			n++
		}
	}
	return n, nil
}

type stubPublisher struct {
	published []string
	err       error
}

func (p *stubPublisher) Publish(_ context.Context, n *domain.Notification) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, n.ID)
	return nil
}

type stubEmailQueue struct {
	queued []ports.EmailMessage
	full   bool
}

func (q *stubEmailQueue) Enqueue(msg ports.EmailMessage) bool {
	if q.full {
		return false
	}
	q.queued = append(q.queued, msg)
	return true
}

type stubIdempotency struct {
	keys      map[string]string
	lookupErr error
}

func newStubIdempotency() *stubIdempotency {
	return &stubIdempotency{keys: make(map[string]string)}
}

func (s *stubIdempotency) Lookup(_ context.Context, key string) (string, bool, error) {
	if s.lookupErr != nil {
		return "", false, s.lookupErr
	}
	id, ok := s.keys[key]
	return id, ok, nil
}

func (s *stubIdempotency) Remember(_ context.Context, key, requestID string) error {
	s.keys[key] = requestID
	return nil
}

var errStore = errors.New("store unavailable")
