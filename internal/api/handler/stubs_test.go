package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bgf/dashboard-api/internal/api/middleware"
	"github.com/bgf/dashboard-api/internal/core/domain"
	"github.com/bgf/dashboard-api/internal/core/ports"
)

var (
	beneficiary = domain.RegularUser{ID: "user_1", Email: "bea@example.com", FullName: "Bea", Role: domain.RoleBeneficiary, Status: domain.UserActive}
	hopStaff    = domain.StaffUser{ID: "staff_HOP001", Name: "Jane", Role: domain.RoleHeadOfPrograms, StaffNumber: "HOP001"}
)

// newCtx builds an echo context with the validator installed and, when id is
// non-nil, an authenticated caller.
func newCtx(method, target, body string, id domain.Identity) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if id != nil {
		c.Set(middleware.IdentityKey, id)
	}
	return c, rec
}

// --- staff auth ---

type stubStaffAuth struct {
	issueFn  func(ctx context.Context, name, code string) (*ports.StaffToken, error)
	verifyFn func(token string) (domain.StaffUser, error)
}

func (s *stubStaffAuth) IssueStaffToken(ctx context.Context, name, code string) (*ports.StaffToken, error) {
	return s.issueFn(ctx, name, code)
}

func (s *stubStaffAuth) VerifyStaffToken(token string) (domain.StaffUser, error) {
	return s.verifyFn(token)
}

func (s *stubStaffAuth) TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie("staff_token"); err == nil {
		return c.Value
	}
	return strings.TrimPrefix(r.Header.Get(echo.HeaderAuthorization), "Bearer ")
}

// --- auth ---

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, email, password string) (string, *domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) ParseUserToken(string) (domain.RegularUser, error) {
	return domain.RegularUser{}, domain.ErrTokenInvalid
}

// --- users ---

type stubUserService struct {
	users     map[string]*domain.User
	updateIn  ports.UpdateUserInput
	updateErr error
	deleted   []string
}

func (s *stubUserService) Get(_ context.Context, id string) (*domain.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (s *stubUserService) List(_ context.Context, f ports.ListUsersFilter) (*ports.ListUsersResult, error) {
	out := &ports.ListUsersResult{Page: 1, Limit: 20, TotalPages: 1}
	for _, u := range s.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		out.Items = append(out.Items, u)
	}
	out.Total = int64(len(out.Items))
	return out, nil
}

func (s *stubUserService) Update(_ context.Context, _ domain.Identity, id string, in ports.UpdateUserInput) (*domain.User, error) {
	s.updateIn = in
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if in.Role != nil {
		u.Role = *in.Role
	}
	return u, nil
}

func (s *stubUserService) Delete(_ context.Context, _ domain.Identity, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

// --- requests ---

type stubRequestService struct {
	createIn  ports.CreateRequestInput
	createRes *ports.CreateRequestResult
	createErr error
	detail    *ports.RequestDetail
	getErr    error
	listIn    ports.ListRequestsInput
	doc       domain.Document
}

func (s *stubRequestService) Create(_ context.Context, in ports.CreateRequestInput) (*ports.CreateRequestResult, error) {
	s.createIn = in
	return s.createRes, s.createErr
}

func (s *stubRequestService) Get(_ context.Context, _ domain.Identity, _ string) (*ports.RequestDetail, error) {
	return s.detail, s.getErr
}

func (s *stubRequestService) List(_ context.Context, in ports.ListRequestsInput) (*ports.ListRequestsResult, error) {
	s.listIn = in
	return &ports.ListRequestsResult{Page: 1, Limit: 20}, nil
}

func (s *stubRequestService) Update(_ context.Context, _ domain.Identity, _ string, _ ports.UpdateRequestInput) (*domain.Request, error) {
	return nil, domain.ErrRequestLocked
}

func (s *stubRequestService) AddDocument(_ context.Context, _ domain.Identity, _ string, doc domain.Document) error {
	s.doc = doc
	return nil
}

func (s *stubRequestService) Delete(context.Context, domain.Identity, string) error {
	return domain.ErrForbidden
}

// --- workflow ---

type stubWorkflowService struct {
	next      []domain.RequestStatus
	stageTo   domain.RequestStatus
	stageErr  error
	delegated string
	history   []domain.HistoryEntry
}

func (s *stubWorkflowService) GetNextPossibleStages(domain.RequestType, domain.RequestStatus) []domain.RequestStatus {
	return s.next
}

func (s *stubWorkflowService) UpdateStage(_ context.Context, _ domain.Identity, id string, to domain.RequestStatus, _ string) (*domain.WorkflowRecord, error) {
	s.stageTo = to
	if s.stageErr != nil {
		return nil, s.stageErr
	}
	return &domain.WorkflowRecord{RequestID: id, CurrentStage: to, UpdatedAt: time.Now()}, nil
}

func (s *stubWorkflowService) DelegateRequest(_ context.Context, _ domain.Identity, _, staffID, _ string) error {
	s.delegated = staffID
	return nil
}

func (s *stubWorkflowService) AddComment(context.Context, domain.Identity, string, string) error {
	return nil
}

func (s *stubWorkflowService) History(context.Context, domain.Identity, string) ([]domain.HistoryEntry, error) {
	return s.history, nil
}

// --- notifications ---

type stubNotificationService struct {
	created  ports.CreateNotificationInput
	userSeen string
	readErr  error
}

func (s *stubNotificationService) CreateNotification(_ context.Context, in ports.CreateNotificationInput) (*domain.Notification, error) {
	s.created = in
	return &domain.Notification{ID: "n1", UserID: in.UserID, Title: in.Title, Type: domain.NotificationInfo}, nil
}

func (s *stubNotificationService) List(_ context.Context, userID string, _ bool, _, _ int) (*ports.NotificationPage, error) {
	s.userSeen = userID
	return &ports.NotificationPage{UnreadCount: 2, Page: 1, Limit: 20}, nil
}

func (s *stubNotificationService) MarkAsRead(_ context.Context, userID, _ string) error {
	s.userSeen = userID
	return s.readErr
}

func (s *stubNotificationService) MarkAllAsRead(_ context.Context, userID string) (int64, error) {
	s.userSeen = userID
	return 3, nil
}

func (s *stubNotificationService) DeleteNotification(context.Context, string, string) error {
	return nil
}

func (s *stubNotificationService) GetUnreadCount(_ context.Context, userID string) (int64, error) {
	s.userSeen = userID
	return 7, nil
}

// --- health ---

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }
