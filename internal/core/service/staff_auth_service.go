package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bgf/dashboard-api/internal/api/metrics"
	"github.com/bgf/dashboard-api/internal/core/domain"
	"github.com/bgf/dashboard-api/internal/core/ports"
)

const (
	// DefaultStaffCookie is the cookie carrying the staff token.
	DefaultStaffCookie = "staff_token"
	// DefaultStaffTokenTTL is the staff session lifetime.
	DefaultStaffTokenTTL = 4 * time.Hour

	staffIssuer = "bgf-dashboard"
)

// StaffClaims is the payload of a staff token.
type StaffClaims struct {
	Name        string      `json:"name"`
	Role        domain.Role `json:"role"`
	StaffNumber string      `json:"staff_number"`
	IsStaff     bool        `json:"is_staff"`
	jwt.RegisteredClaims
}

// StaffAuthService exchanges access codes for HS256 staff tokens and verifies
// them on later requests.
type StaffAuthService struct {
	codes      *AccessCodeCache
	secret     []byte
	ttl        time.Duration
	cookieName string
	now        func() time.Time
	activity   activityRecorder
	log        zerolog.Logger
}

// StaffAuthConfig configures a StaffAuthService. Zero values take defaults.
type StaffAuthConfig struct {
	Secret     string
	TTL        time.Duration
	CookieName string
	Now        func() time.Time
}

func NewStaffAuthService(codes *AccessCodeCache, cfg StaffAuthConfig, log zerolog.Logger) *StaffAuthService {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultStaffTokenTTL
	}
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultStaffCookie
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &StaffAuthService{
		codes:      codes,
		secret:     []byte(cfg.Secret),
		ttl:        cfg.TTL,
		cookieName: cfg.CookieName,
		now:        cfg.Now,
		activity:   activityRecorder{log: log},
		log:        log,
	}
}

// WithActivity records successful logins in the activity log.
func (s *StaffAuthService) WithActivity(repo ports.ActivityRepository) *StaffAuthService {
	s.activity.repo = repo
	return s
}

var _ ports.StaffAuthService = (*StaffAuthService)(nil)

// CookieName is the name of the cookie the token is delivered in.
func (s *StaffAuthService) CookieName() string { return s.cookieName }

// TTL is the lifetime of issued tokens.
func (s *StaffAuthService) TTL() time.Duration { return s.ttl }

// IssueStaffToken resolves accessCode and signs a token for fullName.
func (s *StaffAuthService) IssueStaffToken(ctx context.Context, fullName, accessCode string) (*ports.StaffToken, error) {
	fullName = strings.TrimSpace(fullName)
	code := domain.NormalizeAccessCode(accessCode)
	if fullName == "" || code == "" {
		return nil, domain.ErrInvalidInput
	}

	ac, ok := s.codes.Lookup(ctx, code)
	if !ok {
		metrics.LoginsTotal.WithLabelValues("staff", "invalid").Inc()
		return nil, domain.ErrAccessCodeInvalid
	}

	now := s.now().UTC()
	exp := now.Add(s.ttl)
	staff := domain.StaffUser{
		ID:          domain.StaffIDFor(ac.Code),
		Name:        fullName,
		Role:        ac.Role,
		StaffNumber: ac.Code,
		ExpiresAt:   exp.Truncate(time.Second),
	}

	claims := StaffClaims{
		Name:        staff.Name,
		Role:        staff.Role,
		StaffNumber: staff.StaffNumber,
		IsStaff:     true,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   staff.ID,
			Issuer:    staffIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	metrics.LoginsTotal.WithLabelValues("staff", "success").Inc()
	s.log.Info().Str("staff_id", staff.ID).Str("role", string(staff.Role)).Msg("staff token issued")
	s.activity.record(ctx, staff, "login", "staff", staff.ID, "access code", now)

	return &ports.StaffToken{Token: signed, Staff: staff, ExpiresAt: staff.ExpiresAt}, nil
}

// VerifyStaffToken checks the signature and expiry of token and rebuilds the
// staff identity from its claims.
func (s *StaffAuthService) VerifyStaffToken(token string) (domain.StaffUser, error) {
	if token == "" {
		metrics.TokenVerificationsTotal.WithLabelValues("missing").Inc()
		return domain.StaffUser{}, domain.ErrTokenMissing
	}

	claims := &StaffClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			metrics.TokenVerificationsTotal.WithLabelValues("malformed").Inc()
			return domain.StaffUser{}, domain.ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			metrics.TokenVerificationsTotal.WithLabelValues("expired").Inc()
			return domain.StaffUser{}, domain.ErrTokenExpired
		default:
			metrics.TokenVerificationsTotal.WithLabelValues("invalid").Inc()
			return domain.StaffUser{}, domain.ErrTokenInvalid
		}
	}

	if !claims.IsStaff || !claims.Role.IsStaff() {
		metrics.TokenVerificationsTotal.WithLabelValues("not_staff").Inc()
		return domain.StaffUser{}, domain.ErrNotStaff
	}

	metrics.TokenVerificationsTotal.WithLabelValues("ok").Inc()
	return domain.StaffUser{
		ID:          claims.Subject,
		Name:        claims.Name,
		Role:        claims.Role,
		StaffNumber: claims.StaffNumber,
		ExpiresAt:   claims.ExpiresAt.Time.UTC(),
	}, nil
}

// TokenFromRequest returns the staff cookie value, or the bearer token when
// no cookie is present.
func (s *StaffAuthService) TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(s.cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return BearerToken(r)
}

// BearerToken extracts the token from an Authorization: Bearer header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}
