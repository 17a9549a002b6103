package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/bgf/dashboard-api/internal/api/metrics"
	"github.com/bgf/dashboard-api/internal/core/domain"
	"github.com/bgf/dashboard-api/internal/core/ports"
	"github.com/bgf/dashboard-api/internal/pkg/ids"
)

const minPasswordLength = 8

// UserClaims is the payload of a regular session token.
type UserClaims struct {
	Email   string            `json:"email"`
	Name    string            `json:"name"`
	Role    domain.Role       `json:"role"`
	Status  domain.UserStatus `json:"status"`
	IsStaff bool              `json:"is_staff"`
	jwt.RegisteredClaims
}

// AuthService implements registration and login for email/password accounts.
type AuthService struct {
	repo      ports.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	now       func() time.Time
	activity  activityRecorder
}

func NewAuthService(repo ports.UserRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{repo: repo, jwtSecret: []byte(jwtSecret), tokenTTL: tokenTTL, now: time.Now}
}

// WithActivity records registrations and logins in the activity log.
func (s *AuthService) WithActivity(repo ports.ActivityRepository, log zerolog.Logger) *AuthService {
	s.activity = activityRecorder{repo: repo, log: log}
	return s
}

var _ ports.AuthService = (*AuthService)(nil)

// Register creates a beneficiary account. Elevated roles are granted by an
// admin afterwards.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	fullName := strings.TrimSpace(in.FullName)
	if email == "" || fullName == "" || len(in.Password) < minPasswordLength {
		return nil, domain.ErrInvalidInput
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := &domain.User{
		ID:           ids.New(now),
		Email:        email,
		FullName:     fullName,
		PasswordHash: string(hash),
		Role:         domain.RoleBeneficiary,
		Status:       domain.UserActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	s.activity.record(ctx, created.Identity(), "register", "user", created.ID, "", now)
	return created, nil
}

// Login checks the credentials and signs a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("user", "invalid").Inc()
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.LoginsTotal.WithLabelValues("user", "invalid").Inc()
		return "", nil, domain.ErrInvalidCredentials
	}
	if user.Status != domain.UserActive {
		return "", nil, domain.ErrUserInactive
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}

	metrics.LoginsTotal.WithLabelValues("user", "success").Inc()
	s.activity.record(ctx, user.Identity(), "login", "user", user.ID, "", s.now().UTC())
	return token, user, nil
}

// ParseUserToken verifies a session token and returns the identity it carries.
func (s *AuthService) ParseUserToken(token string) (domain.RegularUser, error) {
	claims := &UserClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.RegularUser{}, domain.ErrTokenExpired
		}
		return domain.RegularUser{}, domain.ErrTokenInvalid
	}
	if claims.IsStaff || claims.Subject == "" || !claims.Role.Valid() {
		return domain.RegularUser{}, domain.ErrTokenInvalid
	}

	return domain.RegularUser{
		ID:       claims.Subject,
		Email:    claims.Email,
		FullName: claims.Name,
		Role:     claims.Role,
		Status:   claims.Status,
	}, nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	now := s.now().UTC()
	claims := UserClaims{
		Email:  user.Email,
		Name:   user.FullName,
		Role:   user.Role,
		Status: user.Status,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.jwtSecret)
}
