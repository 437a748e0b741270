package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"queridodiario/internal/models"
	"queridodiario/internal/repository"
	"queridodiario/internal/security"
	"queridodiario/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Session is a signed-in tenant and the cookie value that proves it
type Session struct {
	Token     string
	ID        string
	ExpiresAt time.Time
	Tenant    *models.Tenant
}

// AuthService handles tenant authentication and account maintenance
type AuthService struct {
	tenants  *repository.TenantRepository
	sessions *security.SessionManager
	logger   *zap.Logger
	now      func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(tenants *repository.TenantRepository, sessions *security.SessionManager, logger *zap.Logger) *AuthService {
	return &AuthService{
		tenants:  tenants,
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
	}
}

// Login authenticates a tenant by email and password and issues a session
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	tenant, err := s.tenants.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	// Tenants created through Google sign-in have no password
	if tenant == nil || tenant.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if !security.CheckPassword(tenant.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return s.issue(tenant)
}

// OAuthLogin signs in the tenant registered with a provider-verified email.
// Unknown emails are rejected; accounts are never created here.
func (s *AuthService) OAuthLogin(ctx context.Context, email string) (*Session, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}

	tenant, err := s.tenants.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	if tenant == nil {
		s.logger.Info("OAuth login for unknown email", zap.String("email", email))
		return nil, ErrUnauthorized
	}

	return s.issue(tenant)
}

func (s *AuthService) issue(tenant *models.Tenant) (*Session, error) {
	token, claims, err := s.sessions.Issue(tenant.ID, tenant.Email)
	if err != nil {
		return nil, err
	}
	return &Session{
		Token:     token,
		ID:        claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
		Tenant:    tenant,
	}, nil
}

// Authenticate verifies a session cookie value and loads its tenant
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.Tenant, *security.SessionClaims, error) {
	claims, err := s.sessions.Parse(token)
	if err != nil {
		return nil, nil, ErrUnauthorized
	}

	tenant, err := s.tenants.GetByID(ctx, claims.TenantID())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	// Deleted tenants keep unexpired cookies around
	if tenant == nil {
		return nil, nil, ErrUnauthorized
	}
	return tenant, claims, nil
}

// CreateTenant registers a tenant account. An empty password creates an account
// that can only sign in with Google.
func (s *AuthService) CreateTenant(ctx context.Context, email, password, name, plan string) (*models.Tenant, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	if plan == "" {
		plan = models.PlanFree
	}
	if err := validation.ValidatePlan(plan); err != nil {
		return nil, err
	}

	var passwordHash string
	if password != "" {
		if err := validation.ValidatePassword(password); err != nil {
			return nil, err
		}
		hash, err := security.HashPassword(password)
		if err != nil {
			return nil, err
		}
		passwordHash = hash
	}

	existing, err := s.tenants.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing tenant: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	tenant := &models.Tenant{
		ID:           security.NewID(),
		Email:        strings.TrimSpace(email),
		PasswordHash: passwordHash,
		Name:         strings.TrimSpace(name),
		Plan:         plan,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.tenants.Create(ctx, tenant); err != nil {
		return nil, err
	}

	s.logger.Info("Tenant created", zap.String("tenant_id", tenant.ID), zap.String("plan", plan))
	return tenant, nil
}

// SetPassword replaces the password of the tenant registered with email
func (s *AuthService) SetPassword(ctx context.Context, email, password string) error {
	if err := validation.ValidatePassword(password); err != nil {
		return err
	}
	tenant, err := s.tenantByEmail(ctx, email)
	if err != nil {
		return err
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return err
	}
	if _, err := s.tenants.UpdatePassword(ctx, tenant.ID, hash); err != nil {
		return err
	}
	return nil
}

// SetPlan moves the tenant registered with email to another plan tier
func (s *AuthService) SetPlan(ctx context.Context, email, plan string) error {
	if err := validation.ValidatePlan(plan); err != nil {
		return err
	}
	tenant, err := s.tenantByEmail(ctx, email)
	if err != nil {
		return err
	}
	if _, err := s.tenants.UpdatePlan(ctx, tenant.ID, plan); err != nil {
		return err
	}
	return nil
}

// DeleteTenant removes the tenant registered with email together with its diaries
func (s *AuthService) DeleteTenant(ctx context.Context, email string) error {
	tenant, err := s.tenantByEmail(ctx, email)
	if err != nil {
		return err
	}
	ok, err := s.tenants.Delete(ctx, tenant.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTenantNotFound
	}

	s.logger.Info("Tenant deleted", zap.String("tenant_id", tenant.ID))
	return nil
}

// ListTenants returns every tenant account
func (s *AuthService) ListTenants(ctx context.Context) ([]models.Tenant, error) {
	return s.tenants.List(ctx)
}

func (s *AuthService) tenantByEmail(ctx context.Context, email string) (*models.Tenant, error) {
	tenant, err := s.tenants.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	if tenant == nil {
		return nil, ErrTenantNotFound
	}
	return tenant, nil
}
