package application

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/pyrecrest/service-booking/internal/common/auth"
	"github.com/pyrecrest/service-booking/internal/common/domain"
	adminDomain "github.com/pyrecrest/service-booking/internal/domain/admin"
	"github.com/pyrecrest/service-booking/internal/notification"
)

const msgInvalidCredentials = "invalid email or password"

// SignupRequest holds the data to request an admin account.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest holds admin credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminDTO is the public view of an admin.
type AdminDTO struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// LoginDTO is returned by a successful login.
type LoginDTO struct {
	Success bool     `json:"success"`
	Token   string   `json:"token"`
	Admin   AdminDTO `json:"admin"`
}

// ApprovalDTO describes the outcome of an approval link.
type ApprovalDTO struct {
	Admin           AdminDTO
	AlreadyApproved bool
}

// AdminService handles admin signup, approval and login.
type AdminService struct {
	repo          adminDomain.Repository
	jwtManager    *auth.JWTManager
	mailer        notification.AdminMailer
	clock         domain.Clock
	publicBaseURL string
	logger        *zap.Logger
}

// NewAdminService creates a new AdminService. publicBaseURL prefixes approval links.
func NewAdminService(
	repo adminDomain.Repository,
	jwtManager *auth.JWTManager,
	mailer notification.AdminMailer,
	clock domain.Clock,
	publicBaseURL string,
	logger *zap.Logger,
) *AdminService {
	return &AdminService{
		repo:          repo,
		jwtManager:    jwtManager,
		mailer:        mailer,
		clock:         clock,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger,
	}
}

// Signup stores a pending admin and emails the approver a signed approval link. A failed
// email leaves the account pending for manual approval.
func (s *AdminService) Signup(ctx context.Context, req SignupRequest) error {
	if anyBlank(req.Name, req.Email, req.Password) {
		return domain.NewValidationError("name, email, and password are required")
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		return domain.NewValidationError(err.Error())
	}
	if !IsValidEmail(req.Email) {
		return domain.NewValidationError(msgInvalidEmail)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	a, err := adminDomain.NewAdmin(req.Name, req.Email, hash, s.clock.Now())
	if err != nil {
		return err
	}
	if err := s.repo.Save(ctx, a); err != nil {
		if domain.IsConflict(err) {
			return domain.NewConflictError("an account with this email already exists")
		}
		return fmt.Errorf("failed to save admin: %w", err)
	}

	s.logger.Info("admin signup received", zap.String("email", a.Email()))

	token, err := s.jwtManager.GenerateApprovalToken(a.Email())
	if err != nil {
		s.logger.Error("failed to sign approval token", zap.String("email", a.Email()), zap.Error(err))
		return nil
	}
	if err := s.mailer.SendApprovalRequest(ctx, notification.ApprovalRequest{
		AdminName:  a.Name(),
		AdminEmail: a.Email(),
		ApproveURL: s.approveURL(token),
	}); err != nil {
		s.logger.Error("failed to send approval email", zap.String("email", a.Email()), zap.Error(err))
	}
	return nil
}

func (s *AdminService) approveURL(token string) string {
	return s.publicBaseURL + "/api/v1/admin/approve?token=" + url.QueryEscape(token)
}

// Approve activates the admin named by an approval token. Approving twice is not an error.
func (s *AdminService) Approve(ctx context.Context, token string) (*ApprovalDTO, error) {
	if strings.TrimSpace(token) == "" {
		return nil, domain.NewValidationError("no approval token was provided")
	}
	claims, err := s.jwtManager.ValidateApprovalToken(token)
	if err != nil {
		return nil, domain.NewValidationError("this approval link is invalid or has expired")
	}

	a, err := s.repo.FindByEmail(ctx, claims.Email)
	if err != nil {
		return nil, err
	}
	result := &ApprovalDTO{Admin: AdminDTO{Name: a.Name(), Email: a.Email()}}
	if !a.Approve(s.clock.Now()) {
		result.AlreadyApproved = true
		return result, nil
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to approve admin: %w", err)
	}

	s.logger.Info("admin approved", zap.String("email", a.Email()))
	return result, nil
}

// Login checks credentials and issues an access token. Unknown emails and wrong passwords
// are indistinguishable; a correct password on a pending account is forbidden.
func (s *AdminService) Login(ctx context.Context, req LoginRequest) (*LoginDTO, error) {
	if anyBlank(req.Email, req.Password) {
		return nil, domain.NewValidationError("email and password are required")
	}

	a, err := s.repo.FindByEmail(ctx, adminDomain.NormalizeEmail(req.Email))
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewUnauthorizedError(msgInvalidCredentials)
		}
		return nil, err
	}
	if !auth.CheckPassword(a.PasswordHash(), req.Password) {
		return nil, domain.NewUnauthorizedError(msgInvalidCredentials)
	}
	if !a.IsApproved() {
		return nil, domain.NewForbiddenError("account is awaiting approval")
	}

	token, err := s.jwtManager.GenerateAccessToken(a.ID().String(), a.Email(), auth.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("admin logged in", zap.String("email", a.Email()))
	return &LoginDTO{
		Success: true,
		Token:   token,
		Admin:   AdminDTO{Name: a.Name(), Email: a.Email()},
	}, nil
}

// SeedAdmin creates an approved admin from a bcrypt hash unless the email is already taken.
// It reports whether an admin was created.
func (s *AdminService) SeedAdmin(ctx context.Context, name, email, passwordHash string) (bool, error) {
	if !auth.IsBcryptHash(passwordHash) {
		return false, errors.New("seed admin password hash is not a bcrypt hash")
	}
	if name == "" {
		name = "Administrator"
	}

	_, err := s.repo.FindByEmail(ctx, adminDomain.NormalizeEmail(email))
	if err == nil {
		return false, nil
	}
	if !domain.IsNotFound(err) {
		return false, err
	}

	now := s.clock.Now()
	a, err := adminDomain.NewAdmin(name, email, passwordHash, now)
	if err != nil {
		return false, err
	}
	a.Approve(now)
	if err := s.repo.Save(ctx, a); err != nil {
		if domain.IsConflict(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to seed admin: %w", err)
	}

	s.logger.Info("seeded admin", zap.String("email", a.Email()))
	return true, nil
}
