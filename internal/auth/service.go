package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/shiv-furniture/shiverp/internal/shared"
)

// RegisterInput carries a self-service signup payload. Self-registered
// accounts become portal users.
type RegisterInput struct {
	Email     string `json:"email" validate:"required,email"`
	FullName  string `json:"full_name" validate:"required"`
	Password  string `json:"password" validate:"required,min=8"`
	ContactID *int64 `json:"contact_id"`
}

// Service wraps authentication business rules.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a new Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if err := s.repo.TouchLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("touch last login", slog.Any("error", err))
	}
	return user, nil
}

// Register creates a portal user account.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := User{
		Email:        input.Email,
		FullName:     input.FullName,
		Role:         RolePortalUser,
		ContactID:    input.ContactID,
		PasswordHash: string(hash),
	}
	id, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

// Me loads the account for the session's user id.
func (s *Service) Me(ctx context.Context, userID int64) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

// ChangePassword verifies the current password before storing a new hash.
func (s *Service) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return shared.ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, userID, string(hash))
}

// RegisterSession persists the session metadata in postgres.
func (s *Service) RegisterSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}
