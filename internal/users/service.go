package users

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/shiv-furniture/shiverp/internal/auth"
	"github.com/shiv-furniture/shiverp/internal/shared"
)

var (
	// ErrNotFound indicates the user does not exist.
	ErrNotFound = errors.New("users: not found")
	// ErrValidation indicates a rejected payload.
	ErrValidation = errors.New("users: validation failed")
)

// CreateUserInput carries an admin-created account payload.
type CreateUserInput struct {
	Email     string    `json:"email" validate:"required,email"`
	FullName  string    `json:"full_name" validate:"required"`
	Password  string    `json:"password" validate:"required,min=8"`
	Role      auth.Role `json:"role" validate:"required,oneof=admin portal_user"`
	ContactID *int64    `json:"contact_id"`
}

// UpdateUserInput edits role and contact binding.
type UpdateUserInput struct {
	FullName  string    `json:"full_name" validate:"required"`
	Role      auth.Role `json:"role" validate:"required,oneof=admin portal_user"`
	ContactID *int64    `json:"contact_id"`
}

// Service implements admin account management on top of the auth repository.
type Service struct {
	repo     Repository
	accounts auth.Repository
}

// NewService constructs the user management service.
func NewService(repo Repository, accounts auth.Repository) *Service {
	return &Service{repo: repo, accounts: accounts}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]auth.User, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (*auth.User, error) {
	user, err := s.accounts.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, ErrNotFound
	}
	return user, err
}

func (s *Service) Create(ctx context.Context, input CreateUserInput) (*auth.User, error) {
	if input.Role == auth.RolePortalUser && input.ContactID == nil {
		return nil, fmt.Errorf("%w: portal users need a contact", ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	id, err := s.accounts.Create(ctx, auth.User{
		Email:        input.Email,
		FullName:     input.FullName,
		Role:         input.Role,
		ContactID:    input.ContactID,
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, input UpdateUserInput) (*auth.User, error) {
	if input.Role == auth.RolePortalUser && input.ContactID == nil {
		return nil, fmt.Errorf("%w: portal users need a contact", ErrValidation)
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.SetRole(ctx, id, input.Role, input.ContactID); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// ToggleActive flips the account's active flag.
func (s *Service) ToggleActive(ctx context.Context, id int64) (*auth.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetActive(ctx, id, !user.IsActive); err != nil {
		return nil, err
	}
	user.IsActive = !user.IsActive
	return user, nil
}

// ResetPassword issues a random temporary password and returns it once.
func (s *Service) ResetPassword(ctx context.Context, id int64) (string, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return "", err
	}
	buf := make([]byte, 9)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate password: %w", err)
	}
	password := hex.EncodeToString(buf)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	if err := s.accounts.UpdatePassword(ctx, id, string(hash)); err != nil {
		return "", err
	}
	return password, nil
}
