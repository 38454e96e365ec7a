package auth

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/shiv-furniture/shiverp/internal/shared"
)

type memoryRepo struct {
	users  map[int64]*User
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: map[int64]*User{}}
}

func (m *memoryRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memoryRepo) FindByID(_ context.Context, id int64) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *memoryRepo) Create(_ context.Context, user User) (int64, error) {
	if _, err := m.FindByEmail(context.Background(), user.Email); err == nil {
		return 0, ErrDuplicateEmail
	}
	m.nextID++
	user.ID = m.nextID
	user.IsActive = true
	m.users[user.ID] = &user
	return user.ID, nil
}

func (m *memoryRepo) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	u, ok := m.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (m *memoryRepo) TouchLastLogin(_ context.Context, id int64) error {
	if u, ok := m.users[id]; ok {
		now := time.Now()
		u.LastLoginAt = &now
	}
	return nil
}

func (m *memoryRepo) CreateSession(_ context.Context, _ string, _ int64, _ time.Time, _, _ string) error {
	return nil
}

func (m *memoryRepo) DeleteSession(_ context.Context, _ string) error {
	return nil
}

func testService(t *testing.T) (*Service, *memoryRepo) {
	t.Helper()
	repo := newMemoryRepo()
	return NewService(repo, slog.Default()), repo
}

func seedUser(t *testing.T, repo *memoryRepo, email, password string, active bool) int64 {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	id, err := repo.Create(context.Background(), User{
		Email: email, FullName: "Test User", Role: RoleAdmin, PasswordHash: string(hash),
	})
	require.NoError(t, err)
	repo.users[id].IsActive = active
	return id
}

func TestAuthenticate(t *testing.T) {
	svc, repo := testService(t)
	seedUser(t, repo, "owner@shivfurniture.test", "woodgrain42", true)

	user, err := svc.Authenticate(context.Background(), "owner@shivfurniture.test", "woodgrain42")
	require.NoError(t, err)
	require.Equal(t, "owner@shivfurniture.test", user.Email)
	require.NotNil(t, repo.users[user.ID].LastLoginAt)

	_, err = svc.Authenticate(context.Background(), "owner@shivfurniture.test", "wrong-password")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "nobody@shivfurniture.test", "woodgrain42")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateRejectsInactive(t *testing.T) {
	svc, repo := testService(t)
	seedUser(t, repo, "gone@shivfurniture.test", "woodgrain42", false)

	_, err := svc.Authenticate(context.Background(), "gone@shivfurniture.test", "woodgrain42")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestRegisterCreatesPortalUser(t *testing.T) {
	svc, _ := testService(t)
	user, err := svc.Register(context.Background(), RegisterInput{
		Email: "buyer@example.test", FullName: "Buyer", Password: "longenough",
	})
	require.NoError(t, err)
	require.Equal(t, RolePortalUser, user.Role)
	require.True(t, user.IsActive)

	_, err = svc.Register(context.Background(), RegisterInput{
		Email: "buyer@example.test", FullName: "Buyer Again", Password: "longenough",
	})
	require.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestChangePassword(t *testing.T) {
	svc, repo := testService(t)
	id := seedUser(t, repo, "owner@shivfurniture.test", "woodgrain42", true)

	err := svc.ChangePassword(context.Background(), id, "not-the-password", "replacement1")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(context.Background(), id, "woodgrain42", "replacement1"))

	_, err = svc.Authenticate(context.Background(), "owner@shivfurniture.test", "replacement1")
	require.NoError(t, err)
}
