package users

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/shiv-furniture/shiverp/internal/auth"
	"github.com/shiv-furniture/shiverp/internal/shared"
)

type memoryAccounts struct {
	users  map[int64]*auth.User
	nextID int64
}

func newMemoryAccounts() *memoryAccounts {
	return &memoryAccounts{users: map[int64]*auth.User{}}
}

func (m *memoryAccounts) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memoryAccounts) FindByID(_ context.Context, id int64) (*auth.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *memoryAccounts) Create(_ context.Context, user auth.User) (int64, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return 0, auth.ErrDuplicateEmail
		}
	}
	m.nextID++
	user.ID = m.nextID
	user.IsActive = true
	m.users[user.ID] = &user
	return user.ID, nil
}

func (m *memoryAccounts) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	u, ok := m.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (m *memoryAccounts) TouchLastLogin(_ context.Context, id int64) error { return nil }

func (m *memoryAccounts) CreateSession(_ context.Context, _ string, _ int64, _ time.Time, _, _ string) error {
	return nil
}

func (m *memoryAccounts) DeleteSession(_ context.Context, _ string) error { return nil }

type memoryUserRepo struct {
	accounts *memoryAccounts
}

func (m *memoryUserRepo) List(_ context.Context, _ ListFilters) ([]auth.User, int, error) {
	out := make([]auth.User, 0, len(m.accounts.users))
	for _, u := range m.accounts.users {
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (m *memoryUserRepo) SetActive(_ context.Context, id int64, active bool) error {
	u, ok := m.accounts.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.IsActive = active
	return nil
}

func (m *memoryUserRepo) SetRole(_ context.Context, id int64, role auth.Role, contactID *int64) error {
	u, ok := m.accounts.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.Role = role
	u.ContactID = contactID
	return nil
}

func (m *memoryUserRepo) ActiveAdminIDs(_ context.Context) ([]int64, error) {
	var ids []int64
	for _, u := range m.accounts.users {
		if u.Role == auth.RoleAdmin && u.IsActive {
			ids = append(ids, u.ID)
		}
	}
	return ids, nil
}

func newTestService() (*Service, *memoryAccounts) {
	accounts := newMemoryAccounts()
	return NewService(&memoryUserRepo{accounts: accounts}, accounts), accounts
}

func TestCreateHashesPassword(t *testing.T) {
	svc, accounts := newTestService()

	user, err := svc.Create(context.Background(), CreateUserInput{
		Email:    "admin@example.com",
		FullName: "Admin",
		Password: "s3cret-pass",
		Role:     auth.RoleAdmin,
	})
	require.NoError(t, err)
	require.True(t, user.IsActive)

	stored := accounts.users[user.ID]
	require.NotEqual(t, "s3cret-pass", stored.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret-pass")))
}

func TestCreatePortalUserRequiresContact(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateUserInput{
		Email:    "portal@example.com",
		FullName: "Portal",
		Password: "portal-pass",
		Role:     auth.RolePortalUser,
	})
	require.ErrorIs(t, err, ErrValidation)

	contactID := int64(7)
	user, err := svc.Create(context.Background(), CreateUserInput{
		Email:     "portal@example.com",
		FullName:  "Portal",
		Password:  "portal-pass",
		Role:      auth.RolePortalUser,
		ContactID: &contactID,
	})
	require.NoError(t, err)
	require.NotNil(t, user.ContactID)
	require.Equal(t, contactID, *user.ContactID)
}

func TestToggleActiveFlips(t *testing.T) {
	svc, _ := newTestService()

	user, err := svc.Create(context.Background(), CreateUserInput{
		Email:    "admin@example.com",
		FullName: "Admin",
		Password: "s3cret-pass",
		Role:     auth.RoleAdmin,
	})
	require.NoError(t, err)

	toggled, err := svc.ToggleActive(context.Background(), user.ID)
	require.NoError(t, err)
	require.False(t, toggled.IsActive)

	ids, err := svc.repo.ActiveAdminIDs(context.Background())
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestResetPasswordIssuesTemporary(t *testing.T) {
	svc, accounts := newTestService()

	user, err := svc.Create(context.Background(), CreateUserInput{
		Email:    "admin@example.com",
		FullName: "Admin",
		Password: "original-pass",
		Role:     auth.RoleAdmin,
	})
	require.NoError(t, err)

	temp, err := svc.ResetPassword(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, temp, 18)

	stored := accounts.users[user.ID]
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(temp)))
	require.Error(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("original-pass")))

	_, err = svc.ResetPassword(context.Background(), 99)
	require.ErrorIs(t, err, ErrNotFound)
}
