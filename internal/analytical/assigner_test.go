package analytical

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shiv-furniture/shiverp/internal/catalog"
	"github.com/shiv-furniture/shiverp/internal/documents"
)

type memoryRepo struct {
	accounts map[int64]Account
	models   []Model
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{accounts: map[int64]Account{}}
}

func (m *memoryRepo) ListAccounts(_ context.Context, filters AccountFilters) ([]Account, error) {
	var out []Account
	for _, a := range m.accounts {
		if filters.Archived != nil && a.IsArchived != *filters.Archived {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *memoryRepo) GetAccount(_ context.Context, id int64) (Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return Account{}, ErrNotFound
	}
	return a, nil
}

func (m *memoryRepo) CreateAccount(_ context.Context, account Account) (int64, error) {
	account.ID = int64(len(m.accounts) + 1)
	m.accounts[account.ID] = account
	return account.ID, nil
}

func (m *memoryRepo) UpdateAccount(_ context.Context, account Account) error {
	if _, ok := m.accounts[account.ID]; !ok {
		return ErrNotFound
	}
	m.accounts[account.ID] = account
	return nil
}

func (m *memoryRepo) SetAccountArchived(_ context.Context, id int64, archived bool) error {
	a, ok := m.accounts[id]
	if !ok {
		return ErrNotFound
	}
	a.IsArchived = archived
	m.accounts[id] = a
	return nil
}

func (m *memoryRepo) ListModels(_ context.Context, activeOnly bool) ([]Model, error) {
	var out []Model
	for _, mod := range m.models {
		if activeOnly && !mod.IsActive {
			continue
		}
		out = append(out, mod)
	}
	// Callers rely on the priority order the SQL query provides.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out, nil
}

func (m *memoryRepo) GetModel(_ context.Context, id int64) (Model, error) {
	for _, mod := range m.models {
		if mod.ID == id {
			return mod, nil
		}
	}
	return Model{}, ErrNotFound
}

func (m *memoryRepo) CreateModel(_ context.Context, model Model) (int64, error) {
	model.ID = int64(len(m.models) + 1)
	model.IsActive = true
	m.models = append(m.models, model)
	return model.ID, nil
}

func (m *memoryRepo) UpdateModel(_ context.Context, model Model) error {
	for i, mod := range m.models {
		if mod.ID == model.ID {
			model.IsActive = mod.IsActive
			m.models[i] = model
			return nil
		}
	}
	return ErrNotFound
}

func (m *memoryRepo) SetModelActive(_ context.Context, id int64, active bool) error {
	for i, mod := range m.models {
		if mod.ID == id {
			m.models[i].IsActive = active
			return nil
		}
	}
	return ErrNotFound
}

func (m *memoryRepo) DeleteModel(_ context.Context, id int64) error {
	for i, mod := range m.models {
		if mod.ID == id {
			m.models = append(m.models[:i], m.models[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

type stubProducts struct {
	products map[int64]*catalog.Product
}

func (s *stubProducts) Get(_ context.Context, id int64) (*catalog.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return p, nil
}

func testAssigner(models []Model, products map[int64]*catalog.Product) *Assigner {
	repo := newMemoryRepo()
	repo.models = models
	return NewAssigner(repo, &stubProducts{products: products})
}

func TestSuggestAccountPriorityOrder(t *testing.T) {
	models := []Model{
		{ID: 1, RuleType: RuleContact, RuleValue: "7", AnalyticalAccountID: 100, Priority: 20, IsActive: true},
		{ID: 2, RuleType: RuleAmountRange, RuleValue: "0-100000", AnalyticalAccountID: 200, Priority: 5, IsActive: true},
	}
	assigner := testAssigner(models, nil)

	doc := documents.Document{ContactID: 7, Total: 500}
	got, err := assigner.SuggestAccount(context.Background(), doc)
	require.NoError(t, err)
	require.NotNil(t, got)
	// The amount-range rule has the lower priority number and wins.
	require.Equal(t, int64(200), *got)
}

func TestSuggestAccountSkipsInactive(t *testing.T) {
	models := []Model{
		{ID: 1, RuleType: RuleContact, RuleValue: "7", AnalyticalAccountID: 100, Priority: 1, IsActive: false},
		{ID: 2, RuleType: RuleContact, RuleValue: "7", AnalyticalAccountID: 300, Priority: 10, IsActive: true},
	}
	assigner := testAssigner(models, nil)

	got, err := assigner.SuggestAccount(context.Background(), documents.Document{ContactID: 7})
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, int64(300), *got)
}

func TestSuggestAccountProductAndCategoryRules(t *testing.T) {
	products := map[int64]*catalog.Product{
		1: {ID: 1, Category: "Seating"},
		2: {ID: 2, Category: "Tables"},
	}
	models := []Model{
		{ID: 1, RuleType: RuleProduct, RuleValue: "2", AnalyticalAccountID: 100, Priority: 1, IsActive: true},
		{ID: 2, RuleType: RuleProductCategory, RuleValue: "seating", AnalyticalAccountID: 200, Priority: 2, IsActive: true},
	}
	assigner := testAssigner(models, products)

	doc := documents.Document{Items: []documents.LineItem{{ProductID: 1}}}
	got, err := assigner.SuggestAccount(context.Background(), doc)
	require.NoError(t, err)
	require.NotNil(t, got)
	// No line carries product 2, so the category rule matches (case-insensitive).
	require.Equal(t, int64(200), *got)

	doc.Items = append(doc.Items, documents.LineItem{ProductID: 2})
	got, err = assigner.SuggestAccount(context.Background(), doc)
	require.NoError(t, err)
	require.Equal(t, int64(100), *got)
}

func TestSuggestAccountFallsBackToProductDefault(t *testing.T) {
	defaultAccount := int64(42)
	products := map[int64]*catalog.Product{
		1: {ID: 1, AnalyticalAccountID: &defaultAccount},
	}
	assigner := testAssigner(nil, products)

	doc := documents.Document{Items: []documents.LineItem{{ProductID: 1}}}
	got, err := assigner.SuggestAccount(context.Background(), doc)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, int64(42), *got)
}

func TestSuggestAccountNoMatch(t *testing.T) {
	assigner := testAssigner(nil, nil)
	got, err := assigner.SuggestAccount(context.Background(), documents.Document{ContactID: 9})
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestParseAmountRange(t *testing.T) {
	min, max, err := parseAmountRange("100-5000")
	require.NoError(t, err)
	require.Equal(t, 100.0, min)
	require.Equal(t, 5000.0, max)

	min, max, err = parseAmountRange("-5000")
	require.NoError(t, err)
	require.Equal(t, 0.0, min)
	require.Equal(t, 5000.0, max)

	min, _, err = parseAmountRange("100-")
	require.NoError(t, err)
	require.Equal(t, 100.0, min)

	_, _, err = parseAmountRange("5000-100")
	require.ErrorIs(t, err, ErrValidation)

	_, _, err = parseAmountRange("lots")
	require.ErrorIs(t, err, ErrValidation)
}
