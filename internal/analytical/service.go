package analytical

import (
	"context"
	"fmt"
	"sort"
)

// AccountInput carries an account create/update payload.
type AccountInput struct {
	Code        string      `json:"code" validate:"required"`
	Name        string      `json:"name" validate:"required"`
	Description string      `json:"description"`
	AccountType AccountType `json:"account_type" validate:"required,oneof=income expense both"`
	ParentID    *int64      `json:"parent_id"`
}

// ModelInput carries an auto-analytical model create/update payload.
type ModelInput struct {
	Name                string   `json:"name" validate:"required"`
	Description         string   `json:"description"`
	RuleType            RuleType `json:"rule_type" validate:"required,oneof=product product_category contact amount_range"`
	RuleValue           string   `json:"rule_value" validate:"required"`
	AnalyticalAccountID int64    `json:"analytical_account_id" validate:"required,gt=0"`
	Priority            int      `json:"priority" validate:"gte=0"`
}

// Service implements analytical account and rule operations.
type Service struct {
	repo Repository
}

// NewService constructs the analytical service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// AccountExists reports whether an active account with the id exists.
// Budget validation depends on it.
func (s *Service) AccountExists(ctx context.Context, id int64) error {
	account, err := s.repo.GetAccount(ctx, id)
	if err != nil {
		return err
	}
	if account.IsArchived {
		return fmt.Errorf("%w: account %d is archived", ErrValidation, id)
	}
	return nil
}

func (s *Service) ListAccounts(ctx context.Context, filters AccountFilters) ([]Account, error) {
	return s.repo.ListAccounts(ctx, filters)
}

func (s *Service) GetAccount(ctx context.Context, id int64) (*Account, error) {
	account, err := s.repo.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *Service) CreateAccount(ctx context.Context, input AccountInput) (*Account, error) {
	if input.ParentID != nil {
		if _, err := s.repo.GetAccount(ctx, *input.ParentID); err != nil {
			return nil, fmt.Errorf("%w: parent account not found", ErrValidation)
		}
	}
	account := Account{
		Code:        input.Code,
		Name:        input.Name,
		Description: input.Description,
		AccountType: input.AccountType,
		ParentID:    input.ParentID,
	}
	id, err := s.repo.CreateAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	return s.GetAccount(ctx, id)
}

func (s *Service) UpdateAccount(ctx context.Context, id int64, input AccountInput) (*Account, error) {
	account, err := s.repo.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.ParentID != nil {
		if *input.ParentID == id {
			return nil, fmt.Errorf("%w: account cannot be its own parent", ErrValidation)
		}
		if _, err := s.repo.GetAccount(ctx, *input.ParentID); err != nil {
			return nil, fmt.Errorf("%w: parent account not found", ErrValidation)
		}
	}
	account.Code = input.Code
	account.Name = input.Name
	account.Description = input.Description
	account.AccountType = input.AccountType
	account.ParentID = input.ParentID
	if err := s.repo.UpdateAccount(ctx, account); err != nil {
		return nil, err
	}
	return s.GetAccount(ctx, id)
}

func (s *Service) ArchiveAccount(ctx context.Context, id int64, archived bool) error {
	return s.repo.SetAccountArchived(ctx, id, archived)
}

// AccountTree returns active accounts nested by parent. Accounts whose parent
// is archived or missing surface as roots so nothing vanishes from the view.
func (s *Service) AccountTree(ctx context.Context) ([]*AccountNode, error) {
	archived := false
	accounts, err := s.repo.ListAccounts(ctx, AccountFilters{Archived: &archived})
	if err != nil {
		return nil, err
	}
	return buildTree(accounts), nil
}

func buildTree(accounts []Account) []*AccountNode {
	nodes := make(map[int64]*AccountNode, len(accounts))
	for _, a := range accounts {
		nodes[a.ID] = &AccountNode{Account: a, Children: []*AccountNode{}}
	}

	var roots []*AccountNode
	for _, a := range accounts {
		node := nodes[a.ID]
		if a.ParentID != nil {
			if parent, ok := nodes[*a.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	var sortNodes func([]*AccountNode)
	sortNodes = func(ns []*AccountNode) {
		sort.Slice(ns, func(i, j int) bool { return ns[i].Code < ns[j].Code })
		for _, n := range ns {
			sortNodes(n.Children)
		}
	}
	sortNodes(roots)
	return roots
}

func (s *Service) ListModels(ctx context.Context) ([]Model, error) {
	return s.repo.ListModels(ctx, false)
}

func (s *Service) CreateModel(ctx context.Context, input ModelInput) (*Model, error) {
	if err := validateRuleValue(input.RuleType, input.RuleValue); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetAccount(ctx, input.AnalyticalAccountID); err != nil {
		return nil, fmt.Errorf("%w: analytical account not found", ErrValidation)
	}
	model := Model{
		Name:                input.Name,
		Description:         input.Description,
		RuleType:            input.RuleType,
		RuleValue:           input.RuleValue,
		AnalyticalAccountID: input.AnalyticalAccountID,
		Priority:            input.Priority,
	}
	if model.Priority == 0 {
		model.Priority = defaultPriority
	}
	id, err := s.repo.CreateModel(ctx, model)
	if err != nil {
		return nil, err
	}
	m, err := s.repo.GetModel(ctx, id)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Service) UpdateModel(ctx context.Context, id int64, input ModelInput) (*Model, error) {
	if err := validateRuleValue(input.RuleType, input.RuleValue); err != nil {
		return nil, err
	}
	model, err := s.repo.GetModel(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.AnalyticalAccountID != model.AnalyticalAccountID {
		if _, err := s.repo.GetAccount(ctx, input.AnalyticalAccountID); err != nil {
			return nil, fmt.Errorf("%w: analytical account not found", ErrValidation)
		}
	}
	model.Name = input.Name
	model.Description = input.Description
	model.RuleType = input.RuleType
	model.RuleValue = input.RuleValue
	model.AnalyticalAccountID = input.AnalyticalAccountID
	if input.Priority > 0 {
		model.Priority = input.Priority
	}
	if err := s.repo.UpdateModel(ctx, model); err != nil {
		return nil, err
	}
	m, err := s.repo.GetModel(ctx, id)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Service) ToggleModelActive(ctx context.Context, id int64) (*Model, error) {
	model, err := s.repo.GetModel(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetModelActive(ctx, id, !model.IsActive); err != nil {
		return nil, err
	}
	model.IsActive = !model.IsActive
	return &model, nil
}

func (s *Service) DeleteModel(ctx context.Context, id int64) error {
	return s.repo.DeleteModel(ctx, id)
}
