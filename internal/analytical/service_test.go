package analytical

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAccountTreeNesting(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	root, err := svc.CreateAccount(context.Background(), AccountInput{Code: "OPS", Name: "Operations", AccountType: AccountTypeExpense})
	require.NoError(t, err)
	_, err = svc.CreateAccount(context.Background(), AccountInput{Code: "OPS-WOOD", Name: "Woodshop", AccountType: AccountTypeExpense, ParentID: &root.ID})
	require.NoError(t, err)
	_, err = svc.CreateAccount(context.Background(), AccountInput{Code: "OPS-FIN", Name: "Finishing", AccountType: AccountTypeExpense, ParentID: &root.ID})
	require.NoError(t, err)
	_, err = svc.CreateAccount(context.Background(), AccountInput{Code: "SALES", Name: "Showroom", AccountType: AccountTypeIncome})
	require.NoError(t, err)

	tree, err := svc.AccountTree(context.Background())
	require.NoError(t, err)
	require.Len(t, tree, 2)
	require.Equal(t, "OPS", tree[0].Code)
	require.Len(t, tree[0].Children, 2)
	require.Equal(t, "OPS-FIN", tree[0].Children[0].Code)
	require.Equal(t, "OPS-WOOD", tree[0].Children[1].Code)
	require.Empty(t, tree[1].Children)

	// Archiving the parent promotes its children to roots.
	require.NoError(t, svc.ArchiveAccount(context.Background(), root.ID, true))
	tree, err = svc.AccountTree(context.Background())
	require.NoError(t, err)
	require.Len(t, tree, 3)
}

func TestCreateAccountRejectsMissingParent(t *testing.T) {
	svc := NewService(newMemoryRepo())
	missing := int64(99)
	_, err := svc.CreateAccount(context.Background(), AccountInput{Code: "X", Name: "X", AccountType: AccountTypeBoth, ParentID: &missing})
	require.ErrorIs(t, err, ErrValidation)
}

func TestUpdateAccountRejectsSelfParent(t *testing.T) {
	svc := NewService(newMemoryRepo())
	account, err := svc.CreateAccount(context.Background(), AccountInput{Code: "A", Name: "A", AccountType: AccountTypeBoth})
	require.NoError(t, err)

	_, err = svc.UpdateAccount(context.Background(), account.ID, AccountInput{Code: "A", Name: "A", AccountType: AccountTypeBoth, ParentID: &account.ID})
	require.ErrorIs(t, err, ErrValidation)
}

func TestModelLifecycle(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	account, err := svc.CreateAccount(context.Background(), AccountInput{Code: "MKT", Name: "Marketing", AccountType: AccountTypeExpense})
	require.NoError(t, err)

	model, err := svc.CreateModel(context.Background(), ModelInput{
		Name:                "Big orders",
		RuleType:            RuleAmountRange,
		RuleValue:           "50000-",
		AnalyticalAccountID: account.ID,
	})
	require.NoError(t, err)
	require.True(t, model.IsActive)
	require.Equal(t, defaultPriority, model.Priority)

	toggled, err := svc.ToggleModelActive(context.Background(), model.ID)
	require.NoError(t, err)
	require.False(t, toggled.IsActive)

	_, err = svc.CreateModel(context.Background(), ModelInput{
		Name:                "Bad rule",
		RuleType:            RuleProduct,
		RuleValue:           "not-an-id",
		AnalyticalAccountID: account.ID,
	})
	require.ErrorIs(t, err, ErrValidation)

	require.NoError(t, svc.DeleteModel(context.Background(), model.ID))
	require.ErrorIs(t, svc.DeleteModel(context.Background(), model.ID), ErrNotFound)
}
