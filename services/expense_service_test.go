package services

import (
	"context"
	"testing"

	apperrors "github.com/splitz-app/splitz-backend/errors"
	"github.com/splitz-app/splitz-backend/internal/store"
	"github.com/splitz-app/splitz-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockExpenseStore implements store.ExpenseStore for service tests.
type MockExpenseStore struct {
	mock.Mock
}

func (m *MockExpenseStore) CreateExpenseWithMembers(ctx context.Context, expense *types.Expense, members []types.ExpenseMember) (string, error) {
	args := m.Called(ctx, expense, members)
	return args.String(0), args.Error(1)
}

func (m *MockExpenseStore) GetExpense(ctx context.Context, id string) (*types.Expense, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Expense), args.Error(1)
}

func (m *MockExpenseStore) GetExpenseMembers(ctx context.Context, expenseID string) ([]types.ExpenseMember, error) {
	args := m.Called(ctx, expenseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.ExpenseMember), args.Error(1)
}

func (m *MockExpenseStore) ListGroupExpenses(ctx context.Context, groupID string) ([]types.ExpenseWithMembers, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.ExpenseWithMembers), args.Error(1)
}

func (m *MockExpenseStore) UpdateExpense(ctx context.Context, id string, update *types.UpdateExpenseRequest) (*types.Expense, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Expense), args.Error(1)
}

func (m *MockExpenseStore) DeleteExpense(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockExpenseStore) SetMemberSettled(ctx context.Context, expenseID, userID string, settled bool) error {
	args := m.Called(ctx, expenseID, userID, settled)
	return args.Error(0)
}

func (m *MockExpenseStore) HasSettledMembers(ctx context.Context, expenseID string) (bool, error) {
	args := m.Called(ctx, expenseID)
	return args.Bool(0), args.Error(1)
}

// MockGroupStore implements store.GroupStore for service tests.
type MockGroupStore struct {
	mock.Mock
}

func (m *MockGroupStore) CreateGroup(ctx context.Context, group *types.ExpenseGroup) (string, error) {
	args := m.Called(ctx, group)
	return args.String(0), args.Error(1)
}

func (m *MockGroupStore) GetGroup(ctx context.Context, id string) (*types.ExpenseGroup, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ExpenseGroup), args.Error(1)
}

func (m *MockGroupStore) UpdateGroup(ctx context.Context, id string, update *types.UpdateGroupRequest) (*types.ExpenseGroup, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ExpenseGroup), args.Error(1)
}

func (m *MockGroupStore) DeleteGroup(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockGroupStore) AddMember(ctx context.Context, groupID, userID string) error {
	args := m.Called(ctx, groupID, userID)
	return args.Error(0)
}

func (m *MockGroupStore) RemoveMember(ctx context.Context, groupID, userID string) error {
	args := m.Called(ctx, groupID, userID)
	return args.Error(0)
}

func (m *MockGroupStore) ListMembers(ctx context.Context, groupID string) ([]types.ExpenseGroupMember, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.ExpenseGroupMember), args.Error(1)
}

func (m *MockGroupStore) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	args := m.Called(ctx, groupID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGroupStore) ListUserGroups(ctx context.Context, userID string) ([]types.ExpenseGroup, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.ExpenseGroup), args.Error(1)
}

func floatPtr(v float64) *float64 { return &v }

func TestCreateExpense(t *testing.T) {
	baseRequest := func() *types.CreateExpenseRequest {
		return &types.CreateExpenseRequest{
			Name:      "Dinner",
			Amount:    90,
			PaidBy:    "alice",
			SplitType: types.SplitTypeEqual,
			Members: []types.MemberSplitInput{
				{UserID: "alice"},
				{UserID: "bob"},
				{UserID: "carol"},
			},
		}
	}

	t.Run("equal split persists computed amounts without raw values", func(t *testing.T) {
		expenses := new(MockExpenseStore)
		groups := new(MockGroupStore)
		svc := NewExpenseService(expenses, groups)

		groups.On("IsMember", mock.Anything, "group-1", mock.Anything).Return(true, nil)
		expenses.On("CreateExpenseWithMembers", mock.Anything,
			mock.MatchedBy(func(e *types.Expense) bool {
				return e.GroupID == "group-1" && e.TotalAmount == 90 && e.CreatedBy == "alice"
			}),
			mock.MatchedBy(func(members []types.ExpenseMember) bool {
				if len(members) != 3 {
					return false
				}
				for _, m := range members {
					if m.SplitValue != nil || m.AmountOwed != 30 {
						return false
					}
				}
				return true
			}),
		).Return("exp-1", nil)
		expenses.On("GetExpense", mock.Anything, "exp-1").Return(&types.Expense{
			ID: "exp-1", GroupID: "group-1", CreatedBy: "alice",
		}, nil)
		expenses.On("GetExpenseMembers", mock.Anything, "exp-1").Return([]types.ExpenseMember{}, nil)

		created, err := svc.CreateExpense(context.Background(), "group-1", "alice", baseRequest())
		require.NoError(t, err)
		assert.Equal(t, "exp-1", created.Expense.ID)
		expenses.AssertExpectations(t)
	})

	t.Run("custom split off by more than a cent is rejected before any write", func(t *testing.T) {
		expenses := new(MockExpenseStore)
		groups := new(MockGroupStore)
		svc := NewExpenseService(expenses, groups)

		groups.On("IsMember", mock.Anything, "group-1", mock.Anything).Return(true, nil)

		req := baseRequest()
		req.SplitType = types.SplitTypeCustom
		req.Members = []types.MemberSplitInput{
			{UserID: "alice", SplitValue: floatPtr(30)},
			{UserID: "bob", SplitValue: floatPtr(30)},
			{UserID: "carol", SplitValue: floatPtr(35)},
		}

		_, err := svc.CreateExpense(context.Background(), "group-1", "alice", req)
		require.Error(t, err)
		assert.Equal(t, apperrors.SplitMismatchError, appErrorType(t, err))
		assert.Contains(t, err.Error(), "splits must equal total")
		expenses.AssertNotCalled(t, "CreateExpenseWithMembers", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("custom split within tolerance is accepted", func(t *testing.T) {
		expenses := new(MockExpenseStore)
		groups := new(MockGroupStore)
		svc := NewExpenseService(expenses, groups)

		groups.On("IsMember", mock.Anything, "group-1", mock.Anything).Return(true, nil)
		expenses.On("CreateExpenseWithMembers", mock.Anything, mock.Anything, mock.Anything).Return("exp-2", nil)
		expenses.On("GetExpense", mock.Anything, "exp-2").Return(&types.Expense{ID: "exp-2", GroupID: "group-1"}, nil)
		expenses.On("GetExpenseMembers", mock.Anything, "exp-2").Return([]types.ExpenseMember{}, nil)

		req := baseRequest()
		req.SplitType = types.SplitTypeCustom
		req.Members = []types.MemberSplitInput{
			{UserID: "alice", SplitValue: floatPtr(30)},
			{UserID: "bob", SplitValue: floatPtr(30)},
			{UserID: "carol", SplitValue: floatPtr(30.01)},
		}

		_, err := svc.CreateExpense(context.Background(), "group-1", "alice", req)
		require.NoError(t, err)
	})

	t.Run("non-member payer rejected", func(t *testing.T) {
		expenses := new(MockExpenseStore)
		groups := new(MockGroupStore)
		svc := NewExpenseService(expenses, groups)

		groups.On("IsMember", mock.Anything, "group-1", "alice").Return(true, nil)
		groups.On("IsMember", mock.Anything, "group-1", "stranger").Return(false, nil)

		req := baseRequest()
		req.PaidBy = "stranger"

		_, err := svc.CreateExpense(context.Background(), "group-1", "alice", req)
		require.Error(t, err)
		assert.Equal(t, apperrors.ValidationError, appErrorType(t, err))
	})

	t.Run("input validation", func(t *testing.T) {
		svc := NewExpenseService(new(MockExpenseStore), new(MockGroupStore))

		tests := []struct {
			name   string
			mutate func(*types.CreateExpenseRequest)
		}{
			{"empty name", func(r *types.CreateExpenseRequest) { r.Name = "" }},
			{"zero amount", func(r *types.CreateExpenseRequest) { r.Amount = 0 }},
			{"negative amount", func(r *types.CreateExpenseRequest) { r.Amount = -5 }},
			{"no payer", func(r *types.CreateExpenseRequest) { r.PaidBy = "" }},
			{"bad split type", func(r *types.CreateExpenseRequest) { r.SplitType = "weighted" }},
			{"no members", func(r *types.CreateExpenseRequest) { r.Members = nil }},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				req := baseRequest()
				tt.mutate(req)
				_, err := svc.CreateExpense(context.Background(), "group-1", "alice", req)
				require.Error(t, err)
				assert.Equal(t, apperrors.ValidationError, appErrorType(t, err))
			})
		}
	})
}

func TestUpdateExpense(t *testing.T) {
	t.Run("locked once a member has settled", func(t *testing.T) {
		expenses := new(MockExpenseStore)
		svc := NewExpenseService(expenses, new(MockGroupStore))

		expenses.On("GetExpense", mock.Anything, "exp-1").Return(&types.Expense{
			ID: "exp-1", CreatedBy: "alice",
		}, nil)
		expenses.On("HasSettledMembers", mock.Anything, "exp-1").Return(true, nil)

		name := "Brunch"
		_, err := svc.UpdateExpense(context.Background(), "exp-1", "alice", &types.UpdateExpenseRequest{Name: &name})
		require.Error(t, err)
		assert.Equal(t, apperrors.ExpenseLockedError, appErrorType(t, err))
	})

	t.Run("only the creator may update", func(t *testing.T) {
		expenses := new(MockExpenseStore)
		svc := NewExpenseService(expenses, new(MockGroupStore))

		expenses.On("GetExpense", mock.Anything, "exp-1").Return(&types.Expense{
			ID: "exp-1", CreatedBy: "alice",
		}, nil)

		name := "Brunch"
		_, err := svc.UpdateExpense(context.Background(), "exp-1", "bob", &types.UpdateExpenseRequest{Name: &name})
		require.Error(t, err)
		assert.Equal(t, apperrors.ForbiddenError, appErrorType(t, err))
	})
}

func TestSetMemberSettled(t *testing.T) {
	t.Run("creator toggles a member", func(t *testing.T) {
		expenses := new(MockExpenseStore)
		svc := NewExpenseService(expenses, new(MockGroupStore))

		expenses.On("GetExpense", mock.Anything, "exp-1").Return(&types.Expense{
			ID: "exp-1", CreatedBy: "alice",
		}, nil)
		expenses.On("SetMemberSettled", mock.Anything, "exp-1", "bob", true).Return(nil)

		err := svc.SetMemberSettled(context.Background(), "exp-1", "bob", "alice", true)
		require.NoError(t, err)
		expenses.AssertExpectations(t)
	})

	t.Run("unknown member row", func(t *testing.T) {
		expenses := new(MockExpenseStore)
		svc := NewExpenseService(expenses, new(MockGroupStore))

		expenses.On("GetExpense", mock.Anything, "exp-1").Return(&types.Expense{
			ID: "exp-1", CreatedBy: "alice",
		}, nil)
		expenses.On("SetMemberSettled", mock.Anything, "exp-1", "mallory", true).Return(store.ErrNotFound)

		err := svc.SetMemberSettled(context.Background(), "exp-1", "mallory", "alice", true)
		require.Error(t, err)
		assert.Equal(t, apperrors.NotFoundError, appErrorType(t, err))
	})
}

func TestGroupBalancesReport(t *testing.T) {
	expenses := new(MockExpenseStore)
	groups := new(MockGroupStore)
	svc := NewExpenseService(expenses, groups)

	groups.On("IsMember", mock.Anything, "group-1", "alice").Return(true, nil)
	expenses.On("ListGroupExpenses", mock.Anything, "group-1").Return([]types.ExpenseWithMembers{
		{
			Expense: types.Expense{ID: "exp-1", PaidBy: "alice"},
			Members: []types.ExpenseMember{
				{UserID: "alice", AmountOwed: 30},
				{UserID: "bob", AmountOwed: 30},
				{UserID: "carol", AmountOwed: 30, IsSettled: true},
			},
		},
	}, nil)

	report, err := svc.GroupBalances(context.Background(), "group-1", "alice")
	require.NoError(t, err)

	assert.Equal(t, "group-1", report.GroupID)
	require.Len(t, report.Balances, 2)
	assert.Equal(t, 60.0, report.Balances[0].TotalPaid)
	require.Len(t, report.Debts, 1)
	assert.Equal(t, types.DebtEdge{FromUserID: "bob", ToUserID: "alice", Amount: 30}, report.Debts[0])
}
