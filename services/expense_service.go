package services

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/splitz-app/splitz-backend/errors"
	"github.com/splitz-app/splitz-backend/internal/split"
	"github.com/splitz-app/splitz-backend/internal/store"
	"github.com/splitz-app/splitz-backend/logger"
	"github.com/splitz-app/splitz-backend/types"
)

// ExpenseService owns expense creation, settlement and balance reporting.
type ExpenseService struct {
	expenses store.ExpenseStore
	groups   store.GroupStore
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(expenses store.ExpenseStore, groups store.GroupStore) *ExpenseService {
	return &ExpenseService{expenses: expenses, groups: groups}
}

// CreateExpense validates the request, computes the split and persists the
// expense with its member rows in one transaction. Splits that disagree with
// the total beyond the rounding tolerance are rejected before any write.
func (s *ExpenseService) CreateExpense(ctx context.Context, groupID, userID string, req *types.CreateExpenseRequest) (*types.ExpenseWithMembers, error) {
	log := logger.GetLogger()

	if req.Name == "" {
		return nil, apperrors.ValidationFailed("expense name is required", "")
	}
	if req.Amount <= 0 {
		return nil, apperrors.ValidationFailed("expense amount must be positive", fmt.Sprintf("got %v", req.Amount))
	}
	if req.PaidBy == "" {
		return nil, apperrors.ValidationFailed("a payer must be selected", "")
	}
	if !req.SplitType.Valid() {
		return nil, apperrors.ValidationFailed("unknown split type", string(req.SplitType))
	}
	if len(req.Members) == 0 {
		return nil, apperrors.ValidationFailed("expense needs at least one member", "")
	}

	if err := s.requireMembership(ctx, groupID, userID); err != nil {
		return nil, err
	}
	if err := s.requireMembership(ctx, groupID, req.PaidBy); err != nil {
		return nil, apperrors.ValidationFailed("payer is not a member of the group", req.PaidBy)
	}
	for _, m := range req.Members {
		if err := s.requireMembership(ctx, groupID, m.UserID); err != nil {
			return nil, apperrors.ValidationFailed("split member is not a member of the group", m.UserID)
		}
	}

	splitMembers := make([]split.Member, len(req.Members))
	for i, m := range req.Members {
		splitMembers[i] = split.Member{UserID: m.UserID, SplitValue: m.SplitValue}
	}

	results, err := split.Calculate(req.Amount, req.SplitType, splitMembers)
	if err != nil {
		return nil, apperrors.ValidationFailed("split calculation failed", err.Error())
	}
	if err := split.Validate(req.Amount, req.SplitType, results); err != nil {
		return nil, apperrors.SplitMismatch(err.Error())
	}

	expense := &types.Expense{
		GroupID:     groupID,
		Name:        req.Name,
		TotalAmount: req.Amount,
		PaidBy:      req.PaidBy,
		Category:    req.Category,
		SplitType:   req.SplitType,
		CreatedBy:   userID,
	}

	members := make([]types.ExpenseMember, len(results))
	for i, r := range results {
		members[i] = types.ExpenseMember{
			UserID:     r.UserID,
			AmountOwed: r.AmountOwed,
		}
		// Raw split input is kept for non-equal modes so clients can re-edit
		// the split; equal mode persists NULL.
		if req.SplitType != types.SplitTypeEqual {
			members[i].SplitValue = req.Members[i].SplitValue
		}
	}

	id, err := s.expenses.CreateExpenseWithMembers(ctx, expense, members)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	log.Infow("Expense created",
		"expenseID", id,
		"groupID", groupID,
		"splitType", req.SplitType,
		"memberCount", len(members),
	)

	created, err := s.GetExpense(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetExpense returns an expense with its members; the caller must belong to
// the expense's group.
func (s *ExpenseService) GetExpense(ctx context.Context, expenseID, userID string) (*types.ExpenseWithMembers, error) {
	expense, err := s.expenses.GetExpense(ctx, expenseID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("Expense", expenseID)
		}
		return nil, apperrors.NewDatabaseError(err)
	}

	if err := s.requireMembership(ctx, expense.GroupID, userID); err != nil {
		return nil, err
	}

	members, err := s.expenses.GetExpenseMembers(ctx, expenseID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return &types.ExpenseWithMembers{Expense: *expense, Members: members}, nil
}

// ListGroupExpenses returns all expenses of a group for a member.
func (s *ExpenseService) ListGroupExpenses(ctx context.Context, groupID, userID string) ([]types.ExpenseWithMembers, error) {
	if err := s.requireMembership(ctx, groupID, userID); err != nil {
		return nil, err
	}

	expenses, err := s.expenses.ListGroupExpenses(ctx, groupID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return expenses, nil
}

// UpdateExpense updates an expense's mutable fields. Only the creator may
// update, and not once any member has settled.
func (s *ExpenseService) UpdateExpense(ctx context.Context, expenseID, userID string, req *types.UpdateExpenseRequest) (*types.Expense, error) {
	expense, err := s.loadOwnedExpense(ctx, expenseID, userID)
	if err != nil {
		return nil, err
	}

	settled, err := s.expenses.HasSettledMembers(ctx, expense.ID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	if settled {
		return nil, apperrors.ExpenseLocked(expenseID)
	}

	updated, err := s.expenses.UpdateExpense(ctx, expenseID, req)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("Expense", expenseID)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return updated, nil
}

// DeleteExpense removes an expense; creator-only.
func (s *ExpenseService) DeleteExpense(ctx context.Context, expenseID, userID string) error {
	if _, err := s.loadOwnedExpense(ctx, expenseID, userID); err != nil {
		return err
	}

	if err := s.expenses.DeleteExpense(ctx, expenseID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NotFound("Expense", expenseID)
		}
		return apperrors.NewDatabaseError(err)
	}
	return nil
}

// SetMemberSettled toggles one member's settlement flag. Only the expense's
// creator may toggle; the toggle never touches other members or the total.
func (s *ExpenseService) SetMemberSettled(ctx context.Context, expenseID, memberUserID, callerID string, settled bool) error {
	if _, err := s.loadOwnedExpense(ctx, expenseID, callerID); err != nil {
		return err
	}

	if err := s.expenses.SetMemberSettled(ctx, expenseID, memberUserID, settled); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NotFound("Expense member", memberUserID)
		}
		return apperrors.NewDatabaseError(err)
	}

	logger.GetLogger().Infow("Expense member settlement toggled",
		"expenseID", expenseID,
		"memberID", memberUserID,
		"settled", settled,
	)
	return nil
}

// GroupBalances computes the group's per-member balances and simplified debts
// over unsettled member rows.
func (s *ExpenseService) GroupBalances(ctx context.Context, groupID, userID string) (*types.GroupBalanceReport, error) {
	expenses, err := s.ListGroupExpenses(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}

	input := make([]split.ExpenseForBalance, len(expenses))
	for i, e := range expenses {
		input[i] = split.ExpenseForBalance{
			PaidBy:  e.Expense.PaidBy,
			Members: e.Members,
		}
	}

	balances, debts := split.GroupBalances(input)
	return &types.GroupBalanceReport{
		GroupID:  groupID,
		Balances: balances,
		Debts:    debts,
	}, nil
}

// loadOwnedExpense fetches an expense and verifies the caller created it.
func (s *ExpenseService) loadOwnedExpense(ctx context.Context, expenseID, userID string) (*types.Expense, error) {
	expense, err := s.expenses.GetExpense(ctx, expenseID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("Expense", expenseID)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	if expense.CreatedBy != userID {
		return nil, apperrors.Forbidden("Only the expense creator may do this",
			fmt.Sprintf("Expense ID: %s", expenseID))
	}
	return expense, nil
}

func (s *ExpenseService) requireMembership(ctx context.Context, groupID, userID string) error {
	isMember, err := s.groups.IsMember(ctx, groupID, userID)
	if err != nil {
		return apperrors.NewDatabaseError(err)
	}
	if !isMember {
		return apperrors.Forbidden("Not a member of this group",
			fmt.Sprintf("Group ID: %s", groupID))
	}
	return nil
}
