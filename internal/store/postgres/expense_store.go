package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/splitz-app/splitz-backend/internal/store"
	"github.com/splitz-app/splitz-backend/types"
)

// ExpenseStore implements store.ExpenseStore using PostgreSQL.
type ExpenseStore struct {
	db DB
}

// NewExpenseStore creates a new ExpenseStore instance.
func NewExpenseStore(db DB) *ExpenseStore {
	return &ExpenseStore{db: db}
}

// CreateExpenseWithMembers inserts the expense row and all member rows in one
// transaction so a failed member insert cannot leave an orphaned expense.
func (s *ExpenseStore) CreateExpenseWithMembers(ctx context.Context, expense *types.Expense, members []types.ExpenseMember) (string, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin expense transaction: %w", err)
	}
	defer rollback(ctx, tx)

	const expenseQuery = `
		INSERT INTO expenses (group_id, name, total_amount, paid_by, category, split_type, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	var id string
	err = tx.QueryRow(ctx, expenseQuery,
		expense.GroupID,
		expense.Name,
		expense.TotalAmount,
		expense.PaidBy,
		expense.Category,
		expense.SplitType,
		expense.CreatedBy,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert expense: %w", err)
	}

	const memberQuery = `
		INSERT INTO expense_members (expense_id, user_id, amount_owed, split_value)
		VALUES ($1, $2, $3, $4)`

	for _, m := range members {
		if _, err := tx.Exec(ctx, memberQuery, id, m.UserID, m.AmountOwed, m.SplitValue); err != nil {
			return "", fmt.Errorf("insert expense member %s: %w", m.UserID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit expense transaction: %w", err)
	}
	return id, nil
}

// GetExpense retrieves an expense by its ID.
func (s *ExpenseStore) GetExpense(ctx context.Context, id string) (*types.Expense, error) {
	const query = `
		SELECT id, group_id, name, total_amount, paid_by, category, split_type, created_by, created_at, updated_at
		FROM expenses
		WHERE id = $1`

	expense := &types.Expense{}
	err := s.db.QueryRow(ctx, query, id).Scan(
		&expense.ID,
		&expense.GroupID,
		&expense.Name,
		&expense.TotalAmount,
		&expense.PaidBy,
		&expense.Category,
		&expense.SplitType,
		&expense.CreatedBy,
		&expense.CreatedAt,
		&expense.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get expense: %w", err)
	}
	return expense, nil
}

// GetExpenseMembers retrieves all member rows for an expense.
func (s *ExpenseStore) GetExpenseMembers(ctx context.Context, expenseID string) ([]types.ExpenseMember, error) {
	const query = `
		SELECT id, expense_id, user_id, amount_owed, split_value, is_settled
		FROM expense_members
		WHERE expense_id = $1
		ORDER BY user_id`

	rows, err := s.db.Query(ctx, query, expenseID)
	if err != nil {
		return nil, fmt.Errorf("list expense members: %w", err)
	}
	defer rows.Close()

	return scanMembers(rows)
}

// ListGroupExpenses retrieves all expenses of a group with members attached,
// newest first.
func (s *ExpenseStore) ListGroupExpenses(ctx context.Context, groupID string) ([]types.ExpenseWithMembers, error) {
	const query = `
		SELECT id, group_id, name, total_amount, paid_by, category, split_type, created_by, created_at, updated_at
		FROM expenses
		WHERE group_id = $1
		ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("list group expenses: %w", err)
	}
	defer rows.Close()

	var expenses []types.ExpenseWithMembers
	for rows.Next() {
		var e types.Expense
		err := rows.Scan(
			&e.ID,
			&e.GroupID,
			&e.Name,
			&e.TotalAmount,
			&e.PaidBy,
			&e.Category,
			&e.SplitType,
			&e.CreatedBy,
			&e.CreatedAt,
			&e.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, types.ExpenseWithMembers{Expense: e})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}

	for i := range expenses {
		members, err := s.GetExpenseMembers(ctx, expenses[i].Expense.ID)
		if err != nil {
			return nil, err
		}
		expenses[i].Members = members
	}
	return expenses, nil
}

// UpdateExpense updates mutable fields of an expense.
func (s *ExpenseStore) UpdateExpense(ctx context.Context, id string, update *types.UpdateExpenseRequest) (*types.Expense, error) {
	const query = `
		UPDATE expenses
		SET name = COALESCE($1, name),
			category = COALESCE($2, category),
			updated_at = NOW()
		WHERE id = $3
		RETURNING id, group_id, name, total_amount, paid_by, category, split_type, created_by, created_at, updated_at`

	expense := &types.Expense{}
	err := s.db.QueryRow(ctx, query, update.Name, update.Category, id).Scan(
		&expense.ID,
		&expense.GroupID,
		&expense.Name,
		&expense.TotalAmount,
		&expense.PaidBy,
		&expense.Category,
		&expense.SplitType,
		&expense.CreatedBy,
		&expense.CreatedAt,
		&expense.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("update expense: %w", err)
	}
	return expense, nil
}

// DeleteExpense removes an expense; member rows cascade.
func (s *ExpenseStore) DeleteExpense(ctx context.Context, id string) error {
	result, err := s.db.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if result.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// SetMemberSettled toggles one member's settlement flag.
func (s *ExpenseStore) SetMemberSettled(ctx context.Context, expenseID, userID string, settled bool) error {
	const query = `
		UPDATE expense_members
		SET is_settled = $1
		WHERE expense_id = $2 AND user_id = $3`

	result, err := s.db.Exec(ctx, query, settled, expenseID, userID)
	if err != nil {
		return fmt.Errorf("set member settled: %w", err)
	}
	if result.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// HasSettledMembers reports whether any member row of the expense is settled.
func (s *ExpenseStore) HasSettledMembers(ctx context.Context, expenseID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM expense_members WHERE expense_id = $1 AND is_settled)`

	var settled bool
	if err := s.db.QueryRow(ctx, query, expenseID).Scan(&settled); err != nil {
		return false, fmt.Errorf("check settled members: %w", err)
	}
	return settled, nil
}

func scanMembers(rows pgx.Rows) ([]types.ExpenseMember, error) {
	var members []types.ExpenseMember
	for rows.Next() {
		var m types.ExpenseMember
		err := rows.Scan(
			&m.ID,
			&m.ExpenseID,
			&m.UserID,
			&m.AmountOwed,
			&m.SplitValue,
			&m.IsSettled,
		)
		if err != nil {
			return nil, fmt.Errorf("scan expense member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expense members: %w", err)
	}
	return members, nil
}
