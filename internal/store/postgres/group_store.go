package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/splitz-app/splitz-backend/internal/store"
	"github.com/splitz-app/splitz-backend/types"
)

// GroupStore implements store.GroupStore using PostgreSQL.
type GroupStore struct {
	db DB
}

// NewGroupStore creates a new GroupStore instance.
func NewGroupStore(db DB) *GroupStore {
	return &GroupStore{db: db}
}

// CreateGroup inserts the group and the creator's membership in one
// transaction and returns the new group ID.
func (s *GroupStore) CreateGroup(ctx context.Context, group *types.ExpenseGroup) (string, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin group transaction: %w", err)
	}
	defer rollback(ctx, tx)

	var id string
	err = tx.QueryRow(ctx,
		`INSERT INTO expense_groups (name, created_by) VALUES ($1, $2) RETURNING id`,
		group.Name, group.CreatedBy,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert group: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO expense_group_members (group_id, user_id) VALUES ($1, $2)`,
		id, group.CreatedBy,
	)
	if err != nil {
		return "", fmt.Errorf("insert creator membership: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit group transaction: %w", err)
	}
	return id, nil
}

// GetGroup retrieves a group by its ID.
func (s *GroupStore) GetGroup(ctx context.Context, id string) (*types.ExpenseGroup, error) {
	const query = `
		SELECT id, name, created_by, created_at, updated_at
		FROM expense_groups
		WHERE id = $1`

	group := &types.ExpenseGroup{}
	err := s.db.QueryRow(ctx, query, id).Scan(
		&group.ID,
		&group.Name,
		&group.CreatedBy,
		&group.CreatedAt,
		&group.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get group: %w", err)
	}
	return group, nil
}

// UpdateGroup updates mutable fields of a group.
func (s *GroupStore) UpdateGroup(ctx context.Context, id string, update *types.UpdateGroupRequest) (*types.ExpenseGroup, error) {
	const query = `
		UPDATE expense_groups
		SET name = COALESCE($1, name),
			updated_at = NOW()
		WHERE id = $2
		RETURNING id, name, created_by, created_at, updated_at`

	group := &types.ExpenseGroup{}
	err := s.db.QueryRow(ctx, query, update.Name, id).Scan(
		&group.ID,
		&group.Name,
		&group.CreatedBy,
		&group.CreatedAt,
		&group.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("update group: %w", err)
	}
	return group, nil
}

// DeleteGroup removes a group; memberships and expenses cascade.
func (s *GroupStore) DeleteGroup(ctx context.Context, id string) error {
	result, err := s.db.Exec(ctx, `DELETE FROM expense_groups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	if result.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// AddMember inserts a membership row. Duplicate memberships surface as
// store.ErrConflict.
func (s *GroupStore) AddMember(ctx context.Context, groupID, userID string) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO expense_group_members (group_id, user_id) VALUES ($1, $2)`,
		groupID, userID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return store.ErrConflict
		}
		return fmt.Errorf("add group member: %w", err)
	}
	return nil
}

// RemoveMember deletes a membership row.
func (s *GroupStore) RemoveMember(ctx context.Context, groupID, userID string) error {
	result, err := s.db.Exec(ctx,
		`DELETE FROM expense_group_members WHERE group_id = $1 AND user_id = $2`,
		groupID, userID,
	)
	if err != nil {
		return fmt.Errorf("remove group member: %w", err)
	}
	if result.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListMembers retrieves all membership rows for a group.
func (s *GroupStore) ListMembers(ctx context.Context, groupID string) ([]types.ExpenseGroupMember, error) {
	const query = `
		SELECT group_id, user_id, joined_at
		FROM expense_group_members
		WHERE group_id = $1
		ORDER BY joined_at`

	rows, err := s.db.Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("list group members: %w", err)
	}
	defer rows.Close()

	var members []types.ExpenseGroupMember
	for rows.Next() {
		var m types.ExpenseGroupMember
		if err := rows.Scan(&m.GroupID, &m.UserID, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan group member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate group members: %w", err)
	}
	return members, nil
}

// IsMember reports whether the user belongs to the group.
func (s *GroupStore) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM expense_group_members WHERE group_id = $1 AND user_id = $2)`

	var isMember bool
	if err := s.db.QueryRow(ctx, query, groupID, userID).Scan(&isMember); err != nil {
		return false, fmt.Errorf("check group membership: %w", err)
	}
	return isMember, nil
}

// ListUserGroups retrieves all groups the user belongs to, newest first.
func (s *GroupStore) ListUserGroups(ctx context.Context, userID string) ([]types.ExpenseGroup, error) {
	const query = `
		SELECT g.id, g.name, g.created_by, g.created_at, g.updated_at
		FROM expense_groups g
		JOIN expense_group_members m ON m.group_id = g.id
		WHERE m.user_id = $1
		ORDER BY g.created_at DESC`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list user groups: %w", err)
	}
	defer rows.Close()

	var groups []types.ExpenseGroup
	for rows.Next() {
		var g types.ExpenseGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedBy, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}
	return groups, nil
}
