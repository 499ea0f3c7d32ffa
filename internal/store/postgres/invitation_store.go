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

// InvitationStore implements store.InvitationStore using PostgreSQL.
type InvitationStore struct {
	db DB
}

// NewInvitationStore creates a new InvitationStore instance.
func NewInvitationStore(db DB) *InvitationStore {
	return &InvitationStore{db: db}
}

const invitationColumns = `id, invite_code, invite_type, resource_id, created_by, expires_at, current_uses, max_uses, payload, created_at`

// CreateInvitation inserts a new invitation and returns its ID.
func (s *InvitationStore) CreateInvitation(ctx context.Context, inv *types.Invitation) (string, error) {
	const query = `
		INSERT INTO invitations (invite_code, invite_type, resource_id, created_by, expires_at, max_uses, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	var id string
	err := s.db.QueryRow(ctx, query,
		inv.InviteCode,
		inv.InviteType,
		inv.ResourceID,
		inv.CreatedBy,
		inv.ExpiresAt,
		inv.MaxUses,
		inv.Payload,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			// Code collision; the service retries with a fresh code.
			return "", store.ErrConflict
		}
		return "", fmt.Errorf("insert invitation: %w", err)
	}
	return id, nil
}

// GetByCode retrieves an invitation by its code. Lookup succeeds for expired
// and exhausted invitations; callers derive the status.
func (s *InvitationStore) GetByCode(ctx context.Context, code string) (*types.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE invite_code = $1`

	inv := &types.Invitation{}
	err := s.db.QueryRow(ctx, query, code).Scan(
		&inv.ID,
		&inv.InviteCode,
		&inv.InviteType,
		&inv.ResourceID,
		&inv.CreatedBy,
		&inv.ExpiresAt,
		&inv.CurrentUses,
		&inv.MaxUses,
		&inv.Payload,
		&inv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get invitation by code: %w", err)
	}
	return inv, nil
}

// ListByResource retrieves all invitations for one resource, newest first.
func (s *InvitationStore) ListByResource(ctx context.Context, inviteType types.InviteType, resourceID string) ([]types.Invitation, error) {
	query := `SELECT ` + invitationColumns + `
		FROM invitations
		WHERE invite_type = $1 AND resource_id = $2
		ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, inviteType, resourceID)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	defer rows.Close()

	var invitations []types.Invitation
	for rows.Next() {
		var inv types.Invitation
		err := rows.Scan(
			&inv.ID,
			&inv.InviteCode,
			&inv.InviteType,
			&inv.ResourceID,
			&inv.CreatedBy,
			&inv.ExpiresAt,
			&inv.CurrentUses,
			&inv.MaxUses,
			&inv.Payload,
			&inv.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan invitation: %w", err)
		}
		invitations = append(invitations, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invitations: %w", err)
	}
	return invitations, nil
}

// Redeem inserts the membership row and increments the use counter in one
// transaction. The increment is guarded so concurrent redeemers cannot push
// current_uses past max_uses; losing that race surfaces as ErrExhausted.
// A duplicate membership surfaces as ErrConflict via the unique constraint.
func (s *InvitationStore) Redeem(ctx context.Context, inv *types.Invitation, target store.MembershipTarget, userID string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin redeem transaction: %w", err)
	}
	defer rollback(ctx, tx)

	// Membership table and column names come from the fixed MembershipTarget
	// mapping, never from request input.
	insertQuery := fmt.Sprintf(
		`INSERT INTO %s (%s, user_id) VALUES ($1, $2)`,
		target.Table, target.ResourceColumn,
	)
	if _, err := tx.Exec(ctx, insertQuery, inv.ResourceID, userID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return store.ErrConflict
		}
		return fmt.Errorf("insert membership: %w", err)
	}

	const incrementQuery = `
		UPDATE invitations
		SET current_uses = current_uses + 1
		WHERE id = $1 AND (max_uses IS NULL OR current_uses < max_uses)
		RETURNING current_uses`

	var uses int
	if err := tx.QueryRow(ctx, incrementQuery, inv.ID).Scan(&uses); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrExhausted
		}
		return fmt.Errorf("increment invitation uses: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit redeem transaction: %w", err)
	}
	return nil
}

// ResourceExists reports whether the invited resource row exists.
func (s *InvitationStore) ResourceExists(ctx context.Context, target store.MembershipTarget, resourceID string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1)`, target.ResourceTable)

	var exists bool
	if err := s.db.QueryRow(ctx, query, resourceID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check resource exists: %w", err)
	}
	return exists, nil
}

// IsResourceMember reports whether the user already belongs to the resource.
func (s *InvitationStore) IsResourceMember(ctx context.Context, target store.MembershipTarget, resourceID, userID string) (bool, error) {
	query := fmt.Sprintf(
		`SELECT EXISTS(SELECT 1 FROM %s WHERE %s = $1 AND user_id = $2)`,
		target.Table, target.ResourceColumn,
	)

	var isMember bool
	if err := s.db.QueryRow(ctx, query, resourceID, userID).Scan(&isMember); err != nil {
		return false, fmt.Errorf("check resource membership: %w", err)
	}
	return isMember, nil
}
