package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/splitz-app/splitz-backend/internal/store"
	"github.com/splitz-app/splitz-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tripInvitation() *types.Invitation {
	maxUses := 1
	return &types.Invitation{
		ID:         "inv-1",
		InviteCode: "AbCd2345",
		InviteType: types.InviteTypeTrip,
		ResourceID: "trip-1",
		ExpiresAt:  time.Now().Add(24 * time.Hour),
		MaxUses:    &maxUses,
	}
}

func TestRedeem(t *testing.T) {
	target, ok := store.MembershipTargetFor(types.InviteTypeTrip)
	require.True(t, ok)

	t.Run("inserts membership and increments uses in one transaction", func(t *testing.T) {
		mock := newMockPool(t)
		s := NewInvitationStore(mock)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO trip_members`).
			WithArgs("trip-1", "user-2").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectQuery(`UPDATE invitations`).
			WithArgs("inv-1").
			WillReturnRows(pgxmock.NewRows([]string{"current_uses"}).AddRow(1))
		mock.ExpectCommit()
		mock.ExpectRollback()

		err := s.Redeem(context.Background(), tripInvitation(), target, "user-2")
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate membership maps to conflict", func(t *testing.T) {
		mock := newMockPool(t)
		s := NewInvitationStore(mock)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO trip_members`).
			WithArgs("trip-1", "user-2").
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})
		mock.ExpectRollback()

		err := s.Redeem(context.Background(), tripInvitation(), target, "user-2")
		assert.ErrorIs(t, err, store.ErrConflict)
	})

	t.Run("guarded increment losing the race maps to exhausted", func(t *testing.T) {
		mock := newMockPool(t)
		s := NewInvitationStore(mock)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO trip_members`).
			WithArgs("trip-1", "user-3").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectQuery(`UPDATE invitations`).
			WithArgs("inv-1").
			WillReturnRows(pgxmock.NewRows([]string{"current_uses"}))
		mock.ExpectRollback()

		err := s.Redeem(context.Background(), tripInvitation(), target, "user-3")
		assert.ErrorIs(t, err, store.ErrExhausted)
	})
}

func TestCreateInvitationCodeCollision(t *testing.T) {
	mock := newMockPool(t)
	s := NewInvitationStore(mock)

	inv := tripInvitation()
	mock.ExpectQuery(`INSERT INTO invitations`).
		WithArgs(inv.InviteCode, inv.InviteType, inv.ResourceID, inv.CreatedBy, inv.ExpiresAt, inv.MaxUses, inv.Payload).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

	_, err := s.CreateInvitation(context.Background(), inv)
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestGetByCodeNotFound(t *testing.T) {
	mock := newMockPool(t)
	s := NewInvitationStore(mock)

	mock.ExpectQuery(`SELECT (.+) FROM invitations`).
		WithArgs("missing1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "invite_code", "invite_type", "resource_id", "created_by",
			"expires_at", "current_uses", "max_uses", "payload", "created_at",
		}))

	_, err := s.GetByCode(context.Background(), "missing1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestIsResourceMemberUsesMappedTable(t *testing.T) {
	target, _ := store.MembershipTargetFor(types.InviteTypeSubscription)

	mock := newMockPool(t)
	s := NewInvitationStore(mock)

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM subscription_contributors WHERE subscription_id = \$1 AND user_id = \$2\)`).
		WithArgs("sub-1", "user-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	isMember, err := s.IsResourceMember(context.Background(), target, "sub-1", "user-1")
	require.NoError(t, err)
	assert.True(t, isMember)
}
