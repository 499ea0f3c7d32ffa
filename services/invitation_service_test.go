package services

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/splitz-app/splitz-backend/config"
	apperrors "github.com/splitz-app/splitz-backend/errors"
	"github.com/splitz-app/splitz-backend/internal/store"
	"github.com/splitz-app/splitz-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockInvitationStore implements store.InvitationStore for service tests.
type MockInvitationStore struct {
	mock.Mock
}

func (m *MockInvitationStore) CreateInvitation(ctx context.Context, inv *types.Invitation) (string, error) {
	args := m.Called(ctx, inv)
	return args.String(0), args.Error(1)
}

func (m *MockInvitationStore) GetByCode(ctx context.Context, code string) (*types.Invitation, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Invitation), args.Error(1)
}

func (m *MockInvitationStore) ListByResource(ctx context.Context, inviteType types.InviteType, resourceID string) ([]types.Invitation, error) {
	args := m.Called(ctx, inviteType, resourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Invitation), args.Error(1)
}

func (m *MockInvitationStore) Redeem(ctx context.Context, inv *types.Invitation, target store.MembershipTarget, userID string) error {
	args := m.Called(ctx, inv, target, userID)
	return args.Error(0)
}

func (m *MockInvitationStore) ResourceExists(ctx context.Context, target store.MembershipTarget, resourceID string) (bool, error) {
	args := m.Called(ctx, target, resourceID)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvitationStore) IsResourceMember(ctx context.Context, target store.MembershipTarget, resourceID, userID string) (bool, error) {
	args := m.Called(ctx, target, resourceID, userID)
	return args.Bool(0), args.Error(1)
}

var testInvitationConfig = &config.InvitationConfig{
	CodeLength:     8,
	TTLDays:        7,
	DefaultMaxUses: 0,
}

func newTestInvitationService(t *testing.T, mockStore *MockInvitationStore, now time.Time) *InvitationService {
	t.Helper()
	svc := NewInvitationServiceWithRegistry(mockStore, testInvitationConfig, prometheus.NewRegistry())
	svc.now = func() time.Time { return now }
	return svc
}

func intPtr(v int) *int { return &v }

func appErrorType(t *testing.T, err error) apperrors.ErrorType {
	t.Helper()
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok, "expected *AppError, got %T", err)
	return appErr.Type
}

func TestCreateInvitation(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	groupTarget, _ := store.MembershipTargetFor(types.InviteTypeExpenseGroup)

	t.Run("success", func(t *testing.T) {
		mockStore := new(MockInvitationStore)
		svc := newTestInvitationService(t, mockStore, now)

		mockStore.On("ResourceExists", mock.Anything, groupTarget, "group-1").Return(true, nil)
		mockStore.On("IsResourceMember", mock.Anything, groupTarget, "group-1", "user-1").Return(true, nil)
		mockStore.On("CreateInvitation", mock.Anything, mock.MatchedBy(func(inv *types.Invitation) bool {
			return len(inv.InviteCode) == 8 &&
				inv.InviteType == types.InviteTypeExpenseGroup &&
				inv.ExpiresAt.Equal(now.Add(7*24*time.Hour))
		})).Return("inv-1", nil)
		mockStore.On("GetByCode", mock.Anything, mock.Anything).Return(&types.Invitation{ID: "inv-1"}, nil)

		inv, err := svc.CreateInvitation(context.Background(), "user-1", &types.CreateInvitationRequest{
			InviteType: types.InviteTypeExpenseGroup,
			ResourceID: "group-1",
		})

		require.NoError(t, err)
		assert.Equal(t, "inv-1", inv.ID)
		mockStore.AssertExpectations(t)
	})

	t.Run("unknown invite type", func(t *testing.T) {
		mockStore := new(MockInvitationStore)
		svc := newTestInvitationService(t, mockStore, now)

		_, err := svc.CreateInvitation(context.Background(), "user-1", &types.CreateInvitationRequest{
			InviteType: "club",
			ResourceID: "group-1",
		})

		require.Error(t, err)
		assert.Equal(t, apperrors.ValidationError, appErrorType(t, err))
	})

	t.Run("non-member refused", func(t *testing.T) {
		mockStore := new(MockInvitationStore)
		svc := newTestInvitationService(t, mockStore, now)

		mockStore.On("ResourceExists", mock.Anything, groupTarget, "group-1").Return(true, nil)
		mockStore.On("IsResourceMember", mock.Anything, groupTarget, "group-1", "outsider").Return(false, nil)

		_, err := svc.CreateInvitation(context.Background(), "outsider", &types.CreateInvitationRequest{
			InviteType: types.InviteTypeExpenseGroup,
			ResourceID: "group-1",
		})

		require.Error(t, err)
		assert.Equal(t, apperrors.ForbiddenError, appErrorType(t, err))
	})

	t.Run("retries on code collision", func(t *testing.T) {
		mockStore := new(MockInvitationStore)
		svc := newTestInvitationService(t, mockStore, now)

		mockStore.On("ResourceExists", mock.Anything, groupTarget, "group-1").Return(true, nil)
		mockStore.On("IsResourceMember", mock.Anything, groupTarget, "group-1", "user-1").Return(true, nil)
		mockStore.On("CreateInvitation", mock.Anything, mock.Anything).Return("", store.ErrConflict).Once()
		mockStore.On("CreateInvitation", mock.Anything, mock.Anything).Return("inv-2", nil).Once()
		mockStore.On("GetByCode", mock.Anything, mock.Anything).Return(&types.Invitation{ID: "inv-2"}, nil)

		inv, err := svc.CreateInvitation(context.Background(), "user-1", &types.CreateInvitationRequest{
			InviteType: types.InviteTypeExpenseGroup,
			ResourceID: "group-1",
		})

		require.NoError(t, err)
		assert.Equal(t, "inv-2", inv.ID)
		mockStore.AssertNumberOfCalls(t, "CreateInvitation", 2)
	})
}

func TestRedeemInvitation(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tripTarget, _ := store.MembershipTargetFor(types.InviteTypeTrip)

	activeInvitation := func() *types.Invitation {
		return &types.Invitation{
			ID:         "inv-1",
			InviteCode: "AbCd2345",
			InviteType: types.InviteTypeTrip,
			ResourceID: "trip-1",
			ExpiresAt:  now.Add(24 * time.Hour),
			MaxUses:    intPtr(1),
		}
	}

	t.Run("success", func(t *testing.T) {
		mockStore := new(MockInvitationStore)
		svc := newTestInvitationService(t, mockStore, now)

		inv := activeInvitation()
		mockStore.On("GetByCode", mock.Anything, "AbCd2345").Return(inv, nil)
		mockStore.On("Redeem", mock.Anything, inv, tripTarget, "user-2").Return(nil)

		got, err := svc.RedeemInvitation(context.Background(), "user-2", "AbCd2345")
		require.NoError(t, err)
		assert.Equal(t, "trip-1", got.ResourceID)
		mockStore.AssertExpectations(t)
	})

	t.Run("expired refused even with uses left", func(t *testing.T) {
		mockStore := new(MockInvitationStore)
		svc := newTestInvitationService(t, mockStore, now)

		inv := activeInvitation()
		inv.ExpiresAt = now.Add(-time.Hour)
		mockStore.On("GetByCode", mock.Anything, "AbCd2345").Return(inv, nil)

		_, err := svc.RedeemInvitation(context.Background(), "user-2", "AbCd2345")
		require.Error(t, err)
		assert.Equal(t, apperrors.InvitationExpiredError, appErrorType(t, err))
		mockStore.AssertNotCalled(t, "Redeem", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("exhausted refused", func(t *testing.T) {
		mockStore := new(MockInvitationStore)
		svc := newTestInvitationService(t, mockStore, now)

		inv := activeInvitation()
		inv.CurrentUses = 1
		mockStore.On("GetByCode", mock.Anything, "AbCd2345").Return(inv, nil)

		_, err := svc.RedeemInvitation(context.Background(), "user-3", "AbCd2345")
		require.Error(t, err)
		assert.Equal(t, apperrors.InvitationExhaustedError, appErrorType(t, err))
	})

	t.Run("duplicate membership is a conflict, not exhaustion", func(t *testing.T) {
		mockStore := new(MockInvitationStore)
		svc := newTestInvitationService(t, mockStore, now)

		inv := activeInvitation()
		mockStore.On("GetByCode", mock.Anything, "AbCd2345").Return(inv, nil)
		mockStore.On("Redeem", mock.Anything, inv, tripTarget, "user-2").Return(store.ErrConflict)

		_, err := svc.RedeemInvitation(context.Background(), "user-2", "AbCd2345")
		require.Error(t, err)
		assert.Equal(t, apperrors.AlreadyMemberError, appErrorType(t, err))
	})

	t.Run("race loss on last use maps to exhausted", func(t *testing.T) {
		mockStore := new(MockInvitationStore)
		svc := newTestInvitationService(t, mockStore, now)

		inv := activeInvitation()
		mockStore.On("GetByCode", mock.Anything, "AbCd2345").Return(inv, nil)
		mockStore.On("Redeem", mock.Anything, inv, tripTarget, "user-4").Return(store.ErrExhausted)

		_, err := svc.RedeemInvitation(context.Background(), "user-4", "AbCd2345")
		require.Error(t, err)
		assert.Equal(t, apperrors.InvitationExhaustedError, appErrorType(t, err))
	})

	t.Run("unknown code", func(t *testing.T) {
		mockStore := new(MockInvitationStore)
		svc := newTestInvitationService(t, mockStore, now)

		mockStore.On("GetByCode", mock.Anything, "nope1234").Return(nil, store.ErrNotFound)

		_, err := svc.RedeemInvitation(context.Background(), "user-2", "nope1234")
		require.Error(t, err)
		assert.Equal(t, apperrors.NotFoundError, appErrorType(t, err))
	})
}

func TestGetInvitationDetailsAttachesStatus(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mockStore := new(MockInvitationStore)
	svc := newTestInvitationService(t, mockStore, now)

	inv := &types.Invitation{
		ID:         "inv-1",
		InviteCode: "AbCd2345",
		InviteType: types.InviteTypeChallenge,
		ExpiresAt:  now.Add(-time.Minute),
	}
	mockStore.On("GetByCode", mock.Anything, "AbCd2345").Return(inv, nil)

	details, err := svc.GetInvitationDetails(context.Background(), "AbCd2345")
	require.NoError(t, err)
	assert.Equal(t, types.InvitationStatusExpired, details.Status)
}

func TestGenerateCodeUsesSafeAlphabet(t *testing.T) {
	code, err := generateCode(16)
	require.NoError(t, err)
	assert.Len(t, code, 16)
	for _, c := range code {
		assert.Contains(t, codeAlphabet, string(c))
	}
}
