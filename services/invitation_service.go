package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/splitz-app/splitz-backend/config"
	apperrors "github.com/splitz-app/splitz-backend/errors"
	"github.com/splitz-app/splitz-backend/internal/store"
	"github.com/splitz-app/splitz-backend/logger"
	"github.com/splitz-app/splitz-backend/types"
)

// codeAlphabet excludes ambiguous characters (0/O, 1/I/l).
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghjkmnpqrstuvwxyz23456789"

// maxCodeAttempts bounds retries on invite-code collisions.
const maxCodeAttempts = 5

// InvitationMetrics tracks redemption outcomes.
type InvitationMetrics struct {
	created  prometheus.Counter
	redeemed prometheus.Counter
	refused  *prometheus.CounterVec
}

// InvitationService owns the shared invitation lifecycle for every invitable
// resource type. The redeem path is a single parametrized sequence: lookup,
// validate active, membership insert, increment uses.
type InvitationService struct {
	invitations store.InvitationStore
	cfg         *config.InvitationConfig
	metrics     *InvitationMetrics
	now         func() time.Time
}

// NewInvitationService creates a new InvitationService.
func NewInvitationService(invitations store.InvitationStore, cfg *config.InvitationConfig) *InvitationService {
	return NewInvitationServiceWithRegistry(invitations, cfg, prometheus.DefaultRegisterer)
}

// NewInvitationServiceWithRegistry creates an InvitationService registering
// its metrics with the given registry.
func NewInvitationServiceWithRegistry(invitations store.InvitationStore, cfg *config.InvitationConfig, reg prometheus.Registerer) *InvitationService {
	metrics := &InvitationMetrics{
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "splitz_invitations_created_total",
			Help: "Total number of invitations created",
		}),
		redeemed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "splitz_invitations_redeemed_total",
			Help: "Total number of successful invitation redemptions",
		}),
		refused: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "splitz_invitations_refused_total",
			Help: "Total number of refused invitation redemptions by reason",
		}, []string{"reason"}),
	}
	reg.MustRegister(metrics.created, metrics.redeemed, metrics.refused)

	return &InvitationService{
		invitations: invitations,
		cfg:         cfg,
		metrics:     metrics,
		now:         time.Now,
	}
}

// CreateInvitation generates a new invitation for a resource the caller
// belongs to. The code is random alphanumeric and the expiry is a fixed TTL
// from creation.
func (s *InvitationService) CreateInvitation(ctx context.Context, userID string, req *types.CreateInvitationRequest) (*types.Invitation, error) {
	log := logger.GetLogger()

	if !req.InviteType.Valid() {
		return nil, apperrors.ValidationFailed("unknown invite type", string(req.InviteType))
	}
	if req.MaxUses != nil && *req.MaxUses <= 0 {
		return nil, apperrors.ValidationFailed("max uses must be positive", "")
	}

	target, _ := store.MembershipTargetFor(req.InviteType)

	exists, err := s.invitations.ResourceExists(ctx, target, req.ResourceID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	if !exists {
		return nil, apperrors.NotFound("Resource", req.ResourceID)
	}

	isMember, err := s.invitations.IsResourceMember(ctx, target, req.ResourceID, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	if !isMember {
		return nil, apperrors.Forbidden("Only members may create invitations",
			fmt.Sprintf("%s ID: %s", target.Noun, req.ResourceID))
	}

	maxUses := req.MaxUses
	if maxUses == nil && s.cfg.DefaultMaxUses > 0 {
		uses := s.cfg.DefaultMaxUses
		maxUses = &uses
	}

	inv := &types.Invitation{
		InviteType: req.InviteType,
		ResourceID: req.ResourceID,
		CreatedBy:  userID,
		ExpiresAt:  s.now().Add(time.Duration(s.cfg.TTLDays) * 24 * time.Hour),
		MaxUses:    maxUses,
		Payload:    req.Payload,
	}

	// Retry on the unlikely code collision.
	var id string
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := generateCode(s.cfg.CodeLength)
		if err != nil {
			return nil, apperrors.InternalServerError("failed to generate invite code")
		}
		inv.InviteCode = code

		id, err = s.invitations.CreateInvitation(ctx, inv)
		if err == nil {
			break
		}
		if !errors.Is(err, store.ErrConflict) {
			return nil, apperrors.NewDatabaseError(err)
		}
		id = ""
	}
	if id == "" {
		return nil, apperrors.InternalServerError("failed to generate a unique invite code")
	}

	created, err := s.invitations.GetByCode(ctx, inv.InviteCode)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	s.metrics.created.Inc()
	log.Infow("Invitation created",
		"invitationID", id,
		"inviteType", inv.InviteType,
		"resourceID", inv.ResourceID,
		"code", logger.MaskInviteCode(inv.InviteCode),
	)
	return created, nil
}

// GetInvitationDetails looks up an invitation by code. Lookup succeeds for
// expired and exhausted invitations; the derived status is attached so
// clients can explain why a join would be refused.
func (s *InvitationService) GetInvitationDetails(ctx context.Context, code string) (*types.InvitationDetailsResponse, error) {
	inv, err := s.invitations.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("Invitation", logger.MaskInviteCode(code))
		}
		return nil, apperrors.NewDatabaseError(err)
	}

	return &types.InvitationDetailsResponse{
		Invitation: *inv,
		Status:     inv.Status(s.now()),
	}, nil
}

// ListResourceInvitations returns all invitations for a resource the caller
// belongs to.
func (s *InvitationService) ListResourceInvitations(ctx context.Context, userID string, inviteType types.InviteType, resourceID string) ([]types.Invitation, error) {
	if !inviteType.Valid() {
		return nil, apperrors.ValidationFailed("unknown invite type", string(inviteType))
	}
	target, _ := store.MembershipTargetFor(inviteType)

	isMember, err := s.invitations.IsResourceMember(ctx, target, resourceID, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	if !isMember {
		return nil, apperrors.Forbidden("Only members may list invitations",
			fmt.Sprintf("%s ID: %s", target.Noun, resourceID))
	}

	invitations, err := s.invitations.ListByResource(ctx, inviteType, resourceID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return invitations, nil
}

// RedeemInvitation joins the caller to the invited resource. Expired and
// exhausted invitations are refused; a duplicate membership maps to an
// "already a member" conflict rather than exhaustion.
func (s *InvitationService) RedeemInvitation(ctx context.Context, userID, code string) (*types.Invitation, error) {
	log := logger.GetLogger()

	inv, err := s.invitations.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.metrics.refused.WithLabelValues("not_found").Inc()
			return nil, apperrors.NotFound("Invitation", logger.MaskInviteCode(code))
		}
		return nil, apperrors.NewDatabaseError(err)
	}

	switch inv.Status(s.now()) {
	case types.InvitationStatusExpired:
		s.metrics.refused.WithLabelValues("expired").Inc()
		return nil, apperrors.InvitationExpired(code)
	case types.InvitationStatusExhausted:
		s.metrics.refused.WithLabelValues("exhausted").Inc()
		return nil, apperrors.InvitationExhausted(code)
	}

	target, ok := store.MembershipTargetFor(inv.InviteType)
	if !ok {
		return nil, apperrors.InternalServerError("invitation references an unknown resource type")
	}

	if err := s.invitations.Redeem(ctx, inv, target, userID); err != nil {
		switch {
		case errors.Is(err, store.ErrConflict):
			s.metrics.refused.WithLabelValues("already_member").Inc()
			return nil, apperrors.AlreadyMember(target.Noun)
		case errors.Is(err, store.ErrExhausted):
			// Lost a race with a concurrent redeemer for the last use.
			s.metrics.refused.WithLabelValues("exhausted").Inc()
			return nil, apperrors.InvitationExhausted(code)
		default:
			return nil, apperrors.NewDatabaseError(err)
		}
	}

	s.metrics.redeemed.Inc()
	log.Infow("Invitation redeemed",
		"invitationID", inv.ID,
		"inviteType", inv.InviteType,
		"resourceID", inv.ResourceID,
		"code", logger.MaskInviteCode(code),
	)
	return inv, nil
}

// generateCode produces a random alphanumeric invite code.
func generateCode(length int) (string, error) {
	code := make([]byte, length)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate invite code: %w", err)
		}
		code[i] = codeAlphabet[n.Int64()]
	}
	return string(code), nil
}
