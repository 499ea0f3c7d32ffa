package types

import (
	"encoding/json"
	"time"
)

// InviteType identifies the kind of resource an invitation joins.
type InviteType string

const (
	InviteTypeExpenseGroup InviteType = "expense_group"
	InviteTypeTrip         InviteType = "trip"
	InviteTypeChallenge    InviteType = "challenge"
	InviteTypeSubscription InviteType = "subscription"
)

// Valid reports whether t is a known invite type.
func (t InviteType) Valid() bool {
	switch t {
	case InviteTypeExpenseGroup, InviteTypeTrip, InviteTypeChallenge, InviteTypeSubscription:
		return true
	}
	return false
}

// InvitationStatus is the derived lifecycle state of an invitation.
type InvitationStatus string

const (
	InvitationStatusActive    InvitationStatus = "active"
	InvitationStatusExpired   InvitationStatus = "expired"
	InvitationStatusExhausted InvitationStatus = "exhausted"
)

// Invitation is a shareable join token for an invitable resource. MaxUses of
// nil means unlimited uses until expiry.
type Invitation struct {
	ID          string          `json:"id"`
	InviteCode  string          `json:"inviteCode"`
	InviteType  InviteType      `json:"inviteType"`
	ResourceID  string          `json:"resourceId"`
	CreatedBy   string          `json:"createdBy"`
	ExpiresAt   time.Time       `json:"expiresAt"`
	CurrentUses int             `json:"currentUses"`
	MaxUses     *int            `json:"maxUses,omitempty"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Status derives the invitation's lifecycle state at the given time.
// Expiry wins over exhaustion when both apply.
func (i *Invitation) Status(now time.Time) InvitationStatus {
	if !now.Before(i.ExpiresAt) {
		return InvitationStatusExpired
	}
	if i.MaxUses != nil && i.CurrentUses >= *i.MaxUses {
		return InvitationStatusExhausted
	}
	return InvitationStatusActive
}

// IsActive reports whether the invitation can still be redeemed at now.
func (i *Invitation) IsActive(now time.Time) bool {
	return i.Status(now) == InvitationStatusActive
}

// CreateInvitationRequest is the payload for generating an invitation.
type CreateInvitationRequest struct {
	InviteType InviteType      `json:"inviteType" binding:"required"`
	ResourceID string          `json:"resourceId" binding:"required"`
	MaxUses    *int            `json:"maxUses,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// RedeemInvitationRequest is the payload for redeeming an invitation by code.
type RedeemInvitationRequest struct {
	InviteCode string `json:"inviteCode" binding:"required"`
}

// InvitationDetailsResponse is the public view of an invitation looked up by
// code, with its derived status attached.
type InvitationDetailsResponse struct {
	Invitation Invitation       `json:"invitation"`
	Status     InvitationStatus `json:"status"`
}
