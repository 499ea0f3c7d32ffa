// Package store defines the persistence interfaces consumed by the service
// layer. Postgres implementations live in the postgres subpackage.
package store

import (
	"context"
	"time"

	"github.com/splitz-app/splitz-backend/types"
)

// MembershipTarget describes the membership table for one invitable resource
// type. It parametrizes the redeem operation so every resource type shares a
// single lookup -> validate -> insert -> increment sequence.
type MembershipTarget struct {
	// Table is the membership table name.
	Table string
	// ResourceColumn is the foreign-key column referencing the resource.
	ResourceColumn string
	// ResourceTable is the resource table itself, used for existence checks.
	ResourceTable string
	// Noun names the resource in user-facing messages ("group", "trip", ...).
	Noun string
}

// MembershipTargetFor maps an invite type to its membership table. The
// returned bool is false for unknown types.
func MembershipTargetFor(t types.InviteType) (MembershipTarget, bool) {
	switch t {
	case types.InviteTypeExpenseGroup:
		return MembershipTarget{
			Table:          "expense_group_members",
			ResourceColumn: "group_id",
			ResourceTable:  "expense_groups",
			Noun:           "group",
		}, true
	case types.InviteTypeTrip:
		return MembershipTarget{
			Table:          "trip_members",
			ResourceColumn: "trip_id",
			ResourceTable:  "trips",
			Noun:           "trip",
		}, true
	case types.InviteTypeChallenge:
		return MembershipTarget{
			Table:          "challenge_participants",
			ResourceColumn: "challenge_id",
			ResourceTable:  "challenges",
			Noun:           "challenge",
		}, true
	case types.InviteTypeSubscription:
		return MembershipTarget{
			Table:          "subscription_contributors",
			ResourceColumn: "subscription_id",
			ResourceTable:  "subscriptions",
			Noun:           "subscription",
		}, true
	}
	return MembershipTarget{}, false
}

// ExpenseStore persists expenses and their member rows.
type ExpenseStore interface {
	// CreateExpenseWithMembers inserts the expense row and all member rows in
	// one transaction and returns the new expense ID.
	CreateExpenseWithMembers(ctx context.Context, expense *types.Expense, members []types.ExpenseMember) (string, error)
	GetExpense(ctx context.Context, id string) (*types.Expense, error)
	GetExpenseMembers(ctx context.Context, expenseID string) ([]types.ExpenseMember, error)
	ListGroupExpenses(ctx context.Context, groupID string) ([]types.ExpenseWithMembers, error)
	UpdateExpense(ctx context.Context, id string, update *types.UpdateExpenseRequest) (*types.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
	// SetMemberSettled toggles one member's settlement flag.
	SetMemberSettled(ctx context.Context, expenseID, userID string, settled bool) error
	// HasSettledMembers reports whether any member row of the expense is settled.
	HasSettledMembers(ctx context.Context, expenseID string) (bool, error)
}

// GroupStore persists expense groups and their memberships.
type GroupStore interface {
	// CreateGroup inserts the group and the creator's membership row in one
	// transaction and returns the new group ID.
	CreateGroup(ctx context.Context, group *types.ExpenseGroup) (string, error)
	GetGroup(ctx context.Context, id string) (*types.ExpenseGroup, error)
	UpdateGroup(ctx context.Context, id string, update *types.UpdateGroupRequest) (*types.ExpenseGroup, error)
	DeleteGroup(ctx context.Context, id string) error
	AddMember(ctx context.Context, groupID, userID string) error
	RemoveMember(ctx context.Context, groupID, userID string) error
	ListMembers(ctx context.Context, groupID string) ([]types.ExpenseGroupMember, error)
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
	ListUserGroups(ctx context.Context, userID string) ([]types.ExpenseGroup, error)
}

// InvitationStore persists invitations and performs the transactional redeem.
type InvitationStore interface {
	CreateInvitation(ctx context.Context, inv *types.Invitation) (string, error)
	GetByCode(ctx context.Context, code string) (*types.Invitation, error)
	ListByResource(ctx context.Context, inviteType types.InviteType, resourceID string) ([]types.Invitation, error)
	// Redeem inserts the membership row and increments the use counter in one
	// transaction. It returns ErrConflict when the user is already a member
	// and ErrExhausted when the use limit was hit concurrently.
	Redeem(ctx context.Context, inv *types.Invitation, target MembershipTarget, userID string) error
	// ResourceExists reports whether the invited resource row exists.
	ResourceExists(ctx context.Context, target MembershipTarget, resourceID string) (bool, error)
	// IsResourceMember reports whether the user already belongs to the resource.
	IsResourceMember(ctx context.Context, target MembershipTarget, resourceID, userID string) (bool, error)
}

// UserStore reads user profiles and notification preferences.
type UserStore interface {
	GetProfilesByIDs(ctx context.Context, ids []string) ([]types.UserProfile, error)
	GetPreferences(ctx context.Context, userID string) (*types.NotificationPreferences, error)
	UpdatePreferences(ctx context.Context, userID string, update *types.UpdatePreferencesRequest) (*types.NotificationPreferences, error)
}

// DigestStore aggregates per-user activity stats and records send attempts.
type DigestStore interface {
	// ListUserStats returns activity aggregates since the given time for
	// users who have the window's digest enabled, capped at limit rows.
	ListUserStats(ctx context.Context, window types.DigestWindow, since time.Time, limit int) ([]types.UserDigestStats, error)
	LogEmail(ctx context.Context, entry *types.EmailLogEntry) error
}
