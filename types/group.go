package types

import "time"

// ExpenseGroup is a named collection of members who share expenses.
type ExpenseGroup struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ExpenseGroupMember links a user to an expense group. The (GroupID, UserID)
// pair is unique.
type ExpenseGroupMember struct {
	GroupID  string    `json:"groupId"`
	UserID   string    `json:"userId"`
	JoinedAt time.Time `json:"joinedAt"`
}

// CreateGroupRequest is the payload for creating an expense group.
type CreateGroupRequest struct {
	Name string `json:"name" binding:"required"`
}

// UpdateGroupRequest carries optional field updates for a group.
type UpdateGroupRequest struct {
	Name *string `json:"name,omitempty"`
}

// GroupWithMembers bundles a group with its membership rows.
type GroupWithMembers struct {
	Group   ExpenseGroup         `json:"group"`
	Members []ExpenseGroupMember `json:"members"`
}
