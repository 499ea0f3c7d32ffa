package types

import "time"

// Trip is an invitable resource. Only the fields needed for membership and
// invitations are modeled here.
type Trip struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// Challenge is an invitable resource.
type Challenge struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// Subscription is an invitable resource; redeemers join as contributors.
type Subscription struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// ResourceMembership is a generic membership row across invitable resources.
type ResourceMembership struct {
	ResourceID string    `json:"resourceId"`
	UserID     string    `json:"userId"`
	JoinedAt   time.Time `json:"joinedAt"`
}
