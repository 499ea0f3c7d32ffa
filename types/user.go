package types

import "time"

// UserProfile is the public view of a user returned to other members.
type UserProfile struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName,omitempty"`
	AvatarURL   string    `json:"avatarUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NotificationPreferences controls which emails a user receives.
type NotificationPreferences struct {
	UserID        string `json:"userId"`
	WeeklyDigest  bool   `json:"weeklyDigest"`
	MonthlyDigest bool   `json:"monthlyDigest"`
}

// UpdatePreferencesRequest carries notification preference updates.
type UpdatePreferencesRequest struct {
	WeeklyDigest  *bool `json:"weeklyDigest,omitempty"`
	MonthlyDigest *bool `json:"monthlyDigest,omitempty"`
}
