package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/splitz-app/splitz-backend/internal/store"
	"github.com/splitz-app/splitz-backend/types"
)

// UserStore implements store.UserStore using PostgreSQL.
type UserStore struct {
	db DB
}

// NewUserStore creates a new UserStore instance.
func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

// GetProfilesByIDs returns public profiles for a set of user IDs. Unknown IDs
// are silently omitted.
func (s *UserStore) GetProfilesByIDs(ctx context.Context, ids []string) ([]types.UserProfile, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	const query = `
		SELECT id, username, display_name, avatar_url, created_at
		FROM users
		WHERE id = ANY($1)
		ORDER BY username`

	rows, err := s.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get profiles: %w", err)
	}
	defer rows.Close()

	var profiles []types.UserProfile
	for rows.Next() {
		var p types.UserProfile
		if err := rows.Scan(&p.ID, &p.Username, &p.DisplayName, &p.AvatarURL, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}
	return profiles, nil
}

// GetPreferences retrieves a user's notification preferences. Users without a
// preferences row get the defaults (both digests enabled).
func (s *UserStore) GetPreferences(ctx context.Context, userID string) (*types.NotificationPreferences, error) {
	const query = `
		SELECT user_id, weekly_digest, monthly_digest
		FROM notification_preferences
		WHERE user_id = $1`

	prefs := &types.NotificationPreferences{}
	err := s.db.QueryRow(ctx, query, userID).Scan(
		&prefs.UserID,
		&prefs.WeeklyDigest,
		&prefs.MonthlyDigest,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &types.NotificationPreferences{
				UserID:        userID,
				WeeklyDigest:  true,
				MonthlyDigest: true,
			}, nil
		}
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	return prefs, nil
}

// UpdatePreferences upserts a user's notification preferences.
func (s *UserStore) UpdatePreferences(ctx context.Context, userID string, update *types.UpdatePreferencesRequest) (*types.NotificationPreferences, error) {
	current, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	if update.WeeklyDigest != nil {
		current.WeeklyDigest = *update.WeeklyDigest
	}
	if update.MonthlyDigest != nil {
		current.MonthlyDigest = *update.MonthlyDigest
	}

	const query = `
		INSERT INTO notification_preferences (user_id, weekly_digest, monthly_digest)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET weekly_digest = EXCLUDED.weekly_digest,
			monthly_digest = EXCLUDED.monthly_digest
		RETURNING user_id, weekly_digest, monthly_digest`

	prefs := &types.NotificationPreferences{}
	err = s.db.QueryRow(ctx, query, userID, current.WeeklyDigest, current.MonthlyDigest).Scan(
		&prefs.UserID,
		&prefs.WeeklyDigest,
		&prefs.MonthlyDigest,
	)
	if err != nil {
		return nil, fmt.Errorf("update preferences: %w", err)
	}
	return prefs, nil
}

var _ store.UserStore = (*UserStore)(nil)
