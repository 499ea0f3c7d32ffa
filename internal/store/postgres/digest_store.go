package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/splitz-app/splitz-backend/types"
)

// DigestStore implements store.DigestStore using PostgreSQL.
type DigestStore struct {
	db DB
}

// NewDigestStore creates a new DigestStore instance.
func NewDigestStore(db DB) *DigestStore {
	return &DigestStore{db: db}
}

// ListUserStats aggregates per-user activity since the given time for users
// who have the window's digest enabled. Users without a preferences row are
// treated as opted in.
func (s *DigestStore) ListUserStats(ctx context.Context, window types.DigestWindow, since time.Time, limit int) ([]types.UserDigestStats, error) {
	prefColumn := "weekly_digest"
	if window == types.DigestWindowMonthly {
		prefColumn = "monthly_digest"
	}

	query := fmt.Sprintf(`
		SELECT u.id,
			u.email,
			u.display_name,
			COALESCE(e.expenses_created, 0),
			COALESCE(p.amount_paid, 0),
			COALESCE(o.amount_owed, 0),
			COALESCE(st.settlements_made, 0),
			COALESCE(gj.groups_joined, 0)
		FROM users u
		LEFT JOIN notification_preferences np ON np.user_id = u.id
		LEFT JOIN (
			SELECT created_by, COUNT(*) AS expenses_created
			FROM expenses WHERE created_at >= $1 GROUP BY created_by
		) e ON e.created_by = u.id
		LEFT JOIN (
			SELECT paid_by, SUM(total_amount) AS amount_paid
			FROM expenses WHERE created_at >= $1 GROUP BY paid_by
		) p ON p.paid_by = u.id
		LEFT JOIN (
			SELECT em.user_id, SUM(em.amount_owed) AS amount_owed
			FROM expense_members em
			JOIN expenses ex ON ex.id = em.expense_id
			WHERE ex.created_at >= $1 AND NOT em.is_settled
			GROUP BY em.user_id
		) o ON o.user_id = u.id
		LEFT JOIN (
			SELECT em.user_id, COUNT(*) AS settlements_made
			FROM expense_members em
			JOIN expenses ex ON ex.id = em.expense_id
			WHERE ex.created_at >= $1 AND em.is_settled
			GROUP BY em.user_id
		) st ON st.user_id = u.id
		LEFT JOIN (
			SELECT user_id, COUNT(*) AS groups_joined
			FROM expense_group_members WHERE joined_at >= $1 GROUP BY user_id
		) gj ON gj.user_id = u.id
		WHERE COALESCE(np.%s, TRUE)
		ORDER BY u.id
		LIMIT $2`, prefColumn)

	rows, err := s.db.Query(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("list user digest stats: %w", err)
	}
	defer rows.Close()

	var stats []types.UserDigestStats
	for rows.Next() {
		var st types.UserDigestStats
		err := rows.Scan(
			&st.UserID,
			&st.Email,
			&st.DisplayName,
			&st.ExpensesCreated,
			&st.AmountPaid,
			&st.AmountOwed,
			&st.SettlementsMade,
			&st.GroupsJoined,
		)
		if err != nil {
			return nil, fmt.Errorf("scan digest stats: %w", err)
		}
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate digest stats: %w", err)
	}
	return stats, nil
}

// LogEmail records one send attempt in the email log.
func (s *DigestStore) LogEmail(ctx context.Context, entry *types.EmailLogEntry) error {
	const query = `
		INSERT INTO email_log (user_id, email_type, status, error)
		VALUES ($1, $2, $3, NULLIF($4, ''))`

	_, err := s.db.Exec(ctx, query, entry.UserID, entry.EmailType, entry.Status, entry.Error)
	if err != nil {
		return fmt.Errorf("log email: %w", err)
	}
	return nil
}
