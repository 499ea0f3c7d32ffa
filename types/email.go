package types

import "time"

// DigestWindow selects the lookback period for a digest run.
type DigestWindow string

const (
	DigestWindowWeekly  DigestWindow = "weekly"
	DigestWindowMonthly DigestWindow = "monthly"
)

// Days returns the lookback length of the window in days.
func (w DigestWindow) Days() int {
	if w == DigestWindowMonthly {
		return 30
	}
	return 7
}

// Valid reports whether w is a known digest window.
func (w DigestWindow) Valid() bool {
	return w == DigestWindowWeekly || w == DigestWindowMonthly
}

// UserDigestStats is one user's aggregate activity over a lookback window.
type UserDigestStats struct {
	UserID          string  `json:"userId"`
	Email           string  `json:"email"`
	DisplayName     string  `json:"displayName"`
	ExpensesCreated int     `json:"expensesCreated"`
	AmountPaid      float64 `json:"amountPaid"`
	AmountOwed      float64 `json:"amountOwed"`
	SettlementsMade int     `json:"settlementsMade"`
	GroupsJoined    int     `json:"groupsJoined"`
}

// HasActivity reports whether the stats contain anything worth emailing.
func (s *UserDigestStats) HasActivity() bool {
	return s.ExpensesCreated > 0 || s.AmountPaid > 0 || s.AmountOwed > 0 ||
		s.SettlementsMade > 0 || s.GroupsJoined > 0
}

// EmailLogEntry records one digest send attempt.
type EmailLogEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	EmailType string    `json:"emailType"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	SentAt    time.Time `json:"sentAt"`
}

// EmailData is the payload handed to the email service for one message.
type EmailData struct {
	To           string
	Subject      string
	TemplateData map[string]interface{}
}

// DigestRunSummary is the aggregate JSON response of one digest run.
type DigestRunSummary struct {
	Window    DigestWindow `json:"window"`
	Evaluated int          `json:"evaluated"`
	Skipped   int          `json:"skipped"`
	Sent      int          `json:"sent"`
	Failed    int          `json:"failed"`
	StartedAt time.Time    `json:"startedAt"`
	Duration  string       `json:"duration"`
}
