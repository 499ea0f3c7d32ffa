package services

import (
	"context"
	"fmt"
	"time"

	"github.com/splitz-app/splitz-backend/config"
	apperrors "github.com/splitz-app/splitz-backend/errors"
	"github.com/splitz-app/splitz-backend/internal/store"
	"github.com/splitz-app/splitz-backend/logger"
	"github.com/splitz-app/splitz-backend/types"
)

// DigestService runs the periodic digest emails: aggregate stats over a
// lookback window, send one email per qualifying user, record every attempt.
type DigestService struct {
	digests store.DigestStore
	sender  EmailSender
	cfg     *config.DigestConfig
	now     func() time.Time
}

// NewDigestService creates a new DigestService.
func NewDigestService(digests store.DigestStore, sender EmailSender, cfg *config.DigestConfig) *DigestService {
	return &DigestService{
		digests: digests,
		sender:  sender,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Run executes one digest pass for the window. Users with no activity are
// skipped. Individual send failures are logged and recorded, never retried;
// the summary reports aggregate counts.
func (s *DigestService) Run(ctx context.Context, window types.DigestWindow) (*types.DigestRunSummary, error) {
	log := logger.GetLogger()

	if !window.Valid() {
		return nil, apperrors.ValidationFailed("unknown digest window", string(window))
	}

	started := s.now()
	since := started.AddDate(0, 0, -window.Days())

	stats, err := s.digests.ListUserStats(ctx, window, since, s.cfg.BatchSize)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	summary := &types.DigestRunSummary{
		Window:    window,
		StartedAt: started,
	}

	emailType := fmt.Sprintf("%s_digest", window)
	for i := range stats {
		st := &stats[i]
		summary.Evaluated++

		if !st.HasActivity() {
			summary.Skipped++
			continue
		}

		sendErr := s.sender.SendDigestEmail(ctx, types.EmailData{
			To:      st.Email,
			Subject: fmt.Sprintf("Your Splitz %s recap", windowLabel(window)),
			TemplateData: map[string]interface{}{
				"DisplayName":     displayName(st),
				"WindowLabel":     windowLabel(window),
				"ExpensesCreated": st.ExpensesCreated,
				"AmountPaid":      fmt.Sprintf("%.2f", st.AmountPaid),
				"AmountOwed":      fmt.Sprintf("%.2f", st.AmountOwed),
				"SettlementsMade": st.SettlementsMade,
				"GroupsJoined":    st.GroupsJoined,
			},
		})

		entry := &types.EmailLogEntry{
			UserID:    st.UserID,
			EmailType: emailType,
			Status:    "sent",
		}
		if sendErr != nil {
			entry.Status = "failed"
			entry.Error = sendErr.Error()
			summary.Failed++
			log.Warnw("Digest send failed",
				"userID", st.UserID,
				"email", logger.MaskEmail(st.Email),
				"error", sendErr)
		} else {
			summary.Sent++
		}

		if logErr := s.digests.LogEmail(ctx, entry); logErr != nil {
			// The send outcome stands; a failed log row is only logged.
			log.Errorw("Failed to record email log entry",
				"userID", st.UserID,
				"error", logErr)
		}
	}

	summary.Duration = s.now().Sub(started).String()
	log.Infow("Digest run complete",
		"window", window,
		"evaluated", summary.Evaluated,
		"sent", summary.Sent,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)
	return summary, nil
}

func windowLabel(window types.DigestWindow) string {
	if window == types.DigestWindowMonthly {
		return "monthly"
	}
	return "weekly"
}

func displayName(st *types.UserDigestStats) string {
	if st.DisplayName != "" {
		return st.DisplayName
	}
	return st.Email
}
