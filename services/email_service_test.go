package services

import (
	"bytes"
	"context"
	"html/template"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/splitz-app/splitz-backend/config"
	"github.com/splitz-app/splitz-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEmailService() *EmailService {
	return NewEmailServiceWithRegistry(&config.EmailConfig{
		FromAddress:  "digest@splitz.app",
		FromName:     "Splitz",
		ResendAPIKey: "re_test_key",
	}, prometheus.NewRegistry())
}

func TestSendDigestEmailRejectsMissingFields(t *testing.T) {
	svc := newTestEmailService()

	data := types.EmailData{
		To:      "alice@example.com",
		Subject: "Your Splitz weekly recap",
		TemplateData: map[string]interface{}{
			"DisplayName": "Alice",
			"WindowLabel": "weekly",
			// ExpensesCreated, AmountPaid, AmountOwed missing
		},
	}

	err := svc.SendDigestEmail(context.Background(), data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required template field")
}

func TestDigestTemplateRenders(t *testing.T) {
	tmpl, err := template.New("digest").Parse(digestEmailTemplate)
	require.NoError(t, err)

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, map[string]interface{}{
		"DisplayName":     "Alice",
		"WindowLabel":     "weekly",
		"ExpensesCreated": 3,
		"AmountPaid":      "120.50",
		"AmountOwed":      "40.00",
		"SettlementsMade": 2,
		"GroupsJoined":    0,
	})
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, "Hi Alice!")
	assert.Contains(t, html, "Expenses added: 3")
	assert.Contains(t, html, "You paid: 120.50")
	assert.Contains(t, html, "Splits settled: 2")
	// Zero counts drop their line entirely.
	assert.NotContains(t, html, "Groups joined")
}

func TestDigestTemplateEscapesUserContent(t *testing.T) {
	tmpl, err := template.New("digest").Parse(digestEmailTemplate)
	require.NoError(t, err)

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, map[string]interface{}{
		"DisplayName":     "<script>alert(1)</script>",
		"WindowLabel":     "weekly",
		"ExpensesCreated": 1,
		"AmountPaid":      "1.00",
		"AmountOwed":      "0.00",
	})
	require.NoError(t, err)

	assert.NotContains(t, buf.String(), "<script>")
}
