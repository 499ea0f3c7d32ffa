package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskSensitiveString(t *testing.T) {
	assert.Equal(t, "", MaskSensitiveString("", 2, 2))
	assert.Equal(t, "*****", MaskSensitiveString("short", 2, 2))
	assert.Equal(t, "se...23", MaskSensitiveString("secretvalue123", 2, 2))
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "", MaskEmail(""))
	assert.Equal(t, "al...e@example.com", MaskEmail("alicerose@example.com"))
	// Short usernames are fully masked.
	assert.Equal(t, "**@example.com", MaskEmail("ab@example.com"))
	// Not an email at all; fall back to generic masking.
	assert.Equal(t, "no...ng", MaskEmail("notanemailstring"))
}

func TestMaskInviteCode(t *testing.T) {
	assert.Equal(t, "", MaskInviteCode(""))
	assert.Equal(t, "**", MaskInviteCode("Ab"))
	assert.Equal(t, "Ab******", MaskInviteCode("AbCd2345"))
}
