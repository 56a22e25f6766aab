package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPasscodeState(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	p := &Passcode{ExpiresAt: now.Add(time.Minute)}
	assert.Equal(t, PasscodeValid, p.State(now))
	assert.Equal(t, PasscodeExpired, p.State(now.Add(time.Minute)))

	p.Consumed = true
	assert.Equal(t, PasscodeConsumed, p.State(now))
	assert.Equal(t, PasscodeConsumed, p.State(now.Add(time.Hour)))
}

func TestPurposeValid(t *testing.T) {
	assert.True(t, PurposeEmailVerification.Valid())
	assert.True(t, PurposePasswordReset.Valid())
	assert.False(t, PasscodePurpose("login").Valid())
}
