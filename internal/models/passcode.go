package models

import "time"

// PasscodePurpose tells why a passcode was issued. Codes never cross purposes.
type PasscodePurpose string

const (
	PurposeEmailVerification PasscodePurpose = "email_verification"
	PurposePasswordReset     PasscodePurpose = "password_reset"
)

func (p PasscodePurpose) Valid() bool {
	return p == PurposeEmailVerification || p == PurposePasswordReset
}

// Passcode is one issued one-time code. Each issue is a new row; older rows for
// the same (email, purpose) are marked consumed when a new one is stored.
type Passcode struct {
	ID        int64           `json:"id"`
	Email     string          `json:"email"`
	Code      string          `json:"-"`
	Purpose   PasscodePurpose `json:"purpose"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
	Consumed  bool            `json:"consumed"`
	Attempts  int             `json:"attempts"`
}

type PasscodeState string

const (
	PasscodeValid    PasscodeState = "valid"
	PasscodeConsumed PasscodeState = "consumed"
	PasscodeExpired  PasscodeState = "expired"
)

// State reports the lifecycle state at now. Consumed wins over expired.
func (p *Passcode) State(now time.Time) PasscodeState {
	switch {
	case p.Consumed:
		return PasscodeConsumed
	case !now.Before(p.ExpiresAt):
		return PasscodeExpired
	default:
		return PasscodeValid
	}
}
