package model

// EligibilityState tags the outcome of a withdrawal eligibility check.
type EligibilityState int

const (
	Eligible EligibilityState = iota
	// WithdrawalPending: a prior request is still unresolved.
	WithdrawalPendingState
	// NeedsReferrals: first withdrawal and the referral gate is not met.
	NeedsReferrals
	// NeedsBalance: balance below the minimum.
	NeedsBalance
)

// EligibilityResult is derived fresh on every check, never persisted.
type EligibilityResult struct {
	State EligibilityState

	// MissingReferrals is set only for NeedsReferrals.
	MissingReferrals int
	// MissingBalance is set only for NeedsBalance.
	MissingBalance float64
}
