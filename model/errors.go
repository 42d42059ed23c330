package model

import "errors"

var (
	// ErrAccountNotFound means the record is absent. Expected, never logged
	// as a failure.
	ErrAccountNotFound = errors.New("account not found")

	// ErrStoreUnavailable is returned after the per-call timeout and the
	// single bounded retry are both exhausted.
	ErrStoreUnavailable = errors.New("remote store unavailable")

	// ErrInvalidReferral is a self-referral attempt. No ledger write, no
	// reward.
	ErrInvalidReferral = errors.New("invalid referral")

	// ErrConcurrentUpdateLost means a conditional write lost to a concurrent
	// writer: a second referrer for the same user, or a second /withdraw
	// racing the first.
	ErrConcurrentUpdateLost = errors.New("concurrent update lost")
)
