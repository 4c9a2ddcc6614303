package derive

import "errors"

var (
	// ErrInvalidPow reports a proof-of-work digest whose trailing-bit window
	// is not all zero.
	ErrInvalidPow = errors.New("derive: proof-of-work digest invalid")

	// ErrSecretSearchExhausted reports that FindValidSecret ran out of
	// attempts before hitting a PoW-valid secret.
	ErrSecretSearchExhausted = errors.New("derive: secret search exhausted")

	// ErrTargetAddressMismatch reports a bundle whose recorded target address
	// disagrees with the one derived from its own secret and notes.
	ErrTargetAddressMismatch = errors.New("derive: target address mismatch")
)
