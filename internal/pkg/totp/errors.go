package totp

import "errors"

var (
	// ErrInvalidSecret indicates the secret is not valid Base32 (RFC 4648
	// alphabet A-Z2-7) or is empty after stripping whitespace.
	ErrInvalidSecret = errors.New("totp: invalid base32 secret")

	// ErrInvalidParameters indicates an unsupported digit count, period, or
	// hash algorithm. Parameters are never clamped to a valid value.
	ErrInvalidParameters = errors.New("totp: invalid generation parameters")

	// ErrInvalidURI indicates a provisioning URI that is not an otpauth://
	// TOTP key URI.
	ErrInvalidURI = errors.New("totp: invalid otpauth uri")
)
