package totp

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // HMAC-SHA1 is the RFC 6238 baseline, not used for collision resistance
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"hash"
	"time"
)

// Algorithm selects the HMAC hash used for code generation.
type Algorithm string

const (
	AlgorithmSHA1   Algorithm = "SHA1"
	AlgorithmSHA256 Algorithm = "SHA256"
	AlgorithmSHA512 Algorithm = "SHA512"
)

// RFC 6238 defaults, applied by ParseURI when a field is absent.
const (
	DefaultAlgorithm = AlgorithmSHA1
	DefaultDigits    = 6
	DefaultPeriod    = 30
)

// ParseAlgorithm maps a case-insensitive algorithm name to an Algorithm.
// The zero value ("") resolves to the RFC default, SHA1.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch s {
	case "", "SHA1", "sha1":
		return AlgorithmSHA1, nil
	case "SHA256", "sha256":
		return AlgorithmSHA256, nil
	case "SHA512", "sha512":
		return AlgorithmSHA512, nil
	default:
		return "", fmt.Errorf("%w: unknown algorithm %q", ErrInvalidParameters, s)
	}
}

func (a Algorithm) hasher() (func() hash.Hash, error) {
	switch a {
	case AlgorithmSHA1:
		return sha1.New, nil
	case AlgorithmSHA256:
		return sha256.New, nil
	case AlgorithmSHA512:
		return sha512.New, nil
	default:
		return nil, fmt.Errorf("%w: unknown algorithm %q", ErrInvalidParameters, string(a))
	}
}

// Generate computes the TOTP code for key at the given time.
//
// The counter is floor(unixSeconds/period) encoded as an 8-byte
// big-endian integer, MACed with the selected hash, dynamically
// truncated per RFC 4226 §5.3 to a 31-bit integer, and reduced
// modulo 10^digits with left zero padding.
//
// digits must be 6 or 8 and period must be positive; invalid values
// fail with ErrInvalidParameters rather than being clamped. Given the
// same inputs the output is always identical.
func Generate(key []byte, algo Algorithm, digits, period int, at time.Time) (string, error) {
	if digits != 6 && digits != 8 {
		return "", fmt.Errorf("%w: digits must be 6 or 8, got %d", ErrInvalidParameters, digits)
	}
	if period <= 0 {
		return "", fmt.Errorf("%w: period must be positive, got %d", ErrInvalidParameters, period)
	}

	newHash, err := algo.hasher()
	if err != nil {
		return "", err
	}

	counter := uint64(at.Unix() / int64(period))

	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter)

	mac := hmac.New(newHash, key)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	truncated := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	mod := uint32(1000000)
	if digits == 8 {
		mod = 100000000
	}

	return fmt.Sprintf("%0*d", digits, truncated%mod), nil
}

// Remaining reports how many seconds of the current window are left at
// the given time. The result is always in [1, period]: it is `period`
// right after a rollover and 1 on the last second before the next one.
func Remaining(period int, at time.Time) int {
	if period <= 0 {
		return 0
	}
	return period - int(at.Unix()%int64(period))
}
