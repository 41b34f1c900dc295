package totp

import "strings"

const base32Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

// Normalize returns the canonical form of a user-supplied secret:
// whitespace stripped, upper-cased, `=` padding removed. This is the
// form stored and the form fed to Decode. It fails with ErrInvalidSecret
// when the result is empty or contains characters outside A-Z2-7.
func Normalize(secret string) (string, error) {
	var b strings.Builder
	b.Grow(len(secret))

	for _, r := range secret {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			continue
		case r == '=':
			continue
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		default:
			b.WriteRune(r)
		}
	}

	out := b.String()
	if out == "" {
		return "", ErrInvalidSecret
	}

	for i := 0; i < len(out); i++ {
		if !validBase32Char(out[i]) {
			return "", ErrInvalidSecret
		}
	}

	return out, nil
}

// Decode converts a Base32 secret into its raw key bytes.
//
// Input is normalized first (case-insensitive, whitespace ignored,
// padding optional). Five-bit groups are packed into bytes left to
// right; a trailing group shorter than 8 bits is discarded, matching
// how authenticator apps treat unpadded secrets of any length.
func Decode(secret string) ([]byte, error) {
	normalized, err := Normalize(secret)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(normalized)*5/8)

	var buffer uint16
	var bits uint8

	for i := 0; i < len(normalized); i++ {
		val := base32Value(normalized[i])

		buffer = buffer<<5 | uint16(val)
		bits += 5

		if bits >= 8 {
			bits -= 8
			out = append(out, byte(buffer>>bits))
		}
	}

	return out, nil
}

func validBase32Char(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= '2' && c <= '7')
}

func base32Value(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c - 'A'
	}
	return c - '2' + 26
}
