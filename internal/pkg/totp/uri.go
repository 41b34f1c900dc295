package totp

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pquerna/otp"
)

// Provision is the decoded content of an otpauth:// key URI, the
// payload a QR scanner hands to the import flow.
type Provision struct {
	Issuer      string
	AccountName string
	Secret      string
	Algorithm   Algorithm
	Digits      int
	Period      int
}

// ParseURI decodes an otpauth:// TOTP key URI.
//
// Absent parameters take the documented defaults (SHA1, 6 digits, 30
// seconds). Anything that does not start with otpauth:// is rejected,
// as are hotp URIs and URIs whose secret fails Base32 validation.
func ParseURI(raw string) (*Provision, error) {
	if !strings.HasPrefix(raw, "otpauth://") {
		return nil, fmt.Errorf("%w: missing otpauth:// scheme", ErrInvalidURI)
	}

	key, err := otp.NewKeyFromURL(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidURI, err.Error())
	}

	if key.Type() != "totp" {
		return nil, fmt.Errorf("%w: unsupported type %q", ErrInvalidURI, key.Type())
	}

	secret, err := Normalize(key.Secret())
	if err != nil {
		return nil, err
	}

	algo, err := ParseAlgorithm(key.Algorithm().String())
	if err != nil {
		return nil, err
	}

	digits := key.Digits().Length()
	if digits == 0 {
		digits = DefaultDigits
	}

	period := int(key.Period())
	if period == 0 {
		period = DefaultPeriod
	}

	return &Provision{
		Issuer:      key.Issuer(),
		AccountName: key.AccountName(),
		Secret:      secret,
		Algorithm:   algo,
		Digits:      digits,
		Period:      period,
	}, nil
}

// BuildURI renders a Provision back into the canonical key URI format,
// used when exporting a credential for enrollment elsewhere.
// https://github.com/google/google-authenticator/wiki/Key-Uri-Format
func BuildURI(p Provision) string {
	label := url.PathEscape(p.AccountName)
	if p.Issuer != "" {
		label = url.PathEscape(p.Issuer) + ":" + label
	}

	query := url.Values{}
	query.Set("secret", p.Secret)
	if p.Issuer != "" {
		query.Set("issuer", p.Issuer)
	}
	query.Set("algorithm", string(p.Algorithm))
	query.Set("digits", strconv.Itoa(p.Digits))
	query.Set("period", strconv.Itoa(p.Period))

	return "otpauth://totp/" + label + "?" + query.Encode()
}
