package entity

import (
	"time"

	"github.com/authvault/authvault/internal/pkg/totp"
)

// Credential is a single enrolled TOTP secret plus its display metadata
// and generation parameters. Secret holds the normalized Base32 form in
// memory; the store only ever sees the sealed ciphertext.
type Credential struct {
	ID        int64
	OwnerID   int64
	Name      string
	Issuer    string
	Secret    string
	Period    int
	Digits    int
	Algorithm totp.Algorithm
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCredential is the payload for inserting a credential. The store
// assigns ID and CreatedAt; SecretSealed is the AES-GCM ciphertext.
type NewCredential struct {
	OwnerID      int64
	Name         string
	Issuer       string
	SecretSealed []byte
	Period       int
	Digits       int
	Algorithm    totp.Algorithm
}

// PatchCredential carries the changed fields of a partial update.
// Nil means "leave as is".
type PatchCredential struct {
	Name         *string
	Issuer       *string
	SecretSealed []byte
	Period       *int
	Digits       *int
	Algorithm    *totp.Algorithm
}

// IsEmpty reports whether the patch changes nothing.
func (p PatchCredential) IsEmpty() bool {
	return p.Name == nil && p.Issuer == nil && p.SecretSealed == nil &&
		p.Period == nil && p.Digits == nil && p.Algorithm == nil
}

// CredentialCode is the presentation of one credential at a tick: its
// metadata, the current code, and the seconds left in the window. Err is
// set instead of Code when the stored secret cannot produce a code.
type CredentialCode struct {
	ID        int64
	Name      string
	Issuer    string
	Period    int
	Digits    int
	Algorithm totp.Algorithm
	CreatedAt time.Time

	Code      string
	Remaining int
	Err       bool
}
