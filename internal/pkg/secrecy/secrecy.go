package secrecy

// Sealer defines the interface for protecting secret material at rest.
type Sealer interface {
	// Seal returns ciphertext for the given plaintext and scope.
	Seal(plaintext []byte, scope Scope) (ciphertext []byte, err error)
	// Open returns plaintext for the given ciphertext and scope.
	Open(ciphertext []byte, scope Scope) (plaintext []byte, err error)
}

// KeyProvider provides raw AES keys.
// For AES-256-GCM, keys must be 32 bytes.
type KeyProvider interface {
	// Key returns the raw AES key to use for this scope.
	// Implementations may return per-owner keys, per-environment keys, etc.
	Key(scope Scope) ([]byte, error)
}

// Purpose identifies what kind of secret a ciphertext protects.
type Purpose string

const (
	// PurposeTOTPSecret scopes sealing to stored authenticator seeds.
	PurposeTOTPSecret Purpose = "totp_secret"
)

// Scope binds a ciphertext to its owning record.
// It is fed into AES-GCM as AAD, so a ciphertext copied onto another
// owner's row refuses to open.
type Scope struct {
	// OwnerID is the identifier of the user who owns the secret.
	OwnerID int64
	// Purpose is the sealing purpose.
	Purpose Purpose
}
