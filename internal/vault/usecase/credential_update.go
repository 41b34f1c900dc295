package usecase

import (
	"context"
	"strings"

	"github.com/samber/lo"

	"github.com/authvault/authvault/internal/pkg/goerror"
	"github.com/authvault/authvault/internal/pkg/totp"
	"github.com/authvault/authvault/internal/vault/entity"
)

type UpdateCredentialInput struct {
	ID        int64   `validate:"required,gt=0"`
	Name      *string `validate:"omitempty,min=1,max=100"`
	Issuer    *string `validate:"omitempty,max=100"`
	Secret    *string `validate:"omitempty,otpsecret"`
	Period    *int    `validate:"omitempty,gt=0"`
	Digits    *int    `validate:"omitempty,oneof=6 8"`
	Algorithm *string `validate:"omitempty"`
}

// UpdateCredential applies a partial update to one of the owner's
// credentials and refreshes its registry entry so the new parameters
// take effect on the very next tick.
func (s *Usecase) UpdateCredential(ctx context.Context, in UpdateCredentialInput) error {
	ctx, span := s.startSpan(ctx, "UpdateCredential")
	defer span.End()

	// Labels are stored trimmed. omitempty would let a dereferenced ""
	// skip min=1, so blank names are rejected here.
	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		if trimmed == "" {
			return goerror.NewInvalidInput(nil, "name", "must not be blank")
		}
		in.Name = lo.ToPtr(trimmed)
	}
	if in.Issuer != nil {
		in.Issuer = lo.ToPtr(strings.TrimSpace(*in.Issuer))
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	ownerID, err := s.ownerFromContext(ctx)
	if err != nil {
		return err
	}

	patch := entity.PatchCredential{
		Name:   in.Name,
		Issuer: in.Issuer,
		Period: in.Period,
		Digits: in.Digits,
	}

	var plainSecret string
	if in.Secret != nil {
		normalized, err := totp.Normalize(*in.Secret)
		if err != nil {
			return goerror.NewInvalidInput(nil, "secret", "must be a valid Base32 string")
		}
		if _, err := totp.Decode(normalized); err != nil {
			return goerror.NewInvalidInput(nil, "secret", "must decode to non-empty key material")
		}

		sealedSecret, err := s.seal(ctx, ownerID, normalized)
		if err != nil {
			return err
		}

		plainSecret = normalized
		patch.SecretSealed = sealedSecret
	}

	if in.Algorithm != nil {
		algo, err := totp.ParseAlgorithm(*in.Algorithm)
		if err != nil {
			return goerror.NewInvalidInput(nil, "algorithm", "must be one of SHA1, SHA256, SHA512")
		}
		patch.Algorithm = &algo
	}

	if patch.IsEmpty() {
		return goerror.NewInvalidInput(nil, "body", "must change at least one field")
	}

	if err := s.ensureLoaded(ctx, ownerID); err != nil {
		return err
	}

	if err := s.repoDB.UpdateCredential(ctx, in.ID, ownerID, patch); err != nil {
		return mapStoreError(ctx, err, "failed to repo update credential",
			"credential_id", in.ID, "owner_id", ownerID)
	}

	s.refreshRegistryEntry(in.ID, ownerID, patch, plainSecret)

	return nil
}

// refreshRegistryEntry folds an applied patch into the cached credential.
// The row was already written; a missing cache entry just means the next
// hydration will pick the change up.
func (s *Usecase) refreshRegistryEntry(id, ownerID int64, patch entity.PatchCredential, plainSecret string) {
	cred, ok := s.registry.Credential(ownerID, id)
	if !ok {
		return
	}

	if patch.Name != nil {
		cred.Name = *patch.Name
	}
	if patch.Issuer != nil {
		cred.Issuer = *patch.Issuer
	}
	if patch.SecretSealed != nil {
		cred.Secret = plainSecret
	}
	if patch.Period != nil {
		cred.Period = *patch.Period
	}
	if patch.Digits != nil {
		cred.Digits = *patch.Digits
	}
	if patch.Algorithm != nil {
		cred.Algorithm = *patch.Algorithm
	}
	cred.UpdatedAt = s.clock.Now()

	s.registry.Put(cred, s.clock.Now())
}
