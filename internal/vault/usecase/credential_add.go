package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/authvault/authvault/internal/pkg/goerror"
	"github.com/authvault/authvault/internal/pkg/totp"
	"github.com/authvault/authvault/internal/vault/entity"
)

type AddCredentialInput struct {
	Name      string `validate:"required,max=100"`
	Issuer    string `validate:"max=100"`
	Secret    string `validate:"required,otpsecret"`
	Period    int    `validate:"omitempty,gt=0"`
	Digits    int    `validate:"omitempty,oneof=6 8"`
	Algorithm string `validate:"omitempty"`
}

type AddCredentialOutput struct {
	ID        int64
	Name      string
	Issuer    string
	Period    int
	Digits    int
	Algorithm totp.Algorithm
	CreatedAt time.Time
}

// AddCredential enrolls one credential for the authenticated owner. The
// secret is normalized, sealed, persisted, and the in-memory registry is
// updated so the next list or stream already carries a code for it.
func (s *Usecase) AddCredential(ctx context.Context, in AddCredentialInput) (*AddCredentialOutput, error) {
	ctx, span := s.startSpan(ctx, "AddCredential")
	defer span.End()

	// Labels are stored trimmed; a whitespace-only name fails required.
	in.Name = strings.TrimSpace(in.Name)
	in.Issuer = strings.TrimSpace(in.Issuer)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	ownerID, err := s.ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	params, err := s.normalizeParams(in.Secret, in.Period, in.Digits, in.Algorithm)
	if err != nil {
		return nil, err
	}

	if err := s.ensureLoaded(ctx, ownerID); err != nil {
		return nil, err
	}

	sealedSecret, err := s.seal(ctx, ownerID, params.secret)
	if err != nil {
		return nil, err
	}

	id, createdAt, err := s.repoDB.CreateCredential(ctx, entity.NewCredential{
		OwnerID:      ownerID,
		Name:         in.Name,
		Issuer:       in.Issuer,
		SecretSealed: sealedSecret,
		Period:       params.period,
		Digits:       params.digits,
		Algorithm:    params.algorithm,
	})
	if err != nil {
		return nil, mapStoreError(ctx, err, "failed to repo create credential", "owner_id", ownerID)
	}

	s.registry.Put(entity.Credential{
		ID:        id,
		OwnerID:   ownerID,
		Name:      in.Name,
		Issuer:    in.Issuer,
		Secret:    params.secret,
		Period:    params.period,
		Digits:    params.digits,
		Algorithm: params.algorithm,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}, s.clock.Now())

	return &AddCredentialOutput{
		ID:        id,
		Name:      in.Name,
		Issuer:    in.Issuer,
		Period:    params.period,
		Digits:    params.digits,
		Algorithm: params.algorithm,
		CreatedAt: createdAt,
	}, nil
}

type totpParams struct {
	secret    string
	period    int
	digits    int
	algorithm totp.Algorithm
}

// normalizeParams canonicalizes the secret and fills RFC defaults for
// anything the caller left zero.
func (s *Usecase) normalizeParams(secret string, period, digits int, algorithm string) (totpParams, error) {
	normalized, err := totp.Normalize(secret)
	if err != nil {
		return totpParams{}, goerror.NewInvalidInput(nil, "secret", "must be a valid Base32 string")
	}
	if _, err := totp.Decode(normalized); err != nil {
		return totpParams{}, goerror.NewInvalidInput(nil, "secret", "must decode to non-empty key material")
	}

	if period == 0 {
		period = totp.DefaultPeriod
	}
	if digits == 0 {
		digits = totp.DefaultDigits
	}

	algo := totp.DefaultAlgorithm
	if algorithm != "" {
		algo, err = totp.ParseAlgorithm(algorithm)
		if err != nil {
			return totpParams{}, goerror.NewInvalidInput(nil, "algorithm", "must be one of SHA1, SHA256, SHA512")
		}
	}

	return totpParams{secret: normalized, period: period, digits: digits, algorithm: algo}, nil
}
