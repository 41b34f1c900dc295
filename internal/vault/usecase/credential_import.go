package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/authvault/authvault/internal/pkg/goerror"
	"github.com/authvault/authvault/internal/pkg/idempotency"
	"github.com/authvault/authvault/internal/pkg/totp"
)

type ImportCredentialInput struct {
	URI string `validate:"required,max=2048"`
}

// ImportCredential enrolls a credential from a scanned otpauth:// URI.
// The same URI submitted twice in quick succession (a double QR scan)
// is collapsed into a single enrollment.
func (s *Usecase) ImportCredential(ctx context.Context, in ImportCredentialInput) (*AddCredentialOutput, error) {
	ctx, span := s.startSpan(ctx, "ImportCredential")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	ownerID, err := s.ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	prov, err := totp.ParseURI(in.URI)
	if err != nil {
		return nil, goerror.NewInvalidInput(nil, "uri", "must be a valid otpauth:// TOTP URI")
	}

	name := prov.AccountName
	if name == "" {
		name = prov.Issuer
	}
	if name == "" {
		return nil, goerror.NewInvalidInput(nil, "uri", "must carry an account name or issuer")
	}

	var out *AddCredentialOutput
	sum := sha256.Sum256([]byte(in.URI))
	key := fmt.Sprintf("vault:import:%d:%s", ownerID, hex.EncodeToString(sum[:]))

	err = s.idemp.Exec(ctx, key, func(ctx context.Context) error {
		out, err = s.AddCredential(ctx, AddCredentialInput{
			Name:      name,
			Issuer:    prov.Issuer,
			Secret:    prov.Secret,
			Period:    prov.Period,
			Digits:    prov.Digits,
			Algorithm: string(prov.Algorithm),
		})
		return err
	}, idempotency.WithLockDuration(30*time.Second), idempotency.WithStateTTL(time.Minute))
	if err != nil {
		if errors.Is(err, idempotency.ErrAlreadyInProgress) || errors.Is(err, idempotency.ErrAlreadyCompleted) {
			return nil, goerror.NewBusiness("this uri was just imported", goerror.CodeConflict)
		}
		if errors.Is(err, idempotency.ErrAlreadyFailed) {
			return nil, goerror.NewBusiness("a recent import of this uri failed, try again shortly", goerror.CodeConflict)
		}
		return nil, err
	}

	return out, nil
}
