package usecase

import (
	"context"

	"github.com/authvault/authvault/internal/pkg/goerror"
)

type RemoveCredentialInput struct {
	ID int64 `validate:"required,gt=0"`
}

// RemoveCredential deletes one of the owner's credentials and drops it
// from the live registry so no further codes are produced for it.
func (s *Usecase) RemoveCredential(ctx context.Context, in RemoveCredentialInput) error {
	ctx, span := s.startSpan(ctx, "RemoveCredential")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	ownerID, err := s.ownerFromContext(ctx)
	if err != nil {
		return err
	}

	if err := s.repoDB.DeleteCredential(ctx, in.ID, ownerID); err != nil {
		return mapStoreError(ctx, err, "failed to repo delete credential",
			"credential_id", in.ID, "owner_id", ownerID)
	}

	s.registry.Remove(ownerID, in.ID)

	return nil
}
