package usecase

import (
	"context"

	"github.com/authvault/authvault/internal/pkg/goerror"
	"github.com/authvault/authvault/internal/vault/entity"
)

type ListCredentialsInput struct {
	Sort  string `validate:"omitempty,oneof=name issuer created_at"`
	Query string `validate:"omitempty,max=100"`
}

type ListCredentialsOutput struct {
	Credentials []entity.CredentialCode
}

// ListCredentials returns the owner's credentials with their current
// codes, sorted and optionally filtered by a case-insensitive substring
// match on name or issuer.
func (s *Usecase) ListCredentials(ctx context.Context, in ListCredentialsInput) (*ListCredentialsOutput, error) {
	ctx, span := s.startSpan(ctx, "ListCredentials")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	ownerID, err := s.ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.ensureLoaded(ctx, ownerID); err != nil {
		return nil, err
	}

	views := s.registry.List(ownerID, entity.SortKeyFromString(in.Sort), in.Query)

	return &ListCredentialsOutput{Credentials: views}, nil
}
