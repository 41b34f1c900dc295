package usecase

import (
	"context"

	"github.com/authvault/authvault/internal/pkg/goerror"
	"github.com/authvault/authvault/internal/pkg/instrument"
	"github.com/authvault/authvault/internal/vault/audit"
	"github.com/authvault/authvault/internal/vault/entity"
)

type AccessCodeInput struct {
	ID         int64 `validate:"required,gt=0"`
	RemoteAddr string
	UserAgent  string
}

type AccessCodeOutput struct {
	Code entity.CredentialCode
}

// ViewCode returns the current code for one credential and records a
// view access.
func (s *Usecase) ViewCode(ctx context.Context, in AccessCodeInput) (*AccessCodeOutput, error) {
	ctx, span := s.startSpan(ctx, "ViewCode")
	defer span.End()

	return s.accessCode(ctx, in, entity.AccessTypeView)
}

// CopyCode returns the current code for clipboard use and records a
// copy access. The server treats view and copy identically apart from
// the audit classification.
func (s *Usecase) CopyCode(ctx context.Context, in AccessCodeInput) (*AccessCodeOutput, error) {
	ctx, span := s.startSpan(ctx, "CopyCode")
	defer span.End()

	return s.accessCode(ctx, in, entity.AccessTypeCopy)
}

func (s *Usecase) accessCode(ctx context.Context, in AccessCodeInput, at entity.AccessType) (*AccessCodeOutput, error) {
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

	view, ok := s.registry.Get(ownerID, in.ID)
	if !ok {
		return nil, goerror.NewBusiness("credential not found", goerror.CodeNotFound)
	}
	if view.Err {
		return nil, goerror.NewBusiness("credential cannot produce codes", goerror.CodeConflict)
	}

	// The worker runs detached from the request context, so the
	// correlation id travels in the event itself.
	var meta map[string]any
	if cid := instrument.GetCorrelationID(ctx); cid != "" {
		meta = map[string]any{"correlation_id": cid}
	}

	s.audit.Record(ctx, audit.Event{
		CredentialID: in.ID,
		OwnerID:      ownerID,
		AccessType:   at,
		At:           s.clock.Now(),
		RemoteAddr:   in.RemoteAddr,
		UserAgent:    in.UserAgent,
		Metadata:     meta,
	})

	return &AccessCodeOutput{Code: view}, nil
}
