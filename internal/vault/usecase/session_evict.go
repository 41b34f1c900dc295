package usecase

import (
	"context"

	"github.com/authvault/authvault/internal/pkg/goerror"
)

type ConsumeUserLogoutInput struct {
	UserID int64 `validate:"required,gt=0"`
}

// ConsumeUserLogout drops a signed-out owner's credentials from the live
// registry. The stored rows are untouched; the next sign-in hydrates
// them again.
func (s *Usecase) ConsumeUserLogout(ctx context.Context, in ConsumeUserLogoutInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeUserLogout")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	s.registry.Evict(in.UserID)

	return nil
}
