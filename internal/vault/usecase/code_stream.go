package usecase

import (
	"context"

	"github.com/authvault/authvault/internal/vault/registry"
)

// StreamCodes hydrates the owner's credentials and returns a channel of
// per-tick snapshots. The channel closes when ctx is done.
func (s *Usecase) StreamCodes(ctx context.Context) (<-chan registry.Snapshot, error) {
	ctx, span := s.startSpan(ctx, "StreamCodes")
	defer span.End()

	ownerID, err := s.ownerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.ensureLoaded(ctx, ownerID); err != nil {
		return nil, err
	}

	return s.registry.Subscribe(ctx.Done(), ownerID), nil
}
