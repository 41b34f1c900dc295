package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/authvault/authvault/internal/pkg/clock"
	"github.com/authvault/authvault/internal/pkg/goerror"
	"github.com/authvault/authvault/internal/pkg/idempotency"
	"github.com/authvault/authvault/internal/pkg/instrument"
	"github.com/authvault/authvault/internal/pkg/jwt"
	"github.com/authvault/authvault/internal/pkg/secrecy"
	"github.com/authvault/authvault/internal/pkg/validator"
	"github.com/authvault/authvault/internal/vault/audit"
	"github.com/authvault/authvault/internal/vault/entity"
	"github.com/authvault/authvault/internal/vault/outbound/db"
	"github.com/authvault/authvault/internal/vault/registry"
)

type repoDB interface {
	CreateCredential(ctx context.Context, in entity.NewCredential) (int64, time.Time, error)
	GetCredentialsByOwner(ctx context.Context, ownerID int64) ([]db.SealedCredential, error)
	GetCredential(ctx context.Context, id, ownerID int64) (*db.SealedCredential, error)
	UpdateCredential(ctx context.Context, id, ownerID int64, patch entity.PatchCredential) error
	DeleteCredential(ctx context.Context, id, ownerID int64) error
}

// auditRecorder is the fire-and-forget sink for access events.
type auditRecorder interface {
	Record(ctx context.Context, evt audit.Event)
}

type Usecase struct {
	repoDB    repoDB
	registry  *registry.Registry
	sealer    secrecy.Sealer
	audit     auditRecorder
	idemp     idempotency.Idempotency
	validator validator.Validator
	clock     clock.Clocker
	ins       instrument.Instrumentation
}

type Dependency struct {
	RepoDB      repoDB
	Registry    *registry.Registry
	Sealer      secrecy.Sealer
	Audit       auditRecorder
	Idempotency idempotency.Idempotency
	Validator   validator.Validator
	Clock       clock.Clocker
	Instrument  instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:    dep.RepoDB,
		registry:  dep.Registry,
		sealer:    dep.Sealer,
		audit:     dep.Audit,
		idemp:     dep.Idempotency,
		validator: dep.Validator,
		clock:     dep.Clock,
		ins:       dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("vault.usecase").Start(ctx, name)
}

func (s *Usecase) ownerFromContext(ctx context.Context) (int64, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return 0, goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}

	return clm.UserID, nil
}

// ensureLoaded lazily hydrates an owner's credentials into the registry
// on first touch. A secret that refuses to open is kept with an empty
// plaintext so the entry surfaces as broken instead of vanishing.
func (s *Usecase) ensureLoaded(ctx context.Context, ownerID int64) error {
	if s.registry.IsLoaded(ownerID) {
		return nil
	}

	sealed, err := s.repoDB.GetCredentialsByOwner(ctx, ownerID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get credentials by owner", "owner_id", ownerID, "error", err)
		return goerror.NewServer(err)
	}

	creds := make([]entity.Credential, 0, len(sealed))
	for i := range sealed {
		creds = append(creds, s.open(ctx, sealed[i]))
	}

	s.registry.Hydrate(ownerID, creds, s.clock.Now())

	return nil
}

// open turns a stored row into the in-memory credential. Decryption
// failure yields an empty secret, never an error.
func (s *Usecase) open(ctx context.Context, row db.SealedCredential) entity.Credential {
	cred := entity.Credential{
		ID:        row.ID,
		OwnerID:   row.OwnerID,
		Name:      row.Name,
		Issuer:    row.Issuer,
		Period:    row.Period,
		Digits:    row.Digits,
		Algorithm: row.Algorithm,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}

	plaintext, err := s.sealer.Open(row.SecretSealed, secrecy.Scope{
		OwnerID: row.OwnerID,
		Purpose: secrecy.PurposeTOTPSecret,
	})
	if err != nil {
		slog.WarnContext(ctx, "stored secret failed to open",
			"credential_id", row.ID, "owner_id", row.OwnerID, "error", err)
		return cred
	}

	cred.Secret = string(plaintext)

	return cred
}

func (s *Usecase) seal(ctx context.Context, ownerID int64, secret string) ([]byte, error) {
	sealedSecret, err := s.sealer.Seal([]byte(secret), secrecy.Scope{
		OwnerID: ownerID,
		Purpose: secrecy.PurposeTOTPSecret,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to seal secret", "owner_id", ownerID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return sealedSecret, nil
}

func mapStoreError(ctx context.Context, err error, msg string, args ...any) error {
	if errors.Is(err, goerror.ErrNotFound) {
		return goerror.NewBusiness("credential not found", goerror.CodeNotFound)
	}
	if errors.Is(err, goerror.ErrConflict) {
		return goerror.NewBusiness("credential already exists", goerror.CodeConflict)
	}

	slog.ErrorContext(ctx, msg, append(args, "error", err)...)

	return goerror.NewServer(err)
}
