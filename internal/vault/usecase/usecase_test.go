package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

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
	"github.com/authvault/authvault/internal/vault/usecase"
)

const testOwnerID int64 = 7

// fakeRepo is an in-memory stand-in for the postgres outbound.
type fakeRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]db.SealedCredential

	createErr error
	updateErr error
	deleteErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{nextID: 0, rows: map[int64]db.SealedCredential{}}
}

func (f *fakeRepo) CreateCredential(_ context.Context, in entity.NewCredential) (int64, time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return 0, time.Time{}, f.createErr
	}

	f.nextID++
	now := time.Unix(1700000000, 0).UTC()
	f.rows[f.nextID] = db.SealedCredential{
		ID:           f.nextID,
		OwnerID:      in.OwnerID,
		Name:         in.Name,
		Issuer:       in.Issuer,
		SecretSealed: in.SecretSealed,
		Period:       in.Period,
		Digits:       in.Digits,
		Algorithm:    in.Algorithm,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	return f.nextID, now, nil
}

func (f *fakeRepo) GetCredentialsByOwner(_ context.Context, ownerID int64) ([]db.SealedCredential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]db.SealedCredential, 0)
	for _, r := range f.rows {
		if r.OwnerID == ownerID {
			out = append(out, r)
		}
	}

	return out, nil
}

func (f *fakeRepo) GetCredential(_ context.Context, id, ownerID int64) (*db.SealedCredential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.rows[id]
	if !ok || r.OwnerID != ownerID {
		return nil, goerror.ErrNotFound
	}

	return &r, nil
}

func (f *fakeRepo) UpdateCredential(_ context.Context, id, ownerID int64, patch entity.PatchCredential) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updateErr != nil {
		return f.updateErr
	}

	r, ok := f.rows[id]
	if !ok || r.OwnerID != ownerID {
		return goerror.ErrNotFound
	}

	if patch.Name != nil {
		r.Name = *patch.Name
	}
	if patch.Issuer != nil {
		r.Issuer = *patch.Issuer
	}
	if patch.SecretSealed != nil {
		r.SecretSealed = patch.SecretSealed
	}
	if patch.Period != nil {
		r.Period = *patch.Period
	}
	if patch.Digits != nil {
		r.Digits = *patch.Digits
	}
	if patch.Algorithm != nil {
		r.Algorithm = *patch.Algorithm
	}
	f.rows[id] = r

	return nil
}

func (f *fakeRepo) DeleteCredential(_ context.Context, id, ownerID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteErr != nil {
		return f.deleteErr
	}

	r, ok := f.rows[id]
	if !ok || r.OwnerID != ownerID {
		return goerror.ErrNotFound
	}

	delete(f.rows, id)

	return nil
}

// fakeAudit collects recorded events synchronously.
type fakeAudit struct {
	mu     sync.Mutex
	events []audit.Event
}

func (f *fakeAudit) Record(_ context.Context, evt audit.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.events = append(f.events, evt)
}

func (f *fakeAudit) all() []audit.Event {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]audit.Event(nil), f.events...)
}

// fakeIdemp runs everything exactly once without a backing store.
type fakeIdemp struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func newFakeIdemp() *fakeIdemp { return &fakeIdemp{seen: map[string]struct{}{}} }

func (f *fakeIdemp) Acquire(context.Context, string, time.Duration) (idempotency.State, error) {
	return idempotency.StateNone, nil
}

func (f *fakeIdemp) MarkCompleted(context.Context, string, time.Duration) error { return nil }
func (f *fakeIdemp) MarkFailed(context.Context, string, time.Duration) error   { return nil }

func (f *fakeIdemp) Exec(ctx context.Context, key string, fn func(context.Context) error, _ ...idempotency.Option) error {
	f.mu.Lock()
	if _, dup := f.seen[key]; dup {
		f.mu.Unlock()
		return idempotency.ErrAlreadyCompleted
	}
	f.seen[key] = struct{}{}
	f.mu.Unlock()

	return fn(ctx)
}

type fixedClock struct{ at time.Time }

func (f fixedClock) Now() time.Time { return f.at }

type fixture struct {
	uc    *usecase.Usecase
	repo  *fakeRepo
	reg   *registry.Registry
	audit *fakeAudit
	clock fixedClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	sealer := secrecy.NewAESGCMSealer(secrecy.StaticKeyProvider{KeyBytes: make([]byte, 32)})

	repo := newFakeRepo()
	reg := registry.New()
	aud := &fakeAudit{}
	clk := fixedClock{at: time.Unix(1700000000, 0).UTC()}

	uc := usecase.New(usecase.Dependency{
		RepoDB:      repo,
		Registry:    reg,
		Sealer:      sealer,
		Audit:       aud,
		Idempotency: newFakeIdemp(),
		Validator:   v,
		Clock:       clk,
		Instrument:  instrument.NewNoop(),
	})

	return &fixture{uc: uc, repo: repo, reg: reg, audit: aud, clock: clk}
}

func authCtx(ownerID int64) context.Context {
	return jwt.SetAuth(context.Background(), jwt.Claims{UserID: ownerID})
}
