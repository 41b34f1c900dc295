package vault

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/authvault/authvault/internal/pkg/clock"
	"github.com/authvault/authvault/internal/pkg/config"
	"github.com/authvault/authvault/internal/pkg/goroutine"
	"github.com/authvault/authvault/internal/pkg/idempotency"
	"github.com/authvault/authvault/internal/pkg/instrument"
	"github.com/authvault/authvault/internal/pkg/messaging"
	"github.com/authvault/authvault/internal/pkg/router"
	"github.com/authvault/authvault/internal/pkg/secrecy"
	"github.com/authvault/authvault/internal/pkg/uid"
	"github.com/authvault/authvault/internal/pkg/validator"
	"github.com/authvault/authvault/internal/vault/audit"
	"github.com/authvault/authvault/internal/vault/inbound"
	"github.com/authvault/authvault/internal/vault/outbound/db"
	"github.com/authvault/authvault/internal/vault/outbound/geoip"
	"github.com/authvault/authvault/internal/vault/outbound/mq"
	"github.com/authvault/authvault/internal/vault/registry"
	"github.com/authvault/authvault/internal/vault/usecase"
)

type Dependency struct {
	Ctx         context.Context
	DBConn      *pgxpool.Pool              `validate:"required"`
	Router      *router.Router             `validate:"required"`
	Idempotency idempotency.Idempotency    `validate:"required"`
	Messaging   messaging.Messaging        `validate:"required"`
	Sealer      secrecy.Sealer             `validate:"required"`
	Config      config.Config              `validate:"required"`
	Instrument  instrument.Instrumentation `validate:"required"`
	UID         uid.NumberID               `validate:"required"`
	UUID        uid.StringID               `validate:"required"`
	Clock       clock.Clocker              `validate:"required"`
	Goroutine   *goroutine.Manager         `validate:"required"`
	Validator   validator.Validator        `validate:"required"`
}

// Module owns the background pieces of the vault: the registry ticker
// and the audit worker. Close stops both.
type Module struct {
	scheduler *registry.Scheduler
	recorder  *audit.Recorder
}

func New(dep Dependency) (*Module, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	dbVault := db.NewDB(dep.DBConn, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)

	locator := geoip.NewClient(
		dep.Config.GetString("vault.geoip.endpoint"),
		dep.Config.GetSecond("vault.geoip.timeout"),
		dep.Instrument,
	)

	recorder := audit.NewRecorder(audit.Config{
		Store:         dbVault,
		Publisher:     repoMsg,
		Locator:       locator,
		UIDNumber:     dep.UID,
		Ins:           dep.Instrument,
		QueueSize:     dep.Config.GetInt("vault.audit.queue_size"),
		LookupTimeout: dep.Config.GetSecond("vault.geoip.timeout"),
	})

	reg := registry.New()
	scheduler := registry.NewScheduler(reg, dep.Clock, time.Second)
	scheduler.Start(context.Background())

	uc := usecase.New(usecase.Dependency{
		RepoDB:      dbVault,
		Registry:    reg,
		Sealer:      dep.Sealer,
		Audit:       recorder,
		Idempotency: dep.Idempotency,
		Validator:   dep.Validator,
		Clock:       dep.Clock,
		Instrument:  dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)
	if dep.Ctx != nil {
		inbound.RegisterMQConsumer(dep.Ctx, dep.Config, dep.Goroutine, dep.Messaging, dep.UUID, uc, dep.Instrument)
	}

	return &Module{scheduler: scheduler, recorder: recorder}, nil
}

// Close stops the ticker and drains the audit queue.
func (m *Module) Close(ctx context.Context) error {
	m.scheduler.Stop()

	return m.recorder.Close(ctx)
}
