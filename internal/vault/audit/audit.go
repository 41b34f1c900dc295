// Package audit records code accesses off the request path. Handlers
// hand a small Event to the recorder and return immediately; a single
// worker enriches the event, persists it, and announces it on the
// message broker.
package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/sethvargo/go-retry"

	"github.com/authvault/authvault/internal/pkg/instrument"
	"github.com/authvault/authvault/internal/pkg/uid"
	"github.com/authvault/authvault/internal/pkg/useragent"
	"github.com/authvault/authvault/internal/pkg/valueobject"
	"github.com/authvault/authvault/internal/vault/entity"
	"github.com/authvault/authvault/internal/vault/outbound/geoip"
)

const (
	defaultQueueSize     = 256
	defaultLookupTimeout = 2 * time.Second
)

// Store persists audit rows.
type Store interface {
	CreateAccessLog(ctx context.Context, in entity.AccessLog) error
}

// Publisher announces a persisted access to interested consumers.
type Publisher interface {
	PublishCredentialAccessed(ctx context.Context, log entity.AccessLog) error
}

// Locator resolves an address to a coarse location hint.
type Locator interface {
	Lookup(ctx context.Context, ip string) (*geoip.Location, error)
}

// Event is the raw material captured on the request path. Everything
// derived from it (masking, device labeling, geo lookup) happens on the
// worker.
type Event struct {
	CredentialID int64
	OwnerID      int64
	AccessType   entity.AccessType
	At           time.Time
	RemoteAddr   string
	UserAgent    string
	Metadata     map[string]any
}

// Config wires a Recorder.
type Config struct {
	Store         Store
	Publisher     Publisher
	Locator       Locator
	UIDNumber     uid.NumberID
	Ins           instrument.Instrumentation
	QueueSize     int
	LookupTimeout time.Duration
}

// Recorder accepts events without blocking and processes them on one
// background worker. Ordering of rows matches the order of Record calls.
type Recorder struct {
	store         Store
	publisher     Publisher
	locator       Locator
	uidNumber     uid.NumberID
	ins           instrument.Instrumentation
	lookupTimeout time.Duration

	mu     sync.Mutex
	closed bool

	queue chan Event
	done  chan struct{}
}

// NewRecorder builds a Recorder and starts its worker.
func NewRecorder(cfg Config) *Recorder {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.LookupTimeout <= 0 {
		cfg.LookupTimeout = defaultLookupTimeout
	}

	r := &Recorder{
		store:         cfg.Store,
		publisher:     cfg.Publisher,
		locator:       cfg.Locator,
		uidNumber:     cfg.UIDNumber,
		ins:           cfg.Ins,
		lookupTimeout: cfg.LookupTimeout,
		queue:         make(chan Event, cfg.QueueSize),
		done:          make(chan struct{}),
	}

	go r.run()

	return r
}

// Record enqueues one event. It never blocks; when the queue is full or
// the recorder is already closed the event is dropped with a warning
// rather than stalling a code request.
func (r *Recorder) Record(ctx context.Context, evt Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		slog.WarnContext(ctx, "audit recorder closed, dropping access event",
			"credential_id", evt.CredentialID,
			"owner_id", evt.OwnerID,
			"access_type", evt.AccessType.String())
		return
	}

	select {
	case r.queue <- evt:
	default:
		slog.WarnContext(ctx, "audit queue full, dropping access event",
			"credential_id", evt.CredentialID,
			"owner_id", evt.OwnerID,
			"access_type", evt.AccessType.String())
	}
}

// Close stops accepting events and drains the queue. It returns when the
// worker finishes or ctx expires. Safe to call more than once.
func (r *Recorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recorder) run() {
	defer close(r.done)

	for evt := range r.queue {
		r.process(context.Background(), evt)
	}
}

func (r *Recorder) process(ctx context.Context, evt Event) {
	ctx, span := r.ins.Tracer("vault.audit").Start(ctx, "process")
	defer span.End()

	log := r.enrich(ctx, evt)

	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(200*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := r.store.CreateAccessLog(ctx, log); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		slog.ErrorContext(ctx, "failed to persist access log",
			"error", err,
			"credential_id", log.CredentialID,
			"owner_id", log.OwnerID)
		return
	}

	if err := r.publisher.PublishCredentialAccessed(ctx, log); err != nil {
		slog.WarnContext(ctx, "failed to publish access event",
			"error", err,
			"credential_id", log.CredentialID)
	}
}

func (r *Recorder) enrich(ctx context.Context, evt Event) entity.AccessLog {
	log := entity.AccessLog{
		ID:           r.uidNumber.Generate(),
		CredentialID: evt.CredentialID,
		OwnerID:      evt.OwnerID,
		AccessType:   evt.AccessType,
		CreatedAt:    evt.At,
		Metadata:     valueobject.JSONMap(evt.Metadata),
	}

	if evt.UserAgent != "" {
		log.UserAgent = lo.ToPtr(evt.UserAgent)
		log.DeviceName = lo.ToPtr(useragent.Describe(evt.UserAgent))
	}

	if masked := geoip.MaskIP(evt.RemoteAddr); masked != "" {
		log.IPAddress = lo.ToPtr(masked)
	}

	if r.locator != nil && evt.RemoteAddr != "" {
		lookupCtx, cancel := context.WithTimeout(ctx, r.lookupTimeout)
		defer cancel()

		if loc, err := r.locator.Lookup(lookupCtx, evt.RemoteAddr); err == nil {
			if hint := loc.Hint(); hint != "" {
				log.LocationData = lo.ToPtr(hint)
			}
		}
	}

	return log
}
