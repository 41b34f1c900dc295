package audit_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authvault/authvault/internal/pkg/instrument"
	"github.com/authvault/authvault/internal/vault/audit"
	"github.com/authvault/authvault/internal/vault/entity"
	"github.com/authvault/authvault/internal/vault/outbound/geoip"
)

type fakeStore struct {
	mu       sync.Mutex
	failures int
	rows     []entity.AccessLog
}

func (f *fakeStore) CreateAccessLog(_ context.Context, in entity.AccessLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failures > 0 {
		f.failures--
		return errors.New("db unavailable")
	}

	f.rows = append(f.rows, in)
	return nil
}

func (f *fakeStore) all() []entity.AccessLog {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]entity.AccessLog(nil), f.rows...)
}

type fakePublisher struct {
	mu   sync.Mutex
	logs []entity.AccessLog
}

func (f *fakePublisher) PublishCredentialAccessed(_ context.Context, log entity.AccessLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.logs = append(f.logs, log)
	return nil
}

func (f *fakePublisher) all() []entity.AccessLog {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]entity.AccessLog(nil), f.logs...)
}

type fakeLocator struct {
	loc *geoip.Location
	err error
}

func (f *fakeLocator) Lookup(context.Context, string) (*geoip.Location, error) {
	return f.loc, f.err
}

type fakeNumberID struct {
	mu   sync.Mutex
	next int64
}

func (f *fakeNumberID) Generate() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.next++
	return f.next
}

func TestRecorder_EnrichesAndPersists(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	pub := &fakePublisher{}
	rec := audit.NewRecorder(audit.Config{
		Store:     store,
		Publisher: pub,
		Locator:   &fakeLocator{loc: &geoip.Location{City: "Jakarta", CountryCode: "ID"}},
		UIDNumber: &fakeNumberID{},
		Ins:       instrument.NewNoop(),
	})

	at := time.Unix(1700000000, 0).UTC()
	rec.Record(context.Background(), audit.Event{
		CredentialID: 42,
		OwnerID:      7,
		AccessType:   entity.AccessTypeView,
		At:           at,
		RemoteAddr:   "203.0.113.45",
		UserAgent:    "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)",
		Metadata:     map[string]any{"correlation_id": "cid-123"},
	})

	require.NoError(t, rec.Close(context.Background()))

	rows := store.all()
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, int64(1), row.ID)
	assert.Equal(t, int64(42), row.CredentialID)
	assert.Equal(t, int64(7), row.OwnerID)
	assert.Equal(t, entity.AccessTypeView, row.AccessType)
	assert.Equal(t, at, row.CreatedAt)

	require.NotNil(t, row.IPAddress)
	assert.Equal(t, "203.0.113.0/24", *row.IPAddress)
	require.NotNil(t, row.DeviceName)
	assert.Equal(t, "iPhone", *row.DeviceName)
	require.NotNil(t, row.LocationData)
	assert.Equal(t, "Jakarta, ID", *row.LocationData)
	assert.Equal(t, "cid-123", row.Metadata.GetString("correlation_id"))

	published := pub.all()
	require.Len(t, published, 1)
	assert.Equal(t, int64(42), published[0].CredentialID)
}

func TestRecorder_LookupFailureLeavesLocationEmpty(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	rec := audit.NewRecorder(audit.Config{
		Store:     store,
		Publisher: &fakePublisher{},
		Locator:   &fakeLocator{err: geoip.ErrLookupFailed},
		UIDNumber: &fakeNumberID{},
		Ins:       instrument.NewNoop(),
	})

	rec.Record(context.Background(), audit.Event{
		CredentialID: 1,
		OwnerID:      1,
		AccessType:   entity.AccessTypeCopy,
		At:           time.Now(),
		RemoteAddr:   "198.51.100.7",
	})

	require.NoError(t, rec.Close(context.Background()))

	rows := store.all()
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].LocationData)
	assert.Nil(t, rows[0].UserAgent)
	assert.Nil(t, rows[0].DeviceName)
	require.NotNil(t, rows[0].IPAddress)
	assert.Equal(t, "198.51.100.0/24", *rows[0].IPAddress)
}

func TestRecorder_RecordAfterCloseIsDropped(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	rec := audit.NewRecorder(audit.Config{
		Store:     store,
		Publisher: &fakePublisher{},
		UIDNumber: &fakeNumberID{},
		Ins:       instrument.NewNoop(),
	})

	require.NoError(t, rec.Close(context.Background()))

	// Must not panic on the closed queue; the event is just dropped.
	rec.Record(context.Background(), audit.Event{
		CredentialID: 5,
		OwnerID:      2,
		AccessType:   entity.AccessTypeView,
		At:           time.Now(),
	})

	require.NoError(t, rec.Close(context.Background()))
	assert.Empty(t, store.all())
}

func TestRecorder_RetriesTransientStoreFailures(t *testing.T) {
	t.Parallel()

	store := &fakeStore{failures: 2}
	pub := &fakePublisher{}
	rec := audit.NewRecorder(audit.Config{
		Store:     store,
		Publisher: pub,
		UIDNumber: &fakeNumberID{},
		Ins:       instrument.NewNoop(),
	})

	rec.Record(context.Background(), audit.Event{
		CredentialID: 9,
		OwnerID:      3,
		AccessType:   entity.AccessTypeView,
		At:           time.Now(),
	})

	require.NoError(t, rec.Close(context.Background()))

	assert.Len(t, store.all(), 1)
	assert.Len(t, pub.all(), 1)
}

func TestRecorder_GivesUpAfterExhaustedRetries(t *testing.T) {
	t.Parallel()

	store := &fakeStore{failures: 10}
	pub := &fakePublisher{}
	rec := audit.NewRecorder(audit.Config{
		Store:     store,
		Publisher: pub,
		UIDNumber: &fakeNumberID{},
		Ins:       instrument.NewNoop(),
	})

	rec.Record(context.Background(), audit.Event{
		CredentialID: 9,
		OwnerID:      3,
		AccessType:   entity.AccessTypeView,
		At:           time.Now(),
	})

	require.NoError(t, rec.Close(context.Background()))

	assert.Empty(t, store.all())
	assert.Empty(t, pub.all())
}
