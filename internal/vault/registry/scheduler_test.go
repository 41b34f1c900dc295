package registry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authvault/authvault/internal/pkg/totp"
	"github.com/authvault/authvault/internal/vault/entity"
	"github.com/authvault/authvault/internal/vault/registry"
)

type fakeClock struct{ at time.Time }

func (f *fakeClock) Now() time.Time { return f.at }

func TestScheduler_TicksAndStops(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	clk := &fakeClock{at: time.Unix(1700000000, 0)}

	reg.Hydrate(ownerID, []entity.Credential{
		cred(1, "One", "A", "JBSWY3DPEHPK3PXP", 30, 6, totp.AlgorithmSHA1),
	}, clk.at)

	done := make(chan struct{})
	defer close(done)
	stream := reg.Subscribe(done, ownerID)

	sched := registry.NewScheduler(reg, clk, 10*time.Millisecond)
	sched.Start(context.Background())

	select {
	case snap := <-stream:
		require.Len(t, snap.Codes, 1)
	case <-time.After(time.Second):
		t.Fatal("expected a snapshot from the running scheduler")
	}

	sched.Stop()
	sched.Stop() // idempotent
}

func TestScheduler_StopWithoutStart(t *testing.T) {
	t.Parallel()

	sched := registry.NewScheduler(registry.New(), &fakeClock{at: time.Now()}, time.Second)
	assert.NotPanics(t, func() { sched.Stop() })
}
