package registry_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authvault/authvault/internal/pkg/totp"
	"github.com/authvault/authvault/internal/vault/entity"
	"github.com/authvault/authvault/internal/vault/registry"
)

const ownerID = int64(42)

func cred(id int64, name, issuer, secret string, period, digits int, algo totp.Algorithm) entity.Credential {
	return entity.Credential{
		ID:        id,
		OwnerID:   ownerID,
		Name:      name,
		Issuer:    issuer,
		Secret:    secret,
		Period:    period,
		Digits:    digits,
		Algorithm: algo,
		CreatedAt: time.Unix(1700000000+id, 0),
	}
}

func TestRegistry_HydrateAndList(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	now := time.Unix(1700000000, 0)

	assert.False(t, reg.IsLoaded(ownerID))

	reg.Hydrate(ownerID, []entity.Credential{
		cred(1, "GitHub", "GitHub", "JBSWY3DPEHPK3PXP", 30, 6, totp.AlgorithmSHA1),
		cred(2, "Email", "Acme", "JBSWY3DPEHPK3PXP", 60, 8, totp.AlgorithmSHA256),
	}, now)

	assert.True(t, reg.IsLoaded(ownerID))

	views := reg.List(ownerID, entity.SortKeyName, "")
	require.Len(t, views, 2)
	for _, v := range views {
		assert.False(t, v.Err)
		assert.Len(t, v.Code, v.Digits)
		assert.GreaterOrEqual(t, v.Remaining, 1)
		assert.LessOrEqual(t, v.Remaining, v.Period)
	}
}

func TestRegistry_AddComputesImmediately(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	now := time.Unix(59, 0)

	reg.Put(cred(7, "VPN", "Corp", "JBSWY3DPEHPK3PXP", 30, 6, totp.AlgorithmSHA1), now)

	view, ok := reg.Get(ownerID, 7)
	require.True(t, ok)
	assert.NotEmpty(t, view.Code, "code must be available without waiting for a tick")
	assert.Equal(t, 1, view.Remaining)
}

func TestRegistry_NormalizedSecretsAgree(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	now := time.Unix(1700000000, 0)

	canonical, err := totp.Normalize(" jbsw y3dp ehpk3pxp ")
	require.NoError(t, err)

	reg.Put(cred(1, "A", "A", "JBSWY3DPEHPK3PXP", 30, 6, totp.AlgorithmSHA1), now)
	reg.Put(cred(2, "B", "B", canonical, 30, 6, totp.AlgorithmSHA1), now)

	a, _ := reg.Get(ownerID, 1)
	b, _ := reg.Get(ownerID, 2)
	assert.Equal(t, a.Code, b.Code)
}

func TestRegistry_BrokenSecretSurfacesErrorState(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	now := time.Unix(1700000000, 0)

	c := cred(9, "Broken", "X", "JBSWY3DPEHPK3PXP", 30, 6, totp.AlgorithmSHA1)
	c.Secret = "definitely not base32!"
	reg.Put(c, now)

	view, ok := reg.Get(ownerID, 9)
	require.True(t, ok)
	assert.True(t, view.Err)
	assert.Empty(t, view.Code, "a broken secret must never show a wrong code")
}

func TestRegistry_SortingAndFiltering(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	now := time.Unix(1700000000, 0)

	reg.Hydrate(ownerID, []entity.Credential{
		cred(3, "zeta", "Acme", "JBSWY3DPEHPK3PXP", 30, 6, totp.AlgorithmSHA1),
		cred(1, "alpha", "Zulu", "JBSWY3DPEHPK3PXP", 30, 6, totp.AlgorithmSHA1),
		cred(2, "alpha", "Beta", "JBSWY3DPEHPK3PXP", 30, 6, totp.AlgorithmSHA1),
	}, now)

	byName := reg.List(ownerID, entity.SortKeyName, "")
	require.Len(t, byName, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{byName[0].ID, byName[1].ID, byName[2].ID},
		"equal names tie-break by id")

	byIssuer := reg.List(ownerID, entity.SortKeyIssuer, "")
	assert.Equal(t, "Acme", byIssuer[0].Issuer)
	assert.Equal(t, "Beta", byIssuer[1].Issuer)
	assert.Equal(t, "Zulu", byIssuer[2].Issuer)

	byCreated := reg.List(ownerID, entity.SortKeyCreatedAt, "")
	assert.Equal(t, int64(1), byCreated[0].ID)

	filtered := reg.List(ownerID, entity.SortKeyName, "ZET")
	require.Len(t, filtered, 1)
	assert.Equal(t, "zeta", filtered[0].Name)

	byIssuerMatch := reg.List(ownerID, entity.SortKeyName, "acme")
	require.Len(t, byIssuerMatch, 1)
	assert.Equal(t, int64(3), byIssuerMatch[0].ID)

	// Filtering returns a view, the set itself is untouched.
	assert.Len(t, reg.List(ownerID, entity.SortKeyName, ""), 3)
}

func TestRegistry_TickRollsWindows(t *testing.T) {
	t.Parallel()

	reg := registry.New()

	reg.Hydrate(ownerID, []entity.Credential{
		cred(1, "Fast", "A", "JBSWY3DPEHPK3PXP", 30, 6, totp.AlgorithmSHA1),
		cred(2, "Slow", "B", "JBSWY3DPEHPK3PXP", 60, 6, totp.AlgorithmSHA1),
	}, time.Unix(1111111109, 0))

	fastBefore, _ := reg.Get(ownerID, 1)
	slowBefore, _ := reg.Get(ownerID, 2)

	// Next second crosses the 30s boundary but not the 60s one.
	reg.Tick(time.Unix(1111111110, 0))

	fastAfter, _ := reg.Get(ownerID, 1)
	slowAfter, _ := reg.Get(ownerID, 2)

	assert.NotEqual(t, fastBefore.Code, fastAfter.Code, "30s credential crossed its window")
	assert.Equal(t, slowBefore.Code, slowAfter.Code, "60s credential stays within its window")
	assert.Equal(t, 30, fastAfter.Remaining)

	// Ticks on an empty registry are a no-op.
	empty := registry.New()
	empty.Tick(time.Unix(0, 0))
}

func TestRegistry_UpdateDoesNotDisturbOthers(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	now := time.Unix(1700000000, 0)

	reg.Hydrate(ownerID, []entity.Credential{
		cred(1, "One", "A", "JBSWY3DPEHPK3PXP", 30, 6, totp.AlgorithmSHA1),
		cred(2, "Two", "B", "MFRGGZDFMZTWQ2LK", 30, 6, totp.AlgorithmSHA1),
	}, now)

	otherBefore, _ := reg.Get(ownerID, 2)

	changed := cred(1, "One", "A", "MFRGGZDFMZTWQ2LK", 30, 6, totp.AlgorithmSHA1)
	reg.Put(changed, now)

	otherAfter, _ := reg.Get(ownerID, 2)
	assert.Equal(t, otherBefore.Code, otherAfter.Code)

	updated, _ := reg.Get(ownerID, 1)
	assert.Equal(t, otherAfter.Code, updated.Code, "same secret and parameters produce the same code")
}

func TestRegistry_RemoveAndEvict(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	now := time.Unix(1700000000, 0)

	reg.Hydrate(ownerID, []entity.Credential{
		cred(1, "One", "A", "JBSWY3DPEHPK3PXP", 30, 6, totp.AlgorithmSHA1),
	}, now)

	reg.Remove(ownerID, 1)
	_, ok := reg.Get(ownerID, 1)
	assert.False(t, ok)

	// Removing an unknown id is harmless.
	reg.Remove(ownerID, 999)

	reg.Evict(ownerID)
	assert.False(t, reg.IsLoaded(ownerID))
}

func TestRegistry_SubscribeReceivesSnapshots(t *testing.T) {
	t.Parallel()

	reg := registry.New()
	now := time.Unix(1700000000, 0)

	reg.Hydrate(ownerID, []entity.Credential{
		cred(1, "One", "A", "JBSWY3DPEHPK3PXP", 30, 6, totp.AlgorithmSHA1),
	}, now)

	done := make(chan struct{})
	stream := reg.Subscribe(done, ownerID)

	reg.Tick(now.Add(time.Second))

	select {
	case snap := <-stream:
		require.Len(t, snap.Codes, 1)
		assert.Equal(t, now.Add(time.Second), snap.At)
	case <-time.After(time.Second):
		t.Fatal("expected a snapshot after tick")
	}

	close(done)
	assert.Eventually(t, func() bool {
		_, open := <-stream
		return !open
	}, time.Second, 10*time.Millisecond, "stream must close when the subscriber is done")
}
