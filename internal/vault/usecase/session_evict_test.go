package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authvault/authvault/internal/vault/usecase"
)

func TestConsumeUserLogout(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)

	_, err := fx.uc.AddCredential(authCtx(testOwnerID), usecase.AddCredentialInput{
		Name:   "GitHub",
		Secret: "JBSWY3DPEHPK3PXP",
	})
	require.NoError(t, err)
	require.True(t, fx.reg.IsLoaded(testOwnerID))

	err = fx.uc.ConsumeUserLogout(authCtx(testOwnerID), usecase.ConsumeUserLogoutInput{UserID: testOwnerID})
	require.NoError(t, err)
	assert.False(t, fx.reg.IsLoaded(testOwnerID))

	// Rows survive eviction; the next call re-hydrates from the store.
	list, err := fx.uc.ListCredentials(authCtx(testOwnerID), usecase.ListCredentialsInput{})
	require.NoError(t, err)
	assert.Len(t, list.Credentials, 1)
}

func TestConsumeUserLogout_InvalidOwner(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)

	err := fx.uc.ConsumeUserLogout(authCtx(testOwnerID), usecase.ConsumeUserLogoutInput{})
	require.Error(t, err)
}
