package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authvault/authvault/internal/pkg/instrument"
	"github.com/authvault/authvault/internal/vault/entity"
	"github.com/authvault/authvault/internal/vault/usecase"
)

func TestViewAndCopyCode(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)

	out, err := fx.uc.AddCredential(authCtx(testOwnerID), usecase.AddCredentialInput{
		Name:   "Audited",
		Secret: "JBSWY3DPEHPK3PXP",
	})
	require.NoError(t, err)

	view, err := fx.uc.ViewCode(authCtx(testOwnerID), usecase.AccessCodeInput{
		ID:         out.ID,
		RemoteAddr: "203.0.113.45",
		UserAgent:  "test-agent",
	})
	require.NoError(t, err)
	assert.Len(t, view.Code.Code, 6)
	assert.Positive(t, view.Code.Remaining)

	copied, err := fx.uc.CopyCode(authCtx(testOwnerID), usecase.AccessCodeInput{
		ID:         out.ID,
		RemoteAddr: "203.0.113.45",
		UserAgent:  "test-agent",
	})
	require.NoError(t, err)
	assert.Equal(t, view.Code.Code, copied.Code.Code)

	events := fx.audit.all()
	require.Len(t, events, 2)
	assert.Equal(t, entity.AccessTypeView, events[0].AccessType)
	assert.Equal(t, entity.AccessTypeCopy, events[1].AccessType)
	assert.Equal(t, out.ID, events[0].CredentialID)
	assert.Equal(t, testOwnerID, events[0].OwnerID)
	assert.Equal(t, "203.0.113.45", events[0].RemoteAddr)
}

func TestViewCode_CorrelationIDCarriedInEvent(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)

	out, err := fx.uc.AddCredential(authCtx(testOwnerID), usecase.AddCredentialInput{
		Name:   "Traced",
		Secret: "JBSWY3DPEHPK3PXP",
	})
	require.NoError(t, err)

	ctx := instrument.SetCorrelationID(authCtx(testOwnerID), "cid-123")
	_, err = fx.uc.ViewCode(ctx, usecase.AccessCodeInput{ID: out.ID})
	require.NoError(t, err)

	events := fx.audit.all()
	require.Len(t, events, 1)
	require.NotNil(t, events[0].Metadata)
	assert.Equal(t, "cid-123", events[0].Metadata["correlation_id"])

	// Without a correlation id the metadata stays nil, keeping the
	// column NULL instead of an empty object.
	_, err = fx.uc.CopyCode(authCtx(testOwnerID), usecase.AccessCodeInput{ID: out.ID})
	require.NoError(t, err)
	assert.Nil(t, fx.audit.all()[1].Metadata)
}

func TestViewCode_UnknownCredential(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)

	_, err := fx.uc.ViewCode(authCtx(testOwnerID), usecase.AccessCodeInput{ID: 404})
	require.Error(t, err)
	assert.Empty(t, fx.audit.all())
}

func TestViewCode_OwnerIsolation(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)

	out, err := fx.uc.AddCredential(authCtx(testOwnerID), usecase.AddCredentialInput{
		Name:   "Private",
		Secret: "JBSWY3DPEHPK3PXP",
	})
	require.NoError(t, err)

	_, err = fx.uc.ViewCode(authCtx(42), usecase.AccessCodeInput{ID: out.ID})
	require.Error(t, err)
	assert.Empty(t, fx.audit.all())
}
