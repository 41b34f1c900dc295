package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authvault/authvault/internal/pkg/goerror"
	"github.com/authvault/authvault/internal/pkg/totp"
	"github.com/authvault/authvault/internal/vault/usecase"
)

func TestAddCredential(t *testing.T) {
	t.Parallel()

	t.Run("defaults applied and secret normalized", func(t *testing.T) {
		t.Parallel()

		fx := newFixture(t)

		out, err := fx.uc.AddCredential(authCtx(testOwnerID), usecase.AddCredentialInput{
			Name:   "GitHub",
			Issuer: "GitHub",
			Secret: "jbsw y3dp ehpk 3pxp",
		})
		require.NoError(t, err)
		assert.Equal(t, 30, out.Period)
		assert.Equal(t, 6, out.Digits)
		assert.Equal(t, totp.AlgorithmSHA1, out.Algorithm)

		list, err := fx.uc.ListCredentials(authCtx(testOwnerID), usecase.ListCredentialsInput{})
		require.NoError(t, err)
		require.Len(t, list.Credentials, 1)
		assert.Equal(t, out.ID, list.Credentials[0].ID)
		assert.Len(t, list.Credentials[0].Code, 6)
		assert.False(t, list.Credentials[0].Err)
	})

	t.Run("secret sealed before persistence", func(t *testing.T) {
		t.Parallel()

		fx := newFixture(t)

		out, err := fx.uc.AddCredential(authCtx(testOwnerID), usecase.AddCredentialInput{
			Name:   "Mail",
			Secret: "JBSWY3DPEHPK3PXP",
		})
		require.NoError(t, err)

		row, err := fx.repo.GetCredential(context.Background(), out.ID, testOwnerID)
		require.NoError(t, err)
		assert.NotContains(t, string(row.SecretSealed), "JBSWY3DPEHPK3PXP")
	})

	t.Run("whitespace-only name rejected", func(t *testing.T) {
		t.Parallel()

		fx := newFixture(t)

		_, err := fx.uc.AddCredential(authCtx(testOwnerID), usecase.AddCredentialInput{
			Name:   "   ",
			Secret: "JBSWY3DPEHPK3PXP",
		})
		require.Error(t, err)

		var gerr *goerror.Error
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, goerror.CodeInvalidInput, gerr.Code())
	})

	t.Run("labels stored trimmed", func(t *testing.T) {
		t.Parallel()

		fx := newFixture(t)

		out, err := fx.uc.AddCredential(authCtx(testOwnerID), usecase.AddCredentialInput{
			Name:   "  GitHub  ",
			Issuer: "\tGitHub Inc ",
			Secret: "JBSWY3DPEHPK3PXP",
		})
		require.NoError(t, err)
		assert.Equal(t, "GitHub", out.Name)
		assert.Equal(t, "GitHub Inc", out.Issuer)
	})

	t.Run("invalid secret rejected", func(t *testing.T) {
		t.Parallel()

		fx := newFixture(t)

		_, err := fx.uc.AddCredential(authCtx(testOwnerID), usecase.AddCredentialInput{
			Name:   "Bad",
			Secret: "JBSW1!",
		})
		require.Error(t, err)
	})

	t.Run("invalid digits rejected", func(t *testing.T) {
		t.Parallel()

		fx := newFixture(t)

		_, err := fx.uc.AddCredential(authCtx(testOwnerID), usecase.AddCredentialInput{
			Name:   "Bad",
			Secret: "JBSWY3DPEHPK3PXP",
			Digits: 7,
		})
		require.Error(t, err)
	})

	t.Run("store failure leaves registry unchanged", func(t *testing.T) {
		t.Parallel()

		fx := newFixture(t)

		out, err := fx.uc.AddCredential(authCtx(testOwnerID), usecase.AddCredentialInput{
			Name:   "Existing",
			Secret: "JBSWY3DPEHPK3PXP",
		})
		require.NoError(t, err)

		fx.repo.createErr = errors.New("db unavailable")

		_, err = fx.uc.AddCredential(authCtx(testOwnerID), usecase.AddCredentialInput{
			Name:   "Doomed",
			Secret: "GEZDGNBVGY3TQOJQ",
		})
		require.Error(t, err)

		var gerr *goerror.Error
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, goerror.CodeInternal, gerr.Code())

		// The failed row never reached memory.
		list, err := fx.uc.ListCredentials(authCtx(testOwnerID), usecase.ListCredentialsInput{})
		require.NoError(t, err)
		require.Len(t, list.Credentials, 1)
		assert.Equal(t, out.ID, list.Credentials[0].ID)
		assert.Equal(t, "Existing", list.Credentials[0].Name)
	})

	t.Run("unauthenticated rejected", func(t *testing.T) {
		t.Parallel()

		fx := newFixture(t)

		_, err := fx.uc.AddCredential(context.Background(), usecase.AddCredentialInput{
			Name:   "NoAuth",
			Secret: "JBSWY3DPEHPK3PXP",
		})
		require.Error(t, err)

		var gerr *goerror.Error
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, goerror.CodeUnauthorized, gerr.Code())
	})
}

func TestImportCredential(t *testing.T) {
	t.Parallel()

	t.Run("full uri imported", func(t *testing.T) {
		t.Parallel()

		fx := newFixture(t)

		out, err := fx.uc.ImportCredential(authCtx(testOwnerID), usecase.ImportCredentialInput{
			URI: "otpauth://totp/Example:alice@example.com?secret=JBSWY3DPEHPK3PXP&issuer=Example&algorithm=SHA256&digits=8&period=60",
		})
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", out.Name)
		assert.Equal(t, "Example", out.Issuer)
		assert.Equal(t, totp.AlgorithmSHA256, out.Algorithm)
		assert.Equal(t, 8, out.Digits)
		assert.Equal(t, 60, out.Period)
	})

	t.Run("duplicate submission collapsed", func(t *testing.T) {
		t.Parallel()

		fx := newFixture(t)
		uri := "otpauth://totp/Example:bob@example.com?secret=JBSWY3DPEHPK3PXP&issuer=Example"

		_, err := fx.uc.ImportCredential(authCtx(testOwnerID), usecase.ImportCredentialInput{URI: uri})
		require.NoError(t, err)

		_, err = fx.uc.ImportCredential(authCtx(testOwnerID), usecase.ImportCredentialInput{URI: uri})
		require.Error(t, err)

		list, err := fx.uc.ListCredentials(authCtx(testOwnerID), usecase.ListCredentialsInput{})
		require.NoError(t, err)
		assert.Len(t, list.Credentials, 1)
	})

	t.Run("hotp uri rejected", func(t *testing.T) {
		t.Parallel()

		fx := newFixture(t)

		_, err := fx.uc.ImportCredential(authCtx(testOwnerID), usecase.ImportCredentialInput{
			URI: "otpauth://hotp/Example:x?secret=JBSWY3DPEHPK3PXP&counter=1",
		})
		require.Error(t, err)
	})
}
