package totp_test

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authvault/authvault/internal/pkg/totp"
)

func TestParseURI(t *testing.T) {
	t.Parallel()

	t.Run("full uri", func(t *testing.T) {
		t.Parallel()

		raw := "otpauth://totp/Example:alice@example.com?secret=JBSWY3DPEHPK3PXP&issuer=Example&algorithm=SHA256&digits=8&period=60"
		got, err := totp.ParseURI(raw)
		require.NoError(t, err)

		assert.Equal(t, "Example", got.Issuer)
		assert.Equal(t, "alice@example.com", got.AccountName)
		assert.Equal(t, "JBSWY3DPEHPK3PXP", got.Secret)
		assert.Equal(t, totp.AlgorithmSHA256, got.Algorithm)
		assert.Equal(t, 8, got.Digits)
		assert.Equal(t, 60, got.Period)
	})

	t.Run("missing parameters take defaults", func(t *testing.T) {
		t.Parallel()

		got, err := totp.ParseURI("otpauth://totp/alice?secret=JBSWY3DPEHPK3PXP")
		require.NoError(t, err)

		assert.Equal(t, totp.AlgorithmSHA1, got.Algorithm)
		assert.Equal(t, 6, got.Digits)
		assert.Equal(t, 30, got.Period)
	})

	t.Run("secret is normalized", func(t *testing.T) {
		t.Parallel()

		got, err := totp.ParseURI("otpauth://totp/alice?secret=jbswy3dpehpk3pxp")
		require.NoError(t, err)
		assert.Equal(t, "JBSWY3DPEHPK3PXP", got.Secret)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		t.Parallel()

		_, err := totp.ParseURI("https://example.com/totp?secret=JBSWY3DPEHPK3PXP")
		assert.ErrorIs(t, err, totp.ErrInvalidURI)
	})

	t.Run("hotp rejected", func(t *testing.T) {
		t.Parallel()

		_, err := totp.ParseURI("otpauth://hotp/alice?secret=JBSWY3DPEHPK3PXP&counter=0")
		assert.ErrorIs(t, err, totp.ErrInvalidURI)
	})

	t.Run("bad secret", func(t *testing.T) {
		t.Parallel()

		_, err := totp.ParseURI("otpauth://totp/alice?secret=NOT-BASE32-1!")
		assert.ErrorIs(t, err, totp.ErrInvalidSecret)
	})
}

func TestBuildURI(t *testing.T) {
	t.Parallel()

	p := totp.Provision{
		Issuer:      "Acme Corp",
		AccountName: "alice@example.com",
		Secret:      "JBSWY3DPEHPK3PXP",
		Algorithm:   totp.AlgorithmSHA1,
		Digits:      6,
		Period:      30,
	}

	raw := totp.BuildURI(p)
	assert.True(t, strings.HasPrefix(raw, "otpauth://totp/"))

	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "JBSWY3DPEHPK3PXP", q.Get("secret"))
	assert.Equal(t, "Acme Corp", q.Get("issuer"))
	assert.Equal(t, "SHA1", q.Get("algorithm"))
	assert.Equal(t, "6", q.Get("digits"))
	assert.Equal(t, "30", q.Get("period"))
}

func TestBuildURI_RoundTrip(t *testing.T) {
	t.Parallel()

	in := totp.Provision{
		Issuer:      "Example",
		AccountName: "bob",
		Secret:      "MFRGGZDFMZTWQ2LK",
		Algorithm:   totp.AlgorithmSHA512,
		Digits:      8,
		Period:      60,
	}

	out, err := totp.ParseURI(totp.BuildURI(in))
	require.NoError(t, err)
	assert.Equal(t, &in, out)
}
