package totp_test

import (
	"testing"

	"github.com/authvault/authvault/internal/pkg/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "canonical stays untouched", in: "JBSWY3DPEHPK3PXP", want: "JBSWY3DPEHPK3PXP"},
		{name: "lowercase with embedded spaces", in: " jbsw y3dp ehpk3pxp ", want: "JBSWY3DPEHPK3PXP"},
		{name: "padding stripped", in: "MFRGG===", want: "MFRGG"},
		{name: "tabs and newlines stripped", in: "JBSW\tY3DP\nEHPK3PXP", want: "JBSWY3DPEHPK3PXP"},
		{name: "empty", in: "", wantErr: true},
		{name: "whitespace only", in: "   ", wantErr: true},
		{name: "digit outside alphabet", in: "JBSWY3DP0", wantErr: true},
		{name: "digit one outside alphabet", in: "JBSWY3DP1", wantErr: true},
		{name: "symbol outside alphabet", in: "JBSW!Y3DP", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := totp.Normalize(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, totp.ErrInvalidSecret)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode(t *testing.T) {
	t.Parallel()

	t.Run("known vector", func(t *testing.T) {
		t.Parallel()

		got, err := totp.Decode("JBSWY3DPEHPK3PXP")
		require.NoError(t, err)
		assert.Equal(t, []byte{'H', 'e', 'l', 'l', 'o', '!', 0xDE, 0xAD, 0xBE, 0xEF}, got)
	})

	t.Run("trailing bits shorter than a byte are discarded", func(t *testing.T) {
		t.Parallel()

		// "MFRGG" is 25 bits; the last bit never completes a byte.
		got, err := totp.Decode("MFRGG")
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), got)
	})

	t.Run("padded and unpadded agree", func(t *testing.T) {
		t.Parallel()

		padded, err := totp.Decode("MFRGG===")
		require.NoError(t, err)
		unpadded, err := totp.Decode("MFRGG")
		require.NoError(t, err)
		assert.Equal(t, unpadded, padded)
	})

	t.Run("decoding is idempotent", func(t *testing.T) {
		t.Parallel()

		first, err := totp.Decode(" jbsw y3dp ehpk3pxp ")
		require.NoError(t, err)
		second, err := totp.Decode(" jbsw y3dp ehpk3pxp ")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("invalid input", func(t *testing.T) {
		t.Parallel()

		_, err := totp.Decode("not base32 at all!!")
		assert.ErrorIs(t, err, totp.ErrInvalidSecret)
	})
}
