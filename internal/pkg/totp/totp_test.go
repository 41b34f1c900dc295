package totp_test

import (
	"testing"
	"time"

	libotp "github.com/pquerna/otp"
	libtotp "github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authvault/authvault/internal/pkg/totp"
)

// Seeds from RFC 6238 Appendix B. Each algorithm uses the ASCII digit
// sequence repeated to the hash's block-appropriate length.
var (
	seedSHA1   = []byte("12345678901234567890")
	seedSHA256 = []byte("12345678901234567890123456789012")
	seedSHA512 = []byte("1234567890123456789012345678901234567890123456789012345678901234")
)

func TestGenerate_RFC6238Vectors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		unix int64
		algo totp.Algorithm
		want string
	}{
		{59, totp.AlgorithmSHA1, "94287082"},
		{59, totp.AlgorithmSHA256, "46119246"},
		{59, totp.AlgorithmSHA512, "90693936"},
		{1111111109, totp.AlgorithmSHA1, "07081804"},
		{1111111109, totp.AlgorithmSHA256, "68084774"},
		{1111111109, totp.AlgorithmSHA512, "25091201"},
		{1111111111, totp.AlgorithmSHA1, "14050471"},
		{1111111111, totp.AlgorithmSHA256, "67062674"},
		{1111111111, totp.AlgorithmSHA512, "99943326"},
		{1234567890, totp.AlgorithmSHA1, "89005924"},
		{1234567890, totp.AlgorithmSHA256, "91819424"},
		{1234567890, totp.AlgorithmSHA512, "93441116"},
		{2000000000, totp.AlgorithmSHA1, "69279037"},
		{2000000000, totp.AlgorithmSHA256, "90698825"},
		{2000000000, totp.AlgorithmSHA512, "38618901"},
		{20000000000, totp.AlgorithmSHA1, "65353130"},
		{20000000000, totp.AlgorithmSHA256, "77737706"},
		{20000000000, totp.AlgorithmSHA512, "47863826"},
	}

	seeds := map[totp.Algorithm][]byte{
		totp.AlgorithmSHA1:   seedSHA1,
		totp.AlgorithmSHA256: seedSHA256,
		totp.AlgorithmSHA512: seedSHA512,
	}

	for _, tt := range tests {
		t.Run(string(tt.algo)+"/"+tt.want, func(t *testing.T) {
			t.Parallel()

			got, err := totp.Generate(seeds[tt.algo], tt.algo, 8, 30, time.Unix(tt.unix, 0))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerate_DigitLengthAndPadding(t *testing.T) {
	t.Parallel()

	key, err := totp.Decode("JBSWY3DPEHPK3PXP")
	require.NoError(t, err)

	for _, digits := range []int{6, 8} {
		for _, unix := range []int64{0, 59, 1111111109, 1234567890} {
			code, err := totp.Generate(key, totp.AlgorithmSHA1, digits, 30, time.Unix(unix, 0))
			require.NoError(t, err)
			assert.Len(t, code, digits, "digits=%d unix=%d", digits, unix)
		}
	}
}

func TestGenerate_InvalidParameters(t *testing.T) {
	t.Parallel()

	key := []byte("12345678901234567890")
	at := time.Unix(59, 0)

	_, err := totp.Generate(key, totp.AlgorithmSHA1, 7, 30, at)
	assert.ErrorIs(t, err, totp.ErrInvalidParameters)

	_, err = totp.Generate(key, totp.AlgorithmSHA1, 6, 0, at)
	assert.ErrorIs(t, err, totp.ErrInvalidParameters)

	_, err = totp.Generate(key, totp.AlgorithmSHA1, 6, -30, at)
	assert.ErrorIs(t, err, totp.ErrInvalidParameters)

	_, err = totp.Generate(key, totp.Algorithm("MD5"), 6, 30, at)
	assert.ErrorIs(t, err, totp.ErrInvalidParameters)
}

func TestGenerate_WindowBoundaries(t *testing.T) {
	t.Parallel()

	// Same 30s window: identical codes. Adjacent windows: the published
	// vectors at 1111111109 and 1111111111 straddle a boundary.
	a, err := totp.Generate(seedSHA1, totp.AlgorithmSHA1, 8, 30, time.Unix(31, 0))
	require.NoError(t, err)
	b, err := totp.Generate(seedSHA1, totp.AlgorithmSHA1, 8, 30, time.Unix(59, 0))
	require.NoError(t, err)
	assert.Equal(t, a, b, "codes inside one window must match")

	before, err := totp.Generate(seedSHA1, totp.AlgorithmSHA1, 8, 30, time.Unix(1111111109, 0))
	require.NoError(t, err)
	after, err := totp.Generate(seedSHA1, totp.AlgorithmSHA1, 8, 30, time.Unix(1111111111, 0))
	require.NoError(t, err)
	assert.NotEqual(t, before, after, "crossing a period boundary must change the code")

	// Counter increments exactly on the boundary.
	atBoundary, err := totp.Generate(seedSHA1, totp.AlgorithmSHA1, 8, 30, time.Unix(1111111110, 0))
	require.NoError(t, err)
	assert.Equal(t, after, atBoundary)
}

func TestGenerate_Deterministic(t *testing.T) {
	t.Parallel()

	key, err := totp.Decode("JBSWY3DPEHPK3PXP")
	require.NoError(t, err)

	at := time.Unix(1700000000, 0)
	first, err := totp.Generate(key, totp.AlgorithmSHA256, 6, 60, at)
	require.NoError(t, err)
	second, err := totp.Generate(key, totp.AlgorithmSHA256, 6, 60, at)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// Cross-check against pquerna/otp, the reference implementation used by
// the rest of the ecosystem.
func TestGenerate_MatchesReferenceImplementation(t *testing.T) {
	t.Parallel()

	const secret = "JBSWY3DPEHPK3PXP"
	key, err := totp.Decode(secret)
	require.NoError(t, err)

	for _, unix := range []int64{1, 59, 1111111109, 1700000000} {
		at := time.Unix(unix, 0)

		ours, err := totp.Generate(key, totp.AlgorithmSHA1, 6, 30, at)
		require.NoError(t, err)

		theirs, err := libtotp.GenerateCodeCustom(secret, at, libtotp.ValidateOpts{
			Period:    30,
			Digits:    libotp.DigitsSix,
			Algorithm: libotp.AlgorithmSHA1,
		})
		require.NoError(t, err)

		assert.Equal(t, theirs, ours, "unix=%d", unix)
	}
}

func TestRemaining(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 30, totp.Remaining(30, time.Unix(0, 0)))
	assert.Equal(t, 30, totp.Remaining(30, time.Unix(30, 0)))
	assert.Equal(t, 1, totp.Remaining(30, time.Unix(29, 0)))
	assert.Equal(t, 15, totp.Remaining(30, time.Unix(45, 0)))
	assert.Equal(t, 60, totp.Remaining(60, time.Unix(120, 0)))

	for unix := int64(0); unix < 120; unix++ {
		r := totp.Remaining(30, time.Unix(unix, 0))
		assert.GreaterOrEqual(t, r, 1)
		assert.LessOrEqual(t, r, 30)
	}
}
