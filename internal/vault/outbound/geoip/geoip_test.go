package geoip_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authvault/authvault/internal/pkg/instrument"
	"github.com/authvault/authvault/internal/vault/outbound/geoip"
)

func TestClient_Lookup(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/203.0.113.10":
			_, _ = w.Write([]byte(`{"status":"success","city":"Jakarta","countryCode":"ID"}`))
		case "/198.51.100.7":
			_, _ = w.Write([]byte(`{"status":"fail"}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	client := geoip.NewClient(srv.URL, time.Second, instrument.NewNoop())

	loc, err := client.Lookup(context.Background(), "203.0.113.10")
	require.NoError(t, err)
	assert.Equal(t, "Jakarta", loc.City)
	assert.Equal(t, "ID", loc.CountryCode)
	assert.Equal(t, "Jakarta, ID", loc.Hint())

	_, err = client.Lookup(context.Background(), "198.51.100.7")
	assert.ErrorIs(t, err, geoip.ErrLookupFailed)

	_, err = client.Lookup(context.Background(), "192.0.2.200")
	assert.ErrorIs(t, err, geoip.ErrLookupFailed)

	_, err = client.Lookup(context.Background(), "not-an-ip")
	assert.ErrorIs(t, err, geoip.ErrInvalidIP)
}

func TestMaskIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ip   string
		want string
	}{
		{name: "ipv4", ip: "203.0.113.45", want: "203.0.113.0/24"},
		{name: "ipv4 with spaces", ip: " 10.20.30.40 ", want: "10.20.30.0/24"},
		{name: "ipv6", ip: "2001:db8:abcd:12:ffff::1", want: "2001:db8:abcd:12::/64"},
		{name: "garbage", ip: "nope", want: ""},
		{name: "empty", ip: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, geoip.MaskIP(tt.ip))
		})
	}
}
