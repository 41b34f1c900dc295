// Package geoip resolves a caller's address to a coarse location hint
// for audit enrichment. Lookups are best-effort; every failure is an
// error the caller turns into a NULL field, never a request failure.
package geoip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/authvault/authvault/internal/pkg/instrument"
)

var (
	// ErrLookupFailed indicates the provider returned no usable location.
	ErrLookupFailed = errors.New("geoip: lookup failed")
	// ErrInvalidIP indicates the input is not a parseable IP address.
	ErrInvalidIP = errors.New("geoip: invalid ip address")
)

// Location is the coarse result of a lookup: city granularity at most,
// never coordinates.
type Location struct {
	City        string
	CountryCode string
}

// Hint renders the "City, CC" form stored on the audit row.
func (l Location) Hint() string {
	switch {
	case l.City != "" && l.CountryCode != "":
		return l.City + ", " + l.CountryCode
	case l.CountryCode != "":
		return l.CountryCode
	case l.City != "":
		return l.City
	default:
		return ""
	}
}

// Client queries an ip-api style JSON endpoint.
type Client struct {
	http     *http.Client
	endpoint string
	ins      instrument.Instrumentation
}

// NewClient builds a lookup client. The timeout bounds the whole
// request; audit enrichment passes a short one so a dead provider
// cannot back up the worker.
func NewClient(endpoint string, timeout time.Duration, ins instrument.Instrumentation) *Client {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	return &Client{
		http:     &http.Client{Timeout: timeout},
		endpoint: strings.TrimRight(endpoint, "/"),
		ins:      ins,
	}
}

type lookupResponse struct {
	Status      string `json:"status"`
	City        string `json:"city"`
	CountryCode string `json:"countryCode"`
}

// Lookup resolves one IP to a Location.
func (c *Client) Lookup(ctx context.Context, ip string) (_ *Location, err error) {
	ctx, span := c.startSpan(ctx, "Lookup")
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	if net.ParseIP(ip) == nil {
		return nil, ErrInvalidIP
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/"+ip, nil)
	if err != nil {
		return nil, fmt.Errorf("geoip: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geoip: request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrLookupFailed, resp.StatusCode)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("geoip: decode response: %w", err)
	}

	if body.Status != "" && body.Status != "success" {
		return nil, ErrLookupFailed
	}
	if body.City == "" && body.CountryCode == "" {
		return nil, ErrLookupFailed
	}

	return &Location{City: body.City, CountryCode: body.CountryCode}, nil
}

func (c *Client) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.ins.Tracer("vault.outbound.geoip").Start(ctx, name)
}

// MaskIP generalizes an address to its network prefix before storage:
// /24 for IPv4, /64 for IPv6. The precise address never reaches the
// audit table. Unparseable input yields "".
func MaskIP(ip string) string {
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return ""
	}

	if v4 := parsed.To4(); v4 != nil {
		masked := v4.Mask(net.CIDRMask(24, 32))
		return masked.String() + "/24"
	}

	masked := parsed.Mask(net.CIDRMask(64, 128))
	return masked.String() + "/64"
}
