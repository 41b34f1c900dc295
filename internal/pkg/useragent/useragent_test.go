package useragent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/authvault/authvault/internal/pkg/useragent"
)

func TestDescribe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ua   string
		want string
	}{
		{
			name: "iphone safari",
			ua:   "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			want: useragent.LabelIPhone,
		},
		{
			name: "ipad",
			ua:   "Mozilla/5.0 (iPad; CPU OS 16_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Mobile/15E148",
			want: useragent.LabelIPad,
		},
		{
			name: "android phone chrome",
			ua:   "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Mobile Safari/537.36",
			want: useragent.LabelAndroidPhone,
		},
		{
			name: "android tablet",
			ua:   "Mozilla/5.0 (Linux; Android 13; SM-T870) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0 Safari/537.36",
			want: useragent.LabelAndroidTablet,
		},
		{
			name: "windows desktop",
			ua:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
			want: useragent.LabelWindowsDesktop,
		},
		{
			name: "mac desktop",
			ua:   "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
			want: useragent.LabelMacDesktop,
		},
		{
			name: "linux desktop",
			ua:   "Mozilla/5.0 (X11; Linux x86_64; rv:120.0) Gecko/20100101 Firefox/120.0",
			want: useragent.LabelLinuxDesktop,
		},
		{
			name: "curl",
			ua:   "curl/8.4.0",
			want: useragent.LabelBot,
		},
		{
			name: "googlebot",
			ua:   "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
			want: useragent.LabelBot,
		},
		{
			name: "empty",
			ua:   "",
			want: useragent.LabelUnknown,
		},
		{
			name: "garbage",
			ua:   "definitely not a real user agent",
			want: useragent.LabelUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, useragent.Describe(tt.ua))
		})
	}
}
