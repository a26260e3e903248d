package middleware

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIPExtractor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		trusted []string
		remote  string
		xff     string
		want    string
	}{
		{
			name:   "no trusted proxies ignores header",
			remote: "203.0.113.5:4000",
			xff:    "198.51.100.1",
			want:   "203.0.113.5",
		},
		{
			name:    "untrusted peer ignores header",
			trusted: []string{"10.0.0.0/8"},
			remote:  "203.0.113.5:4000",
			xff:     "198.51.100.1",
			want:    "203.0.113.5",
		},
		{
			name:    "trusted peer uses header",
			trusted: []string{"10.0.0.0/8"},
			remote:  "10.1.2.3:4000",
			xff:     "198.51.100.1",
			want:    "198.51.100.1",
		},
		{
			name:    "rightmost untrusted hop wins",
			trusted: []string{"10.0.0.0/8"},
			remote:  "10.1.2.3:4000",
			xff:     "1.1.1.1, 198.51.100.1, 10.0.0.7",
			want:    "198.51.100.1",
		},
		{
			name:    "all hops trusted",
			trusted: []string{"10.0.0.0/8"},
			remote:  "10.1.2.3:4000",
			xff:     "10.0.0.9, 10.0.0.7",
			want:    "10.1.2.3",
		},
		{
			name:    "single address entry",
			trusted: []string{"10.1.2.3"},
			remote:  "10.1.2.3:4000",
			xff:     "198.51.100.1",
			want:    "198.51.100.1",
		},
		{
			name:    "invalid entries skipped",
			trusted: []string{"not-an-ip"},
			remote:  "10.1.2.3:4000",
			xff:     "198.51.100.1",
			want:    "10.1.2.3",
		},
		{
			name:    "ipv6 peer",
			trusted: []string{"fd00::/8"},
			remote:  "[fd00::1]:4000",
			xff:     "2001:db8::1",
			want:    "2001:db8::1",
		},
		{
			name:    "trusted peer without header",
			trusted: []string{"10.0.0.0/8"},
			remote:  "10.1.2.3:4000",
			want:    "10.1.2.3",
		},
		{
			name:   "remote without port",
			remote: "203.0.113.5",
			want:   "203.0.113.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := newRequest(http.MethodGet, "/")
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set(HeaderXForwardedFor, tt.xff)
			}

			assert.Equal(t, tt.want, NewClientIPExtractor(tt.trusted).Extract(req))
		})
	}
}
