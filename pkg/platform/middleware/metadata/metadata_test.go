package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"immersionfacile/pkg/requestcontext"
)

func TestClientIPFromRequest(t *testing.T) {
	trusted, err := ParseTrustedProxies([]string{"10.0.0.0/8", "192.0.2.254"})
	require.NoError(t, err)

	cases := []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{"forwarded header from untrusted peer is ignored", map[string]string{"X-Forwarded-For": "203.0.113.7"}, "198.51.100.9:5000", "198.51.100.9"},
		{"real ip header from untrusted peer is ignored", map[string]string{"X-Real-IP": "203.0.113.7"}, "198.51.100.9:5000", "198.51.100.9"},
		{"trusted proxy forwards client", map[string]string{"X-Forwarded-For": "203.0.113.7"}, "10.0.0.2:5000", "203.0.113.7"},
		{"spoofed left hops are skipped", map[string]string{"X-Forwarded-For": "1.2.3.4, 203.0.113.7, 10.0.0.1"}, "10.0.0.2:5000", "203.0.113.7"},
		{"single trusted ip", map[string]string{"X-Forwarded-For": "203.0.113.8"}, "192.0.2.254:80", "203.0.113.8"},
		{"all hops trusted keeps left-most", map[string]string{"X-Forwarded-For": "10.1.1.1, 10.0.0.1"}, "10.0.0.2:5000", "10.1.1.1"},
		{"real ip behind trusted proxy", map[string]string{"X-Real-IP": " 198.51.100.4 "}, "10.0.0.2:5000", "198.51.100.4"},
		{"ipv4 remote addr", nil, "192.0.2.1:1234", "192.0.2.1"},
		{"ipv6 remote addr", nil, "[::1]:1234", "::1"},
		{"no address", nil, "", "unknown"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			for k, v := range tc.header {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, ClientIPFromRequest(req, trusted))
		})
	}
}

func TestClientIPWithoutTrustedProxies(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:5000"
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	req.Header.Set("X-Real-IP", "203.0.113.8")

	assert.Equal(t, "10.0.0.2", ClientIPFromRequest(req, nil))
}

func TestParseTrustedProxies(t *testing.T) {
	prefixes, err := ParseTrustedProxies([]string{"10.0.0.0/8", " 172.16.0.1 ", "", "::1"})
	require.NoError(t, err)
	require.Len(t, prefixes, 3)
	assert.Equal(t, "10.0.0.0/8", prefixes[0].String())
	assert.Equal(t, "172.16.0.1/32", prefixes[1].String())
	assert.Equal(t, "::1/128", prefixes[2].String())

	_, err = ParseTrustedProxies([]string{"not-an-ip"})
	assert.Error(t, err)
}

func TestClientMetadata(t *testing.T) {
	var ip, ua string
	h := ClientMetadata(nil)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		ip = requestcontext.ClientIP(r.Context())
		ua = requestcontext.UserAgent(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.9:443"
	req.Header.Set("User-Agent", "curl/8.0")
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "192.0.2.9", ip)
	assert.Equal(t, "curl/8.0", ua)
}
