package metadata

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"marketlevy/pkg/requestcontext"
)

type MetadataSuite struct {
	suite.Suite
}

func TestMetadataSuite(t *testing.T) {
	suite.Run(t, new(MetadataSuite))
}

func (s *MetadataSuite) TestDeviceLabel() {
	s.Run("empty user agent returns unknown device", func() {
		s.Equal("Unknown Device", DeviceLabel(""))
	})

	s.Run("chrome on android includes browser and OS", func() {
		label := DeviceLabel("Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36")
		s.Contains(label, "Chrome")
		s.Contains(label, "Android")
		s.NotContains(label, "  ")
	})

	s.Run("firefox on linux includes browser", func() {
		label := DeviceLabel("Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0")
		s.Contains(label, "Firefox")
		s.Contains(label, " on ")
	})

	s.Run("unknown agent still renders", func() {
		label := DeviceLabel("LevyScanner/1.0")
		s.Contains(label, " on ")
		s.NotEmpty(label)
	})
}

func (s *MetadataSuite) TestClientIPFromRequest() {
	cases := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"first forwarded hop", map[string]string{"X-Forwarded-For": "203.0.113.1, 10.0.0.1"}, "10.0.0.2:1234", "203.0.113.1"},
		{"real ip header", map[string]string{"X-Real-IP": " 198.51.100.7 "}, "10.0.0.2:1234", "198.51.100.7"},
		{"remote ipv4", nil, "192.0.2.10:5555", "192.0.2.10"},
		{"remote ipv6", nil, "[::1]:5555", "::1"},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			s.Equal(tc.want, ClientIPFromRequest(req))
		})
	}
}

func (s *MetadataSuite) TestClientMetadataPopulatesContext() {
	var ip, ua, label string
	h := ClientMetadata(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip = requestcontext.ClientIP(r.Context())
		ua = requestcontext.UserAgent(r.Context())
		label = requestcontext.DeviceLabel(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:80"
	req.Header.Set("User-Agent", strings.Repeat("a", maxUserAgentLength+10))
	h.ServeHTTP(httptest.NewRecorder(), req)

	s.Equal("192.0.2.1", ip)
	s.Len(ua, maxUserAgentLength)
	s.NotEmpty(label)
}
