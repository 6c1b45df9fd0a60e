package request

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"immersionfacile/internal/platform/metrics"
	"immersionfacile/pkg/requestcontext"
)

type RequestSuite struct {
	suite.Suite
	logs   *bytes.Buffer
	logger *slog.Logger
}

func TestRequestSuite(t *testing.T) {
	suite.Run(t, new(RequestSuite))
}

func (s *RequestSuite) SetupTest() {
	s.logs = &bytes.Buffer{}
	s.logger = slog.New(slog.NewJSONHandler(s.logs, nil))
}

func (s *RequestSuite) TestRequestID() {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestcontext.RequestID(r.Context())
	}))

	s.Run("reuses incoming id", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderRequestID, "req-123")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		s.Equal("req-123", seen)
		s.Equal("req-123", rr.Header().Get(HeaderRequestID))
	})

	s.Run("generates one when missing", func() {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		s.NotEmpty(seen)
		s.Equal(seen, rr.Header().Get(HeaderRequestID))
	})
}

func (s *RequestSuite) TestRecovery() {
	h := Recovery(s.logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	s.Equal(http.StatusInternalServerError, rr.Code)
	s.JSONEq(`{"error":"internal_error"}`, rr.Body.String())
	s.Contains(s.logs.String(), "panic recovered")
}

func (s *RequestSuite) TestLoggerUsesRoutePattern() {
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())
	r := chi.NewRouter()
	r.Use(Logger(s.logger, m))
	r.Get("/agencies/{id}/public", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/agencies/abc/public", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0")
	r.ServeHTTP(httptest.NewRecorder(), req)

	out := s.logs.String()
	s.Contains(out, `"route":"/agencies/{id}/public"`)
	s.Contains(out, `"status":418`)
	s.Contains(out, "Firefox on")
}

func (s *RequestSuite) TestContentTypeJSON() {
	h := ContentTypeJSON(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name        string
		method      string
		contentType string
		body        string
		want        int
	}{
		{"json body", http.MethodPost, "application/json; charset=utf-8", "{}", http.StatusNoContent},
		{"form body", http.MethodPost, "application/x-www-form-urlencoded", "a=b", http.StatusUnsupportedMediaType},
		{"empty body", http.MethodPost, "", "", http.StatusNoContent},
		{"get ignored", http.MethodGet, "text/plain", "", http.StatusNoContent},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			var body io.Reader
			if tc.body != "" {
				body = strings.NewReader(tc.body)
			}
			req := httptest.NewRequest(tc.method, "/", body)
			if tc.contentType != "" {
				req.Header.Set("Content-Type", tc.contentType)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			s.Equal(tc.want, rr.Code)
		})
	}
}

func (s *RequestSuite) TestDescribeUserAgent() {
	s.Run("empty user agent returns unknown device", func() {
		s.Equal("Unknown Device", DescribeUserAgent(""))
	})

	s.Run("chrome on desktop includes browser and OS", func() {
		result := DescribeUserAgent("Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
		s.Contains(result, "Chrome on")
		s.NotContains(result, "  ")
	})

	s.Run("safari on iphone includes platform", func() {
		result := DescribeUserAgent("Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1")
		s.Contains(result, "iPhone")
	})

	s.Run("result has no surrounding whitespace", func() {
		result := DescribeUserAgent("Unknown/1.0")
		s.NotEmpty(result)
		s.Equal(strings.TrimSpace(result), result)
	})
}
