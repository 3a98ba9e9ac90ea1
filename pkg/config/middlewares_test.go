package config

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestClientIPExtractor(t *testing.T) {
	tests := []struct {
		name       string
		trustProxy bool
		remoteAddr string
		forwarded  string
		want       string
	}{
		{"direct ignores header", false, "10.1.1.1:5000", "203.0.113.5", "10.1.1.1"},
		{"private proxy is trusted", true, "10.1.1.1:5000", "203.0.113.5", "203.0.113.5"},
		{"public peer is not a proxy", true, "198.51.100.7:5000", "203.0.113.5", "198.51.100.7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			req.Header.Set(echo.HeaderXForwardedFor, tt.forwarded)
			assert.Equal(t, tt.want, ClientIPExtractor(tt.trustProxy)(req))
		})
	}
}

func TestSetupMiddleware_InstallsIPExtractor(t *testing.T) {
	e := echo.New()
	SetupMiddleware(e, &Config{MaxUploadSize: "1M"}, zerolog.Nop())
	e.GET("/ip", func(c echo.Context) error { return c.String(http.StatusOK, c.RealIP()) })

	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.RemoteAddr = "192.0.2.10:4000"
	req.Header.Set(echo.HeaderXForwardedFor, "10.0.0.9")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "192.0.2.10", rec.Body.String())
}
