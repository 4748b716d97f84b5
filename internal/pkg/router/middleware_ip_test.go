package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMiddlewareIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{name: "remote addr without port", remoteAddr: "192.0.2.1:1234", want: "192.0.2.1"},
		{name: "true client ip first", remoteAddr: "10.0.0.1:80",
			headers: map[string]string{"True-Client-IP": "203.0.113.7", "X-Real-IP": "203.0.113.8"}, want: "203.0.113.7"},
		{name: "first forwarded hop", remoteAddr: "10.0.0.1:80",
			headers: map[string]string{"X-Forwarded-For": " 198.51.100.4 , 10.0.0.2"}, want: "198.51.100.4"},
		{name: "garbage header falls through", remoteAddr: "10.0.0.1:80",
			headers: map[string]string{"X-Real-IP": "not-an-ip", "X-Forwarded-For": "198.51.100.9"}, want: "198.51.100.9"},
		{name: "mapped ipv6 unmapped", remoteAddr: "[::ffff:192.0.2.5]:443", want: "192.0.2.5"},
		{name: "unparsable remote kept", remoteAddr: "pipe", want: "pipe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			var got string
			h := middlewareIP(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				got = r.RemoteAddr
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			// Act
			h.ServeHTTP(httptest.NewRecorder(), req)

			// Assert
			assert.Equal(t, tt.want, got)
		})
	}
}
