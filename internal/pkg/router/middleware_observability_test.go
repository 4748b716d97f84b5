package router

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shandysiswandi/otclogin/internal/pkg/instrument"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapturedBody_Render(t *testing.T) {
	keys := instrument.MaskKeys(nil)

	tests := []struct {
		name string
		in   []byte
		want any
	}{
		{name: "empty", in: nil, want: nil},
		{name: "json masked", in: []byte(`{"email":"a@b.com","code":"042517"}`),
			want: map[string]any{"email": "a@b.com", "code": instrument.Masked}},
		{name: "plain text", in: []byte("hello"), want: "hello"},
		{name: "binary", in: []byte{0xff, 0xfe}, want: "<binary body omitted>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &capturedBody{}
			c.keep(tt.in)
			assert.Equal(t, tt.want, c.render(keys))
		})
	}
}

func TestCaptureRequestBody_TruncatesButHandlerReadsAll(t *testing.T) {
	// Arrange
	payload := strings.Repeat("x", maxLoggedBodyBytes+10)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))

	// Act
	c := captureRequestBody(req)
	rest, err := io.ReadAll(req.Body)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, payload, string(rest))
	assert.True(t, c.truncated)
	assert.Equal(t, maxLoggedBodyBytes, c.buf.Len())
	assert.Equal(t, map[string]any{"body": strings.Repeat("x", maxLoggedBodyBytes), "truncated": true}, c.render(nil))
}

func TestResponseRecorder_FirstStatusWins(t *testing.T) {
	rec := &responseRecorder{ResponseWriter: httptest.NewRecorder()}

	_, err := rec.Write([]byte("ok"))
	require.NoError(t, err)
	rec.WriteHeader(http.StatusTeapot)

	assert.Equal(t, http.StatusOK, rec.statusCode())
	assert.Equal(t, 2, rec.bytes)
	assert.True(t, bytes.Equal([]byte("ok"), rec.body.buf.Bytes()))
}
