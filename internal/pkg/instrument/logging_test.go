package instrument

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelationID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetCorrelationID(ctx))

	ctx = SetCorrelationID(ctx, "cid-1")
	assert.Equal(t, "cid-1", GetCorrelationID(ctx))
}

func TestMaskHandler(t *testing.T) {
	var buf bytes.Buffer
	base := slog.NewJSONHandler(&buf, nil)
	logger := slog.New(&redactHandler{next: base, keys: MaskKeys([]string{" Email_Hint "})})

	logger.Info("verify",
		"email", "a@b.co",
		"email_hint", "a***",
		"code", "123456",
		"body", `{"email":"a@b.co","code":"654321"}`,
		slog.Group("resp", slog.String("session_token", "tok")),
	)

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	assert.Equal(t, "a@b.co", out["email"])
	assert.Equal(t, "***", out["code"])
	assert.Equal(t, "***", out["email_hint"])
	assert.NotContains(t, out["body"], "654321")
	assert.Equal(t, "***", out["resp"].(map[string]any)["session_token"])
}

func TestContextHandler_AddsCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(&contextHandler{Handler: slog.NewJSONHandler(&buf, nil), serviceName: "otclogin"})

	logger.InfoContext(SetCorrelationID(context.Background(), "cid-9"), "hello")

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "cid-9", out["_cID"])
	assert.Equal(t, "otclogin", out["service"])
}

func TestMaskKeys_AlwaysIncludesDefaults(t *testing.T) {
	keys := MaskKeys(nil)

	for _, field := range DefaultMaskFields {
		assert.True(t, IsMasked(keys, field), field)
	}
	assert.True(t, IsMasked(MaskKeys([]string{"  X-Api-Key "}), "x-api-key"))
	assert.False(t, IsMasked(keys, "email"))
}

func TestNewLogger_MasksWithoutConfiguredFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "otclogin", nil, nil)

	logger.Info("response sent",
		"body", map[string]any{"data": map[string]any{"session_token": "signed.jwt.token"}},
		"request", `{"email":"a@b.co","code":"042517"}`,
	)

	assert.NotContains(t, buf.String(), "signed.jwt.token")
	assert.NotContains(t, buf.String(), "042517")
	assert.Contains(t, buf.String(), "a@b.co")
	assert.Contains(t, buf.String(), `"service":"otclogin"`)
}

func TestMask(t *testing.T) {
	keys := MaskKeys(nil)

	got := Mask(map[string]any{
		"email": "a@b.co",
		"items": []any{map[string]any{"Code": "1"}},
		"hdr":   map[string]string{"Authorization": "Bearer x"},
	}, keys)

	assert.Equal(t, map[string]any{
		"email": "a@b.co",
		"items": []any{map[string]any{"Code": Masked}},
		"hdr":   map[string]any{"Authorization": Masked},
	}, got)
	assert.Equal(t, "plain", Mask("plain", keys))
}
