package router

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shandysiswandi/otclogin/internal/pkg/config"
	"github.com/shandysiswandi/otclogin/internal/pkg/goerror"
	"github.com/shandysiswandi/otclogin/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedID string

func (f fixedID) Generate() string { return string(f) }

type echoRequest struct {
	Name string `json:"name"`
}

type echoResponse struct {
	Name string `json:"name"`
}

func (echoResponse) Message() string { return "echoed" }

func newTestRouter(t *testing.T, yaml string) *Router {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml))
	require.NoError(t, err)

	r := NewRouter(Config{Config: cfg, UUID: fixedID("cid-generated")})
	r.POST("/echo", func(r *Request) (any, error) {
		var req echoRequest
		if err := r.DecodeBody(&req); err != nil {
			return nil, err
		}
		return echoResponse(req), nil
	})
	r.GET("/fail/:kind", func(r *Request) (any, error) {
		switch r.GetParam("kind") {
		case "business":
			return nil, goerror.NewBusiness("Invalid code", goerror.CodeForbidden)
		case "validation":
			return nil, goerror.NewInvalidInput(validator.V10ValidationError{"email": "email is a required field"})
		case "panic":
			panic("boom")
		default:
			return nil, errors.New("raw failure")
		}
	})

	return r
}

func serve(r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRouter_SuccessEnvelope(t *testing.T) {
	r := newTestRouter(t, "app:\n  name: test\n")

	rec := serve(r, http.MethodPost, "/echo", `{"name":"otc"}`, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cid-generated", rec.Header().Get(HeaderCorrelationID))
	body := decode(t, rec)
	assert.Equal(t, "echoed", body["message"])
	assert.Equal(t, map[string]any{"name": "otc"}, body["data"])
}

func TestRouter_CorrelationIDFromHeader(t *testing.T) {
	r := newTestRouter(t, "app:\n  name: test\n")

	rec := serve(r, http.MethodPost, "/echo", `{"name":"otc"}`, map[string]string{HeaderRequestID: "from-proxy"})

	assert.Equal(t, "from-proxy", rec.Header().Get(HeaderCorrelationID))
}

func TestRouter_ErrorEnvelope(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		kind   string
		msg    string
	}{
		{name: "malformed body", method: http.MethodPost, path: "/echo", body: `{"name":`, status: http.StatusUnprocessableEntity, kind: "ERROR_CODE_INVALID_ARGUMENT", msg: "Invalid request body"},
		{name: "unknown field", method: http.MethodPost, path: "/echo", body: `{"nope":1}`, status: http.StatusUnprocessableEntity, kind: "ERROR_CODE_INVALID_ARGUMENT", msg: "Invalid request body"},
		{name: "business", method: http.MethodGet, path: "/fail/business", status: http.StatusForbidden, kind: "ERROR_CODE_PERMISSION_DENIED", msg: "Invalid code"},
		{name: "raw error", method: http.MethodGet, path: "/fail/raw", status: http.StatusInternalServerError, kind: "ERROR_CODE_INTERNAL", msg: "Internal server error"},
		{name: "not found", method: http.MethodGet, path: "/missing", status: http.StatusNotFound, kind: "ERROR_CODE_NOT_FOUND", msg: "endpoint not found"},
		{name: "method not allowed", method: http.MethodGet, path: "/echo", status: http.StatusMethodNotAllowed, kind: "ERROR_CODE_INVALID_ARGUMENT", msg: "method not allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t, "app:\n  name: test\n")

			rec := serve(r, tt.method, tt.path, tt.body, nil)

			assert.Equal(t, tt.status, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, tt.kind, body["kind"])
			assert.Equal(t, tt.msg, body["message"])
		})
	}
}

func TestRouter_ValidationFields(t *testing.T) {
	r := newTestRouter(t, "app:\n  name: test\n")

	rec := serve(r, http.MethodGet, "/fail/validation", "", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "ERROR_CODE_INVALID_ARGUMENT", body["kind"])
	assert.Equal(t, map[string]any{"email": "email is a required field"}, body["error"])
}

func TestRouter_RecoversPanic(t *testing.T) {
	r := newTestRouter(t, "app:\n  name: test\n")

	rec := serve(r, http.MethodGet, "/fail/panic", "", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "ERROR_CODE_INTERNAL", decode(t, rec)["kind"])
}

func TestRouter_Maintenance(t *testing.T) {
	r := newTestRouter(t, "app:\n  maintenance:\n    endpoints: [\"/echo\"]\n")

	rec := serve(r, http.MethodPost, "/echo", `{"name":"otc"}`, nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "ERROR_CODE_UNAVAILABLE", decode(t, rec)["kind"])
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { order = append(order, "handler") }), mw("outer"), nil, mw("inner"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestRouter_LogsMaskSecretsWithoutConfiguredFields(t *testing.T) {
	// Arrange
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	cfg, err := config.NewViperFromBytes("yaml", []byte("app:\n  name: test\n"))
	require.NoError(t, err)

	r := NewRouter(Config{Config: cfg, UUID: fixedID("cid-generated")})
	r.POST("/verify", func(r *Request) (any, error) {
		var req map[string]any
		if err := r.DecodeBody(&req); err != nil {
			return nil, err
		}
		return map[string]any{"session_token": "signed.jwt.token"}, nil
	})

	// Act
	rec := serve(r, http.MethodPost, "/verify", `{"email":"a@b.com","code":"042517"}`,
		map[string]string{"Authorization": "Bearer secret-header"})

	// Assert
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "signed.jwt.token")

	out := logs.String()
	assert.Contains(t, out, "a@b.com")
	assert.NotContains(t, out, "042517")
	assert.NotContains(t, out, "signed.jwt.token")
	assert.NotContains(t, out, "secret-header")
}
