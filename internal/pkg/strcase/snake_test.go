package strcase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToLowerSnake(t *testing.T) {
	tests := map[string]string{
		"":             "",
		"Email":        "email",
		"SessionToken": "session_token",
		"PrincipalID":  "principal_id",
		"HTTPServer":   "http_server",
		"code2FA":      "code2_fa",
		"already_ok":   "already_ok",
	}

	for in, want := range tests {
		assert.Equal(t, want, ToLowerSnake(in), in)
	}
}
