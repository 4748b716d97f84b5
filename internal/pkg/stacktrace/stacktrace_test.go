package stacktrace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInternalPaths(t *testing.T) {
	stack := []byte(`goroutine 7 [running]:
runtime/debug.Stack()
	/usr/local/go/src/runtime/debug/stack.go:26 +0x5e
github.com/shandysiswandi/otclogin/internal/pkg/stacktrace.InternalPaths(...)
	/src/otclogin/internal/pkg/stacktrace/stacktrace.go:12 +0x10
github.com/shandysiswandi/otclogin/internal/auth/usecase.(*Usecase).VerifyCode(...)
	/src/otclogin/internal/auth/usecase/verify_code.go:42 +0x1a5
net/http.HandlerFunc.ServeHTTP(...)
	/usr/local/go/src/net/http/server.go:2220 +0x29
github.com/shandysiswandi/otclogin/internal/pkg/router.middlewareRecoverer.func1()
	/src/otclogin/internal/pkg/router/middleware_recover.go:40
`)

	assert.Equal(t, []string{
		"internal/auth/usecase/verify_code.go:42",
		"internal/pkg/router/middleware_recover.go:40",
	}, InternalPaths(stack))
}

func TestInternalPaths_NoInternalFrames(t *testing.T) {
	assert.Empty(t, InternalPaths([]byte("goroutine 1 [running]:\nmain.main()\n\t/src/main.go:10 +0x1\n")))
}
