package inbound

import (
	"context"

	"github.com/shandysiswandi/otclogin/internal/auth/usecase"
	"github.com/shandysiswandi/otclogin/internal/pkg/router"
)

type uc interface {
	RequestCode(ctx context.Context, in usecase.RequestCodeInput) (*usecase.RequestCodeOutput, error)
	VerifyCode(ctx context.Context, in usecase.VerifyCodeInput) (*usecase.VerifyCodeOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/api/v1/auth/code/request", end.RequestCode)
	r.POST("/api/v1/auth/code/verify", end.VerifyCode)
}
