package inbound

import (
	"github.com/shandysiswandi/otclogin/internal/auth/usecase"
	"github.com/shandysiswandi/otclogin/internal/pkg/router"
)

// HTTPEndpoint exposes the login code workflow over HTTP.
type HTTPEndpoint struct {
	uc uc
}

// RequestCode emails a fresh login code to the address.
// @Summary Request login code
// @Description Issues a new one-time code for the email, replacing any outstanding one, and emails it.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RequestCodeRequest true "Request code payload"
// @Success 200 {object} router.successResponse{data=RequestCodeResponse} "Code sent"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 412 {object} router.errorResponse "Email delivery is not configured"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/code/request [post]
func (h *HTTPEndpoint) RequestCode(r *router.Request) (any, error) {
	var req RequestCodeRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.RequestCode(r.Context(), usecase.RequestCodeInput{
		Email: req.Email,
	})
	if err != nil {
		return nil, err
	}

	return RequestCodeResponse{Success: resp.Success}, nil
}

// VerifyCode exchanges a valid login code for a session token.
// @Summary Verify login code
// @Description Checks the code against the outstanding one for the email. On success the code is consumed and a session token is returned.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body VerifyCodeRequest true "Verify code payload"
// @Success 200 {object} router.successResponse{data=VerifyCodeResponse} "Session token"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 403 {object} router.errorResponse "Invalid code"
// @Failure 404 {object} router.errorResponse "No active code"
// @Failure 410 {object} router.errorResponse "Code has expired"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 429 {object} router.errorResponse "Too many attempts"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/code/verify [post]
func (h *HTTPEndpoint) VerifyCode(r *router.Request) (any, error) {
	var req VerifyCodeRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.VerifyCode(r.Context(), usecase.VerifyCodeInput{
		Email: req.Email,
		Code:  req.Code,
	})
	if err != nil {
		return nil, err
	}

	return VerifyCodeResponse{SessionToken: resp.SessionToken}, nil
}
