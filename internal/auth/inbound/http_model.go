package inbound

type RequestCodeRequest struct {
	Email string `json:"email"`
}

type RequestCodeResponse struct {
	Success bool `json:"success"`
}

func (RequestCodeResponse) Message() string {
	return "Login code sent. Please check your email."
}

type VerifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type VerifyCodeResponse struct {
	SessionToken string `json:"session_token"`
}

func (VerifyCodeResponse) Message() string {
	return "Login successful"
}
