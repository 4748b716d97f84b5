package event

import "time"

const LoginVerifiedDestination string = "auth.login.verified"

type LoginVerifiedMessage struct {
	PrincipalID  int64     `json:"principal_id,string"`
	Email        string    `json:"email"`
	NewPrincipal bool      `json:"new_principal"`
	VerifiedAt   time.Time `json:"verified_at"`
}
