package memory

import (
	"context"
	"sync"

	"github.com/shandysiswandi/otclogin/internal/auth/entity"
	"github.com/shandysiswandi/otclogin/internal/pkg/clock"
	"github.com/shandysiswandi/otclogin/internal/pkg/uid"
)

type Principals struct {
	mu      sync.Mutex
	byEmail map[string]entity.Principal
	uid     uid.NumberID
	clock   clock.Clocker
}

func NewPrincipals(uid uid.NumberID, clock clock.Clocker) *Principals {
	return &Principals{
		byEmail: make(map[string]entity.Principal),
		uid:     uid,
		clock:   clock,
	}
}

// GetOrCreatePrincipal returns the principal of email, creating a verified one
// when none exists. The bool reports whether it was created.
func (p *Principals) GetOrCreatePrincipal(_ context.Context, email string) (*entity.Principal, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if pr, ok := p.byEmail[email]; ok {
		return &pr, false, nil
	}

	pr := entity.Principal{
		ID:            p.uid.Generate(),
		Email:         email,
		EmailVerified: true,
		CreatedAt:     p.clock.Now(),
	}
	p.byEmail[email] = pr

	return &pr, true, nil
}
