package principal

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/otclogin/internal/auth/entity"
	"github.com/shandysiswandi/otclogin/internal/auth/outbound/memory"
	"github.com/shandysiswandi/otclogin/internal/pkg/clock"
	"github.com/shandysiswandi/otclogin/internal/pkg/instrument"
	"github.com/shandysiswandi/otclogin/internal/pkg/jwt"
	"github.com/shandysiswandi/otclogin/internal/pkg/uid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingRepo struct{ err error }

func (f failingRepo) GetOrCreatePrincipal(context.Context, string) (*entity.Principal, bool, error) {
	return nil, false, f.err
}

func newJWT(t *testing.T) *jwt.Symmetric {
	t.Helper()

	j, err := jwt.NewHS512(jwt.Config{
		Secret: []byte(strings.Repeat("s", 64)),
		Issuer: "otclogin",
		Clock:  clock.New(),
		UUID:   uid.NewUUID(),
	})
	require.NoError(t, err)
	return j
}

func TestPrincipal_MintBoundToPrincipal(t *testing.T) {
	// Arrange
	ctx := context.Background()
	sf, err := uid.NewSnowflakeNode(1)
	require.NoError(t, err)
	j := newJWT(t)
	p := New(memory.NewPrincipals(sf, clock.New()), j, instrument.NewNoop())

	// Act
	pr, created, err := p.GetOrCreatePrincipal(ctx, "a@b.com")
	require.NoError(t, err)
	token, err := p.MintSessionToken(ctx, *pr)
	require.NoError(t, err)

	// Assert
	assert.True(t, created)
	claims, err := j.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, pr.ID, claims.PrincipalID)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestPrincipal_RepoFailure(t *testing.T) {
	want := errors.New("db down")
	p := New(failingRepo{err: want}, newJWT(t), instrument.NewNoop())

	pr, created, err := p.GetOrCreatePrincipal(context.Background(), "a@b.com")

	assert.ErrorIs(t, err, want)
	assert.Nil(t, pr)
	assert.False(t, created)
}
