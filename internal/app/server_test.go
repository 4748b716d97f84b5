package app

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/shandysiswandi/otclogin/internal/pkg/goroutine"
	"github.com/stretchr/testify/assert"
)

func TestApp_StopClosesNewestFirst(t *testing.T) {
	// Arrange
	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		ctx:        ctx,
		cancel:     cancel,
		goroutine:  goroutine.NewManager(1),
		httpServer: &http.Server{},
	}

	var order []string
	record := func(name string, err error) func(context.Context) error {
		return func(context.Context) error {
			order = append(order, name)
			return err
		}
	}
	a.onClose("config", record("config", nil))
	a.onClose("database", record("database", errors.New("already closed")))
	a.onClose("messaging", record("messaging", nil))

	// Act
	a.Stop(context.Background())

	// Assert
	assert.Equal(t, []string{"messaging", "database", "config"}, order)
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}
