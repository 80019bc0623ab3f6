package compute

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/aakankshagupta18/klean-backend/internal/domain/compute"
)

type fakeController struct {
	err error
}

func (f fakeController) Start(context.Context) (domain.State, error) {
	return domain.State{InstanceID: "i-1", PreviousState: "stopped", CurrentState: "pending"}, f.err
}

func (f fakeController) Stop(context.Context) (domain.State, error) {
	return domain.State{InstanceID: "i-1", PreviousState: "running", CurrentState: "stopping"}, f.err
}

func TestStartStop(t *testing.T) {
	svc := &Service{Controller: fakeController{}}

	res, err := svc.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ollama instance started", res.Status)
	assert.Equal(t, "pending", res.CurrentState)

	res, err = svc.Stop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stopping", res.CurrentState)
}

func TestNotConfigured(t *testing.T) {
	svc := &Service{}
	_, err := svc.Start(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
	_, err = svc.Stop(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestControllerError(t *testing.T) {
	svc := &Service{Controller: fakeController{err: errors.New("UnauthorizedOperation")}}
	_, err := svc.Start(context.Background())
	assert.EqualError(t, err, "UnauthorizedOperation")
}
