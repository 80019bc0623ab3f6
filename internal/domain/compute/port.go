package compute

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when no instance is configured.
var ErrNotConfigured = errors.New("compute instance not configured")

// Controller starts and stops the instance hosting the models.
type Controller interface {
	Start(ctx context.Context) (State, error)
	Stop(ctx context.Context) (State, error)
}

// ErrUnavailable wraps failures reported by the cloud API.
var ErrUnavailable = errors.New("compute api unavailable")
