package compute

import (
	"context"
	"log/slog"

	domain "github.com/aakankshagupta18/klean-backend/internal/domain/compute"
)

// Result is what the start/stop endpoints report.
type Result struct {
	Status string `json:"status"`
	domain.State
}

// Service starts and stops the model host. A nil Controller means the
// deployment has no managed instance.
type Service struct {
	Controller domain.Controller
	Logger     *slog.Logger
}

func (s *Service) Start(ctx context.Context) (Result, error) {
	if s.Controller == nil {
		return Result{}, domain.ErrNotConfigured
	}
	st, err := s.Controller.Start(ctx)
	if err != nil {
		return Result{}, err
	}
	s.logger().Info("model host start requested", "instance", st.InstanceID, "state", st.CurrentState)
	return Result{Status: "Ollama instance started", State: st}, nil
}

func (s *Service) Stop(ctx context.Context) (Result, error) {
	if s.Controller == nil {
		return Result{}, domain.ErrNotConfigured
	}
	st, err := s.Controller.Stop(ctx)
	if err != nil {
		return Result{}, err
	}
	s.logger().Info("model host stop requested", "instance", st.InstanceID, "state", st.CurrentState)
	return Result{Status: "Ollama instance stopping", State: st}, nil
}

func (s *Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
