package notify

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Service shields callers from a slow or failing alert channel: each alert gets
// its own deadline, independent of the request, and Notify never outlives it.
type Service struct {
	infra   Notificator
	timeout time.Duration
	log     *zap.Logger
}

func NewService(infra Notificator, log *zap.Logger) *Service {
	if infra == nil {
		infra = Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{infra: infra, timeout: 5 * time.Second, log: log}
}

func (s *Service) Notify(ctx context.Context, err error, details string) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	// Send в tgbotapi не принимает ctx, поэтому ждём его в горутине
	done := make(chan error, 1)
	go func() { done <- s.infra.Notify(ctx, err, details) }()

	select {
	case nerr := <-done:
		if nerr != nil {
			s.log.Warn("notify failed", zap.Error(nerr))
		}
		return nerr
	case <-ctx.Done():
		s.log.Warn("notify timed out", zap.Duration("timeout", s.timeout))
		return ctx.Err()
	}
}
