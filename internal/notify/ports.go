package notify

import "context"

type Notificator interface {
	// Notify — отправляет сообщение об ошибке админу
	Notify(ctx context.Context, err error, details string) error
}

// Nop drops every alert.
type Nop struct{}

func (Nop) Notify(context.Context, error, string) error { return nil }
