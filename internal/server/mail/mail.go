// Package mail defines the boundary to the mail-sending collaborator. The
// auth core prepares the payload; actual delivery happens elsewhere.
package mail

import (
	"context"

	"github.com/opencal/authcore/internal/logging"
)

// Dispatcher hands a prepared password-reset message to the mail system.
// Callers treat the dispatch as fire-and-forget.
type Dispatcher interface {
	SendResetLink(ctx context.Context, from, to, resetURL string) error
}

// LogDispatcher records outgoing reset links instead of delivering them.
// It stands in for a real transport in development and tests.
type LogDispatcher struct {
	logger logging.Logger
}

func NewLogDispatcher(logger logging.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) SendResetLink(ctx context.Context, from, to, resetURL string) error {
	d.logger.Info(ctx, "password reset link prepared", "from", from, "to", to, "url", resetURL)
	return nil
}
