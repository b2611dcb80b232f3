package email

import (
	"context"

	"go.uber.org/zap"
)

// Sender delivers a single email. Delivery failures are reported to the
// caller, which decides whether they abort the triggering flow.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogSender writes outbound emails to the log instead of delivering them.
// Used in development and tests.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, to, subject, body string) error {
	s.log.Info("outbound email",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body))
	return nil
}
