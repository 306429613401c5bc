package identity

import (
	"context"

	"github.com/kitandahub/kitanda/pkg/logger"
	"go.uber.org/zap"
)

// Mailer sends transactional email on behalf of the identity service
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer writes outgoing mail to the application log instead of
// delivering it. Used in development and as the default wiring until a
// real provider is configured.
type LogMailer struct {
	From string
}

// Send logs the message that would have been delivered
func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	logger.FromContext(ctx).Info("Outgoing mail",
		zap.String("from", m.From),
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}
