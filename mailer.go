package contacts

import (
	"context"
)

// LogMailer writes confirmation emails to the log instead of delivering
// them. It is the default mailer for local development; deployments plug a
// real transport behind the Mailer interface.
type LogMailer struct {
	logger Logger
}

func NewLogMailer(logger Logger) *LogMailer {
	if logger == nil {
		logger = defLogger{}
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendConfirmation(ctx context.Context, email, username, confirmURL string) error {
	m.logger.Info("confirmation email",
		"to", email,
		"username", username,
		"confirm_url", confirmURL,
	)
	return nil
}
