package mailer

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogMailer logs instead of delivering. Used in development when sending
// is disabled; the code ends up in the log so flows stay testable.
type LogMailer struct {
	Logger *logrus.Logger
}

func (m *LogMailer) SendOTP(_ context.Context, to, name, code, flow string) error {
	m.Logger.WithFields(logrus.Fields{"to": to, "name": name, "code": code, "flow": flow}).Info("mail sending disabled, otp logged")
	return nil
}

func (m *LogMailer) SendPasswordReset(_ context.Context, to, name, resetURL string) error {
	m.Logger.WithFields(logrus.Fields{"to": to, "name": name, "reset_url": resetURL}).Info("mail sending disabled, reset link logged")
	return nil
}
