package mailer

import (
	"context"
	"time"
)

// Publisher is satisfied by helpers.RabbitPublisher.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// QueueMailer enqueues templated email jobs onto the delivery queue. A
// publish failure is reported synchronously so callers can roll back.
type QueueMailer struct {
	Pub      Publisher
	OTPTTL   time.Duration
	ResetTTL time.Duration
}

func NewQueueMailer(pub Publisher, otpTTL, resetTTL time.Duration) *QueueMailer {
	return &QueueMailer{Pub: pub, OTPTTL: otpTTL, ResetTTL: resetTTL}
}

func (m *QueueMailer) SendOTP(ctx context.Context, to, name, code, flow string) error {
	job := EmailJob{
		To:       to,
		Template: "otp_code",
		Data: map[string]any{
			"Name":           name,
			"Code":           code,
			"Flow":           flow,
			"ExpiresMinutes": int(m.OTPTTL.Minutes()),
		},
	}
	return m.Pub.PublishJSON(ctx, job)
}

func (m *QueueMailer) SendPasswordReset(ctx context.Context, to, name, resetURL string) error {
	job := EmailJob{
		To:       to,
		Template: "reset_password",
		Data: map[string]any{
			"Name":           name,
			"ResetURL":       resetURL,
			"ExpiresMinutes": int(m.ResetTTL.Minutes()),
		},
	}
	return m.Pub.PublishJSON(ctx, job)
}
