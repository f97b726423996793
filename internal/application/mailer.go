package application

import "context"

// Mailer is the out-of-band delivery side-channel. Implementations report
// an error when the message could not be handed off, so callers can roll
// back state that assumed delivery succeeded.
type Mailer interface {
	SendOTP(ctx context.Context, to, name, code, flow string) error
	SendPasswordReset(ctx context.Context, to, name, resetURL string) error
}
