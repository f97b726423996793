package application

import "errors"

// Business-rule errors raised at the point of detection and translated to
// HTTP statuses at the handlers.
var (
	// ErrConflict: signup against an email that already has an account.
	ErrConflict = errors.New("email already in use")

	// ErrInvalidCredentials covers both unknown email and wrong password;
	// callers must not be able to tell the two apart.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNoPendingSignup: verification or resend without a pending signup.
	ErrNoPendingSignup = errors.New("no pending signup found, please sign up again")

	// ErrCodeExpired: the one-time code (or login challenge) is stale.
	ErrCodeExpired = errors.New("verification code has expired")

	// ErrInvalidCode: hash mismatch on a live code.
	ErrInvalidCode = errors.New("invalid verification code")

	// ErrInvalidResetToken: unknown, consumed or expired reset token.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")

	// ErrDelivery: the out-of-band message could not be sent; any state
	// that assumed delivery has been rolled back.
	ErrDelivery = errors.New("could not send email, please try again later")

	// ErrUserNotFound: bearer-authenticated user no longer exists.
	ErrUserNotFound = errors.New("user not found")
)
