package application

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/coinquest/coinquest-api/internal/domain/entity"
	"github.com/coinquest/coinquest-api/internal/domain/repository"
	"github.com/coinquest/coinquest-api/internal/infrastructure/pending"
	"github.com/coinquest/coinquest-api/pkg/helpers"
)

// Auth flows.
const (
	FlowSignup = "signup"
	FlowLogin  = "login"
)

// AuthService drives the signup/login → code-verification → session
// state machine. It owns the cooldown and replay-prevention policy; the
// pending store and the user repository provide the atomic conditional
// writes it relies on.
type AuthService struct {
	Users    repository.UserRepository
	Wallets  repository.WalletRepository
	Progress repository.ProgressRepository
	Pending  pending.Store
	JWT      *helpers.JWTManager
	Mailer   Mailer
	Logger   *logrus.Logger

	OTPTTL         time.Duration
	ResendCooldown time.Duration
	ResetTokenTTL  time.Duration
	ResetURL       string

	now func() time.Time
}

func NewAuthService(
	users repository.UserRepository,
	wallets repository.WalletRepository,
	progress repository.ProgressRepository,
	pendingStore pending.Store,
	jwt *helpers.JWTManager,
	mailer Mailer,
	logger *logrus.Logger,
	otpTTL, resendCooldown, resetTokenTTL time.Duration,
	resetURL string,
) *AuthService {
	return &AuthService{
		Users:          users,
		Wallets:        wallets,
		Progress:       progress,
		Pending:        pendingStore,
		JWT:            jwt,
		Mailer:         mailer,
		Logger:         logger,
		OTPTTL:         otpTTL,
		ResendCooldown: resendCooldown,
		ResetTokenTTL:  resetTokenTTL,
		ResetURL:       resetURL,
		now:            time.Now,
	}
}

// NormalizeEmail case-folds and trims an email for use as a unique key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type SignupInput struct {
	Name     string
	Email    string
	Password string
	Age      *int
	Grade    string
	School   string
}

// Signup starts the signup flow: conflict check, pending entry, code out
// of band. A duplicate submission while an entry is live succeeds without
// issuing a second code, so exactly one code is outstanding per email.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) error {
	email := NormalizeEmail(in.Email)

	_, err := s.Users.GetByEmail(ctx, email)
	if err == nil {
		return ErrConflict
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	code, codeHash, err := helpers.GenerateOTP()
	if err != nil {
		return err
	}
	created, err := s.Pending.Put(ctx, email, pending.Registration{
		Name:     in.Name,
		Email:    email,
		Password: in.Password,
		Age:      in.Age,
		Grade:    in.Grade,
		School:   in.School,
		CodeHash: codeHash,
	}, s.OTPTTL)
	if err != nil {
		return err
	}
	if !created {
		// A live entry already exists; its code stands and the one we just
		// generated is discarded unsent.
		return nil
	}

	if err := s.Mailer.SendOTP(ctx, email, in.Name, code, FlowSignup); err != nil {
		s.Logger.WithError(err).WithField("email", email).Error("signup code delivery failed")
		_, _ = s.Pending.Consume(ctx, email)
		return ErrDelivery
	}
	return nil
}

// Login validates credentials and issues a login challenge on the account
// row. Unknown email and wrong password are indistinguishable to callers.
func (s *AuthService) Login(ctx context.Context, email, password string) error {
	email = NormalizeEmail(email)

	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return ErrInvalidCredentials
	}

	code, codeHash, err := helpers.GenerateOTP()
	if err != nil {
		return err
	}
	stored, err := s.Users.SetLoginChallenge(ctx, u.ID, codeHash, s.now().Add(s.OTPTTL))
	if err != nil {
		return err
	}
	if !stored {
		// A live challenge is already outstanding; do not reissue.
		return nil
	}

	if err := s.Mailer.SendOTP(ctx, email, u.Name, code, FlowLogin); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("login code delivery failed")
		_ = s.Users.ClearLoginChallenge(ctx, u.ID)
		return ErrDelivery
	}
	return nil
}

// ResendOTP reissues a code after the cooldown window. The signup flow is
// guarded by the pending store's cooldown; the login flow requires the
// password again so a stolen email alone cannot keep codes flowing.
func (s *AuthService) ResendOTP(ctx context.Context, email, flow, password string) error {
	email = NormalizeEmail(email)

	if flow == FlowSignup {
		code, codeHash, err := helpers.GenerateOTP()
		if err != nil {
			return err
		}
		reg, err := s.Pending.ReplaceCode(ctx, email, codeHash, s.OTPTTL)
		if err != nil {
			if errors.Is(err, pending.ErrNotFound) {
				return ErrNoPendingSignup
			}
			return err
		}
		if err := s.Mailer.SendOTP(ctx, email, reg.Name, code, FlowSignup); err != nil {
			s.Logger.WithError(err).WithField("email", email).Error("signup code redelivery failed")
			_, _ = s.Pending.Consume(ctx, email)
			return ErrDelivery
		}
		return nil
	}

	// Login flow: re-validate the password before reissuing.
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return ErrInvalidCredentials
	}

	now := s.now()
	if u.HasLiveLoginChallenge(now) {
		issuedAt := u.LoginCodeExpiresAt.Add(-s.OTPTTL)
		if wait := s.ResendCooldown - now.Sub(issuedAt); wait > 0 {
			return &pending.CooldownError{Wait: wait}
		}
	}

	code, codeHash, err := helpers.GenerateOTP()
	if err != nil {
		return err
	}
	if err := s.Users.ReplaceLoginChallenge(ctx, u.ID, codeHash, now.Add(s.OTPTTL)); err != nil {
		return err
	}
	if err := s.Mailer.SendOTP(ctx, email, u.Name, code, FlowLogin); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("login code redelivery failed")
		_ = s.Users.ClearLoginChallenge(ctx, u.ID)
		return ErrDelivery
	}
	return nil
}

// VerifyResult is the terminal state of a successful verification.
type VerifyResult struct {
	Token   string
	Expires time.Time
	User    *entity.User
	Created bool // true when the account was materialized by this call
}

// VerifyOTP checks the submitted code and completes the flow: signup
// materializes the account, login clears the challenge and updates the
// streak. A wrong code never mutates state.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code, flow string) (*VerifyResult, error) {
	email = NormalizeEmail(email)
	codeHash := helpers.HashOTP(code)

	if flow == FlowSignup {
		return s.verifySignup(ctx, email, codeHash)
	}
	return s.verifyLogin(ctx, email, codeHash)
}

func (s *AuthService) verifySignup(ctx context.Context, email, codeHash string) (*VerifyResult, error) {
	reg, err := s.Pending.Get(ctx, email)
	if err != nil {
		if errors.Is(err, pending.ErrNotFound) {
			return nil, ErrNoPendingSignup
		}
		return nil, err
	}
	now := s.now()
	if !reg.Live(now) {
		_, _ = s.Pending.Consume(ctx, email)
		return nil, ErrCodeExpired
	}
	if !hashEqual(reg.CodeHash, codeHash) {
		return nil, ErrInvalidCode
	}

	// Consume is the single point of no return; a racing verification for
	// the same email loses here and cannot create a second account.
	reg, err = s.Pending.Consume(ctx, email)
	if err != nil {
		if errors.Is(err, pending.ErrNotFound) {
			return nil, ErrNoPendingSignup
		}
		return nil, err
	}
	if !hashEqual(reg.CodeHash, codeHash) {
		return nil, ErrInvalidCode
	}

	passwordHash, err := helpers.HashPassword(reg.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		Name:     reg.Name,
		Email:    email,
		Password: passwordHash,
		Age:      reg.Age,
		Grade:    reg.Grade,
		School:   reg.School,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	if err := s.ensureCompanions(ctx, u.ID); err != nil {
		return nil, err
	}

	token, exp, err := s.JWT.GenerateToken(u.ID)
	if err != nil {
		return nil, err
	}
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID}).Info("account created")
	return &VerifyResult{Token: token, Expires: exp, User: u, Created: true}, nil
}

func (s *AuthService) verifyLogin(ctx context.Context, email, codeHash string) (*VerifyResult, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCodeExpired
		}
		return nil, err
	}
	now := s.now()
	if !u.HasLiveLoginChallenge(now) {
		return nil, ErrCodeExpired
	}
	if !hashEqual(u.LoginCodeHash, codeHash) {
		return nil, ErrInvalidCode
	}

	ok, err := s.Users.ConsumeLoginChallenge(ctx, u.ID, codeHash, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost a race with another verification or the code just expired.
		return nil, ErrCodeExpired
	}

	current, longest := NextStreak(u.CurrentStreak, u.LongestStreak, u.LastLoginAt, now)
	if err := s.Users.UpdateStreak(ctx, u.ID, current, longest, now); err != nil {
		return nil, err
	}
	u.CurrentStreak = current
	u.LongestStreak = longest
	u.LastLoginAt = now
	u.LoginCodeHash = ""
	u.LoginCodeExpiresAt = nil

	if err := s.ensureCompanions(ctx, u.ID); err != nil {
		return nil, err
	}

	token, exp, err := s.JWT.GenerateToken(u.ID)
	if err != nil {
		return nil, err
	}
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID}).Info("login verified")
	return &VerifyResult{Token: token, Expires: exp, User: u}, nil
}

// ensureCompanions creates the wallet and progress records exactly once.
func (s *AuthService) ensureCompanions(ctx context.Context, userID string) error {
	if err := s.Wallets.EnsureExists(ctx, userID); err != nil {
		return err
	}
	return s.Progress.EnsureExists(ctx, userID)
}

// ForgotPassword issues a single-use reset token. The response is the
// same whether or not the account exists.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = NormalizeEmail(email)

	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	token, tokenHash, err := helpers.GenerateResetToken()
	if err != nil {
		return err
	}
	if err := s.Users.SetResetToken(ctx, u.ID, tokenHash, s.now().Add(s.ResetTokenTTL)); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/%s", strings.TrimRight(s.ResetURL, "/"), token)
	if err := s.Mailer.SendPasswordReset(ctx, email, u.Name, resetURL); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("reset email delivery failed")
		_ = s.Users.ClearResetToken(ctx, u.ID)
		return ErrDelivery
	}
	return nil
}

// ResetPassword consumes a reset token and stores the new password hash.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	u, err := s.Users.GetByResetToken(ctx, helpers.HashResetToken(token), s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	passwordHash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Users.UpdatePassword(ctx, u.ID, passwordHash); err != nil {
		return err
	}
	return s.Users.ClearResetToken(ctx, u.ID)
}

// ChangePassword re-verifies the current password before storing the new one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	// GetByEmail is the credentialed fetch; GetByID omits the hash.
	cred, err := s.Users.GetByEmail(ctx, u.Email)
	if err != nil {
		return err
	}
	if !helpers.CompareHashAndPassword(cred.Password, currentPassword) {
		return ErrInvalidCredentials
	}
	passwordHash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.Users.UpdatePassword(ctx, userID, passwordHash)
}

// GetProfile returns the sanitized account for the bearer subject.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

type UpdateProfileInput struct {
	Name           string
	Age            *int
	Grade          string
	School         string
	KnowledgeLevel string
}

// UpdateProfile applies the provided non-empty fields.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if in.Name != "" {
		u.Name = in.Name
	}
	if in.Age != nil {
		u.Age = in.Age
	}
	if in.Grade != "" {
		u.Grade = in.Grade
	}
	if in.School != "" {
		u.School = in.School
	}
	if in.KnowledgeLevel != "" {
		u.KnowledgeLevel = in.KnowledgeLevel
	}
	if err := s.Users.UpdateProfile(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// hashEqual compares two hex digests without early exit.
func hashEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
