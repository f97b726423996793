package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinquest/coinquest-api/internal/domain/entity"
	"github.com/coinquest/coinquest-api/internal/domain/repository"
	"github.com/coinquest/coinquest-api/internal/infrastructure/pending"
	"github.com/coinquest/coinquest-api/pkg/helpers"
)

// fakeUserRepo is an in-memory UserRepository with the same conditional
// write semantics as the postgres implementation.
type fakeUserRepo struct {
	users map[string]*entity.User
	seq   int
	now   func() time.Time
}

func newFakeUserRepo(now func() time.Time) *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*entity.User), now: now}
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	for _, cur := range r.users {
		if cur.Email == u.Email {
			return errors.New("duplicate email")
		}
	}
	r.seq++
	u.ID = fmt.Sprintf("u%d", r.seq)
	u.Level = 1
	u.CurrentStreak = 1
	u.LongestStreak = 1
	u.KnowledgeLevel = "beginner"
	u.LastLoginAt = r.now()
	u.CreatedAt = r.now()
	u.UpdatedAt = r.now()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	cp.Password = ""
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, u *entity.User) error {
	cur, ok := r.users[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.Name = u.Name
	cur.Age = u.Age
	cur.Grade = u.Grade
	cur.School = u.School
	cur.KnowledgeLevel = u.KnowledgeLevel
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Password = passwordHash
	return nil
}

func (r *fakeUserRepo) SetLoginChallenge(_ context.Context, id, codeHash string, expiresAt time.Time) (bool, error) {
	u, ok := r.users[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	if u.HasLiveLoginChallenge(r.now()) {
		return false, nil
	}
	u.LoginCodeHash = codeHash
	u.LoginCodeExpiresAt = &expiresAt
	return true, nil
}

func (r *fakeUserRepo) ReplaceLoginChallenge(_ context.Context, id, codeHash string, expiresAt time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.LoginCodeHash = codeHash
	u.LoginCodeExpiresAt = &expiresAt
	return nil
}

func (r *fakeUserRepo) ConsumeLoginChallenge(_ context.Context, id, codeHash string, now time.Time) (bool, error) {
	u, ok := r.users[id]
	if !ok {
		return false, nil
	}
	if u.LoginCodeHash == "" || u.LoginCodeHash != codeHash ||
		u.LoginCodeExpiresAt == nil || !now.Before(*u.LoginCodeExpiresAt) {
		return false, nil
	}
	u.LoginCodeHash = ""
	u.LoginCodeExpiresAt = nil
	return true, nil
}

func (r *fakeUserRepo) ClearLoginChallenge(_ context.Context, id string) error {
	if u, ok := r.users[id]; ok {
		u.LoginCodeHash = ""
		u.LoginCodeExpiresAt = nil
	}
	return nil
}

func (r *fakeUserRepo) UpdateStreak(_ context.Context, id string, current, longest int, lastLoginAt time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.CurrentStreak = current
	u.LongestStreak = longest
	u.LastLoginAt = lastLoginAt
	return nil
}

func (r *fakeUserRepo) SetResetToken(_ context.Context, id, tokenHash string, expiresAt time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.ResetTokenHash = tokenHash
	u.ResetTokenExpiresAt = &expiresAt
	return nil
}

func (r *fakeUserRepo) ClearResetToken(_ context.Context, id string) error {
	if u, ok := r.users[id]; ok {
		u.ResetTokenHash = ""
		u.ResetTokenExpiresAt = nil
	}
	return nil
}

func (r *fakeUserRepo) GetByResetToken(_ context.Context, tokenHash string, now time.Time) (*entity.User, error) {
	for _, u := range r.users {
		if u.ResetTokenHash != "" && u.ResetTokenHash == tokenHash &&
			u.ResetTokenExpiresAt != nil && now.Before(*u.ResetTokenExpiresAt) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakeWalletRepo struct {
	ensured map[string]int
}

func (r *fakeWalletRepo) GetByUserID(context.Context, string) (*entity.Wallet, error) {
	return nil, repository.ErrNotFound
}
func (r *fakeWalletRepo) EnsureExists(_ context.Context, userID string) error {
	if r.ensured == nil {
		r.ensured = make(map[string]int)
	}
	r.ensured[userID]++
	return nil
}
func (r *fakeWalletRepo) ListTransactions(context.Context, string, int) ([]entity.WalletTransaction, error) {
	return nil, nil
}
func (r *fakeWalletRepo) UpdateExpenses(context.Context, string, entity.Expenses) (*entity.Wallet, error) {
	return nil, repository.ErrNotFound
}

type fakeProgressRepo struct {
	ensured map[string]int
}

func (r *fakeProgressRepo) GetByUserID(context.Context, string) (*entity.Progress, error) {
	return nil, repository.ErrNotFound
}
func (r *fakeProgressRepo) EnsureExists(_ context.Context, userID string) error {
	if r.ensured == nil {
		r.ensured = make(map[string]int)
	}
	r.ensured[userID]++
	return nil
}
func (r *fakeProgressRepo) Update(context.Context, *entity.Progress) error { return nil }

// fakeMailer records every send and can be told to fail.
type fakeMailer struct {
	fail  bool
	codes []string
	flows []string
	urls  []string
}

func (m *fakeMailer) SendOTP(_ context.Context, _, _, code, flow string) error {
	if m.fail {
		return errors.New("smtp down")
	}
	m.codes = append(m.codes, code)
	m.flows = append(m.flows, flow)
	return nil
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, _, _, resetURL string) error {
	if m.fail {
		return errors.New("smtp down")
	}
	m.urls = append(m.urls, resetURL)
	return nil
}

func (m *fakeMailer) lastCode(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, m.codes, "expected a code to have been sent")
	return m.codes[len(m.codes)-1]
}

type authFixture struct {
	svc    *AuthService
	users  *fakeUserRepo
	wallet *fakeWalletRepo
	prog   *fakeProgressRepo
	mail   *fakeMailer
	store  pending.Store
	clock  time.Time
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	f := &authFixture{clock: time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)}
	f.users = newFakeUserRepo(func() time.Time { return f.clock })
	f.wallet = &fakeWalletRepo{}
	f.prog = &fakeProgressRepo{}
	f.mail = &fakeMailer{}
	f.store = pending.NewMemoryStore(time.Minute, logger)

	f.svc = NewAuthService(f.users, f.wallet, f.prog, f.store,
		helpers.NewJWTManager("test-secret", time.Hour), f.mail, logger,
		10*time.Minute, time.Minute, 10*time.Minute, "https://app.example/reset-password")
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func (f *authFixture) signupInput(email string) SignupInput {
	return SignupInput{Name: "Casey", Email: email, Password: "S3cure!pass"}
}

func TestSignupSendsCode(t *testing.T) {
	f := newAuthFixture(t)

	require.NoError(t, f.svc.Signup(context.Background(), f.signupInput("kid@example.com")))
	assert.Len(t, f.mail.codes, 1)
	assert.Equal(t, FlowSignup, f.mail.flows[0])

	_, err := f.store.Get(context.Background(), "kid@example.com")
	assert.NoError(t, err, "pending entry should exist")
}

func TestSignupNormalizesEmail(t *testing.T) {
	f := newAuthFixture(t)

	require.NoError(t, f.svc.Signup(context.Background(), f.signupInput("  Kid@Example.COM ")))
	_, err := f.store.Get(context.Background(), "kid@example.com")
	assert.NoError(t, err)
}

func TestSignupDuplicateWhilePendingDoesNotResend(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Signup(ctx, f.signupInput("kid@example.com")))
	require.NoError(t, f.svc.Signup(ctx, f.signupInput("kid@example.com")))

	assert.Len(t, f.mail.codes, 1, "second submission must not send another code")
}

func TestSignupConflictWithExistingAccount(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.users.Create(ctx, &entity.User{Name: "Casey", Email: "kid@example.com"}))
	err := f.svc.Signup(ctx, f.signupInput("kid@example.com"))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestSignupDeliveryFailureRollsBack(t *testing.T) {
	f := newAuthFixture(t)
	f.mail.fail = true
	ctx := context.Background()

	err := f.svc.Signup(ctx, f.signupInput("kid@example.com"))
	assert.ErrorIs(t, err, ErrDelivery)

	_, err = f.store.Get(ctx, "kid@example.com")
	assert.ErrorIs(t, err, pending.ErrNotFound, "pending entry must be removed so signup can restart")
}

func TestVerifySignupCreatesAccount(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Signup(ctx, f.signupInput("kid@example.com")))
	code := f.mail.lastCode(t)

	res, err := f.svc.VerifyOTP(ctx, "kid@example.com", code, FlowSignup)
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "kid@example.com", res.User.Email)
	assert.Equal(t, 1, res.User.Level)

	// Stored password is a bcrypt hash, never the plaintext.
	stored, err := f.users.GetByEmail(ctx, "kid@example.com")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.Password, "$2"))
	assert.True(t, helpers.CompareHashAndPassword(stored.Password, "S3cure!pass"))

	// Companion records created exactly once.
	assert.Equal(t, 1, f.wallet.ensured[res.User.ID])
	assert.Equal(t, 1, f.prog.ensured[res.User.ID])

	// The pending entry is gone; the code cannot be replayed.
	_, err = f.svc.VerifyOTP(ctx, "kid@example.com", code, FlowSignup)
	assert.ErrorIs(t, err, ErrNoPendingSignup)
}

func TestVerifySignupWrongCodeLeavesPendingIntact(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Signup(ctx, f.signupInput("kid@example.com")))
	code := f.mail.lastCode(t)

	wrong := "0000000"
	if wrong == code {
		wrong = "0000001"
	}
	_, err := f.svc.VerifyOTP(ctx, "kid@example.com", wrong, FlowSignup)
	assert.ErrorIs(t, err, ErrInvalidCode)

	// The right code still works afterwards.
	res, err := f.svc.VerifyOTP(ctx, "kid@example.com", code, FlowSignup)
	require.NoError(t, err)
	assert.True(t, res.Created)
}

func TestResendSignupCooldown(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Signup(ctx, f.signupInput("kid@example.com")))

	err := f.svc.ResendOTP(ctx, "kid@example.com", FlowSignup, "")
	var cooldown *pending.CooldownError
	require.ErrorAs(t, err, &cooldown)
	assert.Greater(t, cooldown.WaitSeconds(), 0)
	assert.Len(t, f.mail.codes, 1, "no code sent while cooling down")
}

func TestResendSignupWithoutPending(t *testing.T) {
	f := newAuthFixture(t)
	err := f.svc.ResendOTP(context.Background(), "ghost@example.com", FlowSignup, "")
	assert.ErrorIs(t, err, ErrNoPendingSignup)
}

func loginReady(t *testing.T, f *authFixture) *entity.User {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.svc.Signup(ctx, f.signupInput("kid@example.com")))
	res, err := f.svc.VerifyOTP(ctx, "kid@example.com", f.mail.lastCode(t), FlowSignup)
	require.NoError(t, err)
	return res.User
}

func TestLoginIssuesChallenge(t *testing.T) {
	f := newAuthFixture(t)
	u := loginReady(t, f)
	ctx := context.Background()

	require.NoError(t, f.svc.Login(ctx, "kid@example.com", "S3cure!pass"))
	assert.Equal(t, FlowLogin, f.mail.flows[len(f.mail.flows)-1])

	stored := f.users.users[u.ID]
	assert.NotEmpty(t, stored.LoginCodeHash)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	loginReady(t, f)

	err := f.svc.Login(context.Background(), "kid@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmailIndistinguishable(t *testing.T) {
	f := newAuthFixture(t)
	loginReady(t, f)

	errUnknown := f.svc.Login(context.Background(), "ghost@example.com", "S3cure!pass")
	errWrongPwd := f.svc.Login(context.Background(), "kid@example.com", "wrong")
	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.Equal(t, errWrongPwd, errUnknown)
}

func TestLoginSecondAttemptDoesNotReissue(t *testing.T) {
	f := newAuthFixture(t)
	loginReady(t, f)
	ctx := context.Background()

	require.NoError(t, f.svc.Login(ctx, "kid@example.com", "S3cure!pass"))
	sent := len(f.mail.codes)
	require.NoError(t, f.svc.Login(ctx, "kid@example.com", "S3cure!pass"))
	assert.Equal(t, sent, len(f.mail.codes), "live challenge must not be replaced")
}

func TestLoginDeliveryFailureClearsChallenge(t *testing.T) {
	f := newAuthFixture(t)
	u := loginReady(t, f)
	ctx := context.Background()

	f.mail.fail = true
	err := f.svc.Login(ctx, "kid@example.com", "S3cure!pass")
	assert.ErrorIs(t, err, ErrDelivery)

	stored := f.users.users[u.ID]
	assert.Empty(t, stored.LoginCodeHash, "challenge rolled back so a retry can issue a new code")

	// And a retry after the outage succeeds.
	f.mail.fail = false
	assert.NoError(t, f.svc.Login(ctx, "kid@example.com", "S3cure!pass"))
}

func TestVerifyLoginUpdatesStreak(t *testing.T) {
	f := newAuthFixture(t)
	u := loginReady(t, f)
	ctx := context.Background()

	// Next calendar day extends the streak started at signup.
	f.clock = f.clock.Add(24 * time.Hour)
	require.NoError(t, f.svc.Login(ctx, "kid@example.com", "S3cure!pass"))
	res, err := f.svc.VerifyOTP(ctx, "kid@example.com", f.mail.lastCode(t), FlowLogin)
	require.NoError(t, err)

	assert.False(t, res.Created)
	assert.Equal(t, 2, res.User.CurrentStreak)
	assert.Equal(t, 2, res.User.LongestStreak)
	assert.Empty(t, f.users.users[u.ID].LoginCodeHash, "challenge consumed")

	// Replay of the same code fails.
	_, err = f.svc.VerifyOTP(ctx, "kid@example.com", f.mail.lastCode(t), FlowLogin)
	assert.ErrorIs(t, err, ErrCodeExpired)
}

func TestVerifyLoginWrongCode(t *testing.T) {
	f := newAuthFixture(t)
	loginReady(t, f)
	ctx := context.Background()

	require.NoError(t, f.svc.Login(ctx, "kid@example.com", "S3cure!pass"))
	code := f.mail.lastCode(t)
	wrong := "0000000"
	if wrong == code {
		wrong = "0000001"
	}
	_, err := f.svc.VerifyOTP(ctx, "kid@example.com", wrong, FlowLogin)
	assert.ErrorIs(t, err, ErrInvalidCode)

	// Challenge survives a wrong guess.
	_, err = f.svc.VerifyOTP(ctx, "kid@example.com", code, FlowLogin)
	assert.NoError(t, err)
}

func TestVerifyLoginExpiredChallenge(t *testing.T) {
	f := newAuthFixture(t)
	loginReady(t, f)
	ctx := context.Background()

	require.NoError(t, f.svc.Login(ctx, "kid@example.com", "S3cure!pass"))
	code := f.mail.lastCode(t)

	f.clock = f.clock.Add(11 * time.Minute)
	_, err := f.svc.VerifyOTP(ctx, "kid@example.com", code, FlowLogin)
	assert.ErrorIs(t, err, ErrCodeExpired)
}

func TestResendLoginRequiresPasswordAndCooldown(t *testing.T) {
	f := newAuthFixture(t)
	loginReady(t, f)
	ctx := context.Background()

	require.NoError(t, f.svc.Login(ctx, "kid@example.com", "S3cure!pass"))

	err := f.svc.ResendOTP(ctx, "kid@example.com", FlowLogin, "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	var cooldown *pending.CooldownError
	err = f.svc.ResendOTP(ctx, "kid@example.com", FlowLogin, "S3cure!pass")
	require.ErrorAs(t, err, &cooldown)

	// After the cooldown a fresh code goes out and replaces the old one.
	f.clock = f.clock.Add(2 * time.Minute)
	oldCode := f.mail.lastCode(t)
	require.NoError(t, f.svc.ResendOTP(ctx, "kid@example.com", FlowLogin, "S3cure!pass"))
	newCode := f.mail.lastCode(t)
	require.NotEqual(t, oldCode, newCode)

	_, err = f.svc.VerifyOTP(ctx, "kid@example.com", oldCode, FlowLogin)
	assert.ErrorIs(t, err, ErrInvalidCode, "old code invalid after replacement")
	_, err = f.svc.VerifyOTP(ctx, "kid@example.com", newCode, FlowLogin)
	assert.NoError(t, err)
}

func TestForgotPasswordFlow(t *testing.T) {
	f := newAuthFixture(t)
	u := loginReady(t, f)
	ctx := context.Background()

	// Unknown email is silently accepted.
	assert.NoError(t, f.svc.ForgotPassword(ctx, "ghost@example.com"))
	assert.Empty(t, f.mail.urls)

	require.NoError(t, f.svc.ForgotPassword(ctx, "kid@example.com"))
	require.Len(t, f.mail.urls, 1)
	url := f.mail.urls[0]
	require.True(t, strings.HasPrefix(url, "https://app.example/reset-password/"))
	token := strings.TrimPrefix(url, "https://app.example/reset-password/")

	require.NoError(t, f.svc.ResetPassword(ctx, token, "N3wSecret!pw"))
	stored := f.users.users[u.ID]
	assert.True(t, helpers.CompareHashAndPassword(stored.Password, "N3wSecret!pw"))
	assert.Empty(t, stored.ResetTokenHash, "token consumed")

	// Token is single use.
	err := f.svc.ResetPassword(ctx, token, "An0ther!pass")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestForgotPasswordDeliveryFailureClearsToken(t *testing.T) {
	f := newAuthFixture(t)
	u := loginReady(t, f)
	ctx := context.Background()

	f.mail.fail = true
	err := f.svc.ForgotPassword(ctx, "kid@example.com")
	assert.ErrorIs(t, err, ErrDelivery)
	assert.Empty(t, f.users.users[u.ID].ResetTokenHash)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	f := newAuthFixture(t)
	loginReady(t, f)
	ctx := context.Background()

	require.NoError(t, f.svc.ForgotPassword(ctx, "kid@example.com"))
	token := strings.TrimPrefix(f.mail.urls[0], "https://app.example/reset-password/")

	f.clock = f.clock.Add(11 * time.Minute)
	err := f.svc.ResetPassword(ctx, token, "N3wSecret!pw")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	u := loginReady(t, f)
	ctx := context.Background()

	err := f.svc.ChangePassword(ctx, u.ID, "wrong", "N3wSecret!pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, f.svc.ChangePassword(ctx, u.ID, "S3cure!pass", "N3wSecret!pw"))
	stored := f.users.users[u.ID]
	assert.True(t, helpers.CompareHashAndPassword(stored.Password, "N3wSecret!pw"))
}

func TestUpdateProfilePartial(t *testing.T) {
	f := newAuthFixture(t)
	u := loginReady(t, f)
	ctx := context.Background()

	age := 12
	updated, err := f.svc.UpdateProfile(ctx, u.ID, UpdateProfileInput{Age: &age, School: "PS 118"})
	require.NoError(t, err)
	assert.Equal(t, "Casey", updated.Name, "unset fields keep their value")
	assert.Equal(t, 12, *updated.Age)
	assert.Equal(t, "PS 118", updated.School)
}
