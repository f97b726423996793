package router

import (
	"github.com/coinquest/coinquest-api/internal/application"
	"github.com/coinquest/coinquest-api/internal/container"
	pginfra "github.com/coinquest/coinquest-api/internal/infrastructure/postgres"
	handlers "github.com/coinquest/coinquest-api/internal/interface/http"
	"github.com/coinquest/coinquest-api/internal/router/modules"
)

// InitModules builds the feature modules from container singletons and
// registers them. Called once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()

	users := pginfra.NewUserRepository(pool)
	wallets := pginfra.NewWalletRepository(pool)
	progress := pginfra.NewProgressRepository(pool)
	content := pginfra.NewContentRepository(pool)
	ledger := pginfra.NewLedgerRepository(pool)

	authSvc := application.NewAuthService(
		users, wallets, progress,
		container.GetPendingStore(),
		container.GetJWT(),
		container.GetMailer(),
		logger,
		cfg.OTPTTL, cfg.OTPResendCooldown, cfg.ResetTokenTTL,
		cfg.ResetPasswordURL,
	)
	rewardSvc := application.NewRewardService(ledger, logger)
	walletSvc := application.NewWalletService(wallets, ledger, logger)
	learningSvc := application.NewLearningService(content, progress, rewardSvc, logger)

	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(authSvc, logger), container.GetJWT()))
	r.Add(modules.NewWalletModule(handlers.NewWalletHandler(walletSvc, logger), container.GetJWT()))
	r.Add(modules.NewLearningModule(handlers.NewLearningHandler(learningSvc, rewardSvc, logger), container.GetJWT()))
}
