package container

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/coinquest/coinquest-api/config"
	"github.com/coinquest/coinquest-api/internal/application"
	"github.com/coinquest/coinquest-api/internal/infrastructure/pending"
	"github.com/coinquest/coinquest-api/pkg/helpers"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client

	jwtManager *helpers.JWTManager

	pendingStore pending.Store
	mailSender   application.Mailer
)

func SetConfig(c *config.Config)   { cfg = c }
func GetConfig() *config.Config    { return cfg }
func SetLogger(l *logrus.Logger)   { logger = l }
func GetLogger() *logrus.Logger    { return logger }
func SetPGPool(p *pgxpool.Pool)    { pgPool = p }
func GetPGPool() *pgxpool.Pool     { return pgPool }
func SetRedis(r *redis.Client)     { redisClient = r }
func GetRedis() *redis.Client      { return redisClient }
func SetJWT(m *helpers.JWTManager) { jwtManager = m }
func GetJWT() *helpers.JWTManager  { return jwtManager }

func SetPendingStore(s pending.Store) { pendingStore = s }
func GetPendingStore() pending.Store  { return pendingStore }
func SetMailer(m application.Mailer)  { mailSender = m }
func GetMailer() application.Mailer   { return mailSender }
