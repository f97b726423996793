package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/coinquest/coinquest-api/internal/container"
	handlers "github.com/coinquest/coinquest-api/internal/interface/http"
	"github.com/coinquest/coinquest-api/internal/interface/middleware"
	"github.com/coinquest/coinquest-api/pkg/helpers"
)

type WalletModule struct {
	Handler *handlers.WalletHandler
	JWT     *helpers.JWTManager
}

func NewWalletModule(h *handlers.WalletHandler, jwt *helpers.JWTManager) *WalletModule {
	return &WalletModule{Handler: h, JWT: jwt}
}

func (m *WalletModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/wallet")
	auth.Use(middleware.Auth(m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID()))
	{
		auth.GET("", m.Handler.Get)
		auth.POST("/earn", m.Handler.Earn)
		auth.POST("/discretionary/add", m.Handler.AddDiscretionary)
		auth.POST("/discretionary/deduct", m.Handler.DeductDiscretionary)
		auth.POST("/payout", m.Handler.Payout)
		auth.PUT("/expenses", m.Handler.UpdateExpenses)
	}
}
