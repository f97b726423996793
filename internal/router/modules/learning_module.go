package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/coinquest/coinquest-api/internal/container"
	handlers "github.com/coinquest/coinquest-api/internal/interface/http"
	"github.com/coinquest/coinquest-api/internal/interface/middleware"
	"github.com/coinquest/coinquest-api/pkg/helpers"
)

type LearningModule struct {
	Handler *handlers.LearningHandler
	JWT     *helpers.JWTManager
}

func NewLearningModule(h *handlers.LearningHandler, jwt *helpers.JWTManager) *LearningModule {
	return &LearningModule{Handler: h, JWT: jwt}
}

func (m *LearningModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/learning")
	auth.Use(middleware.Auth(m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 240, time.Minute, middleware.KeyByUserID()))
	{
		auth.GET("/modules", m.Handler.ListModules)
		auth.GET("/modules/:moduleId/lessons/:lessonId", m.Handler.GetLesson)
		auth.POST("/modules/:moduleId/lessons/:lessonId/complete", m.Handler.CompleteLesson)
		auth.GET("/modules/:moduleId/quiz", m.Handler.GetQuiz)
		auth.POST("/modules/:moduleId/quiz", m.Handler.SubmitQuiz)
		auth.GET("/progress", m.Handler.GetProgress)
		auth.POST("/xp", m.Handler.AddXP)
	}
}
