package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/coinquest/coinquest-api/internal/application"
	"github.com/coinquest/coinquest-api/pkg/response"
	"github.com/coinquest/coinquest-api/pkg/validation"
)

type LearningHandler struct {
	Svc     *application.LearningService
	Rewards *application.RewardService
	Logger  *logrus.Logger
}

func NewLearningHandler(svc *application.LearningService, rewards *application.RewardService, logger *logrus.Logger) *LearningHandler {
	return &LearningHandler{Svc: svc, Rewards: rewards, Logger: logger}
}

type submitQuizRequest struct {
	Answers   []int `json:"answers" binding:"required"`
	TimeSpent int   `json:"timeSpent" binding:"gte=0"`
}

type addXPRequest struct {
	Amount int    `json:"amount" binding:"required,gt=0,lte=1000"`
	Reason string `json:"reason" binding:"omitempty,max=200"`
}

func moduleIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("moduleId"))
	if err != nil || id < 1 {
		response.Error[any](c, http.StatusBadRequest, "invalid module id", nil)
		return 0, false
	}
	return id, true
}

// ListModules GET /api/learning/modules
func (h *LearningHandler) ListModules(c *gin.Context) {
	mods, err := h.Svc.ListModules(c.Request.Context())
	if err != nil {
		h.writeLearningError(c, err)
		return
	}
	response.Success(c, http.StatusOK, mods, "modules", nil)
}

// GetLesson GET /api/learning/modules/:moduleId/lessons/:lessonId
func (h *LearningHandler) GetLesson(c *gin.Context) {
	moduleID, ok := moduleIDParam(c)
	if !ok {
		return
	}
	lesson, err := h.Svc.GetLesson(c.Request.Context(), moduleID, c.Param("lessonId"))
	if err != nil {
		h.writeLearningError(c, err)
		return
	}
	response.Success(c, http.StatusOK, lesson, "lesson", nil)
}

// CompleteLesson POST /api/learning/modules/:moduleId/lessons/:lessonId/complete
func (h *LearningHandler) CompleteLesson(c *gin.Context) {
	moduleID, ok := moduleIDParam(c)
	if !ok {
		return
	}

	uid := c.GetString("userID")
	res, err := h.Svc.CompleteLesson(c.Request.Context(), uid, moduleID, c.Param("lessonId"))
	if err != nil {
		h.writeLearningError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res, "lesson completed", nil)
}

// GetQuiz GET /api/learning/modules/:moduleId/quiz
func (h *LearningHandler) GetQuiz(c *gin.Context) {
	moduleID, ok := moduleIDParam(c)
	if !ok {
		return
	}
	quiz, err := h.Svc.GetQuiz(c.Request.Context(), moduleID)
	if err != nil {
		h.writeLearningError(c, err)
		return
	}
	response.Success(c, http.StatusOK, quiz, "quiz", nil)
}

// SubmitQuiz POST /api/learning/modules/:moduleId/quiz
func (h *LearningHandler) SubmitQuiz(c *gin.Context) {
	moduleID, ok := moduleIDParam(c)
	if !ok {
		return
	}
	var req submitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	uid := c.GetString("userID")
	res, err := h.Svc.SubmitQuiz(c.Request.Context(), uid, moduleID, req.Answers, req.TimeSpent)
	if err != nil {
		h.writeLearningError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res, "quiz submitted", nil)
}

// GetProgress GET /api/learning/progress
func (h *LearningHandler) GetProgress(c *gin.Context) {
	uid := c.GetString("userID")
	p, err := h.Svc.GetProgress(c.Request.Context(), uid)
	if err != nil {
		h.writeLearningError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p, "progress", nil)
}

// AddXP POST /api/learning/xp
// Direct XP grant for client-driven activities that carry no lucre.
func (h *LearningHandler) AddXP(c *gin.Context) {
	var req addXPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	reason := req.Reason
	if reason == "" {
		reason = "Activity XP"
	}

	uid := c.GetString("userID")
	res, err := h.Rewards.Grant(c.Request.Context(), uid, req.Amount, 0, reason)
	if err != nil {
		h.writeLearningError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res, "xp added", nil)
}

func (h *LearningHandler) writeLearningError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, application.ErrContentNotFound):
		response.Error[any](c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, application.ErrAnswerCount):
		response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, application.ErrUserNotFound):
		response.Error[any](c, http.StatusNotFound, err.Error(), nil)
	default:
		h.Logger.WithError(err).Error("learning request failed")
		response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
	}
}
