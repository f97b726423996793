package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/coinquest/coinquest-api/internal/application"
	"github.com/coinquest/coinquest-api/internal/infrastructure/pending"
	"github.com/coinquest/coinquest-api/pkg/response"
	"github.com/coinquest/coinquest-api/pkg/validation"
)

type AuthHandler struct {
	Svc    *application.AuthService
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type signupRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Age      *int   `json:"age" binding:"omitempty,gte=5,lte=120"`
	Grade    string `json:"grade" binding:"omitempty,max=50"`
	School   string `json:"school" binding:"omitempty,max=200"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type resendOTPRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Flow     string `json:"flow" binding:"required,oneof=signup login"`
	Password string `json:"password"`
}

type verifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"otp" binding:"required,otp"`
	Flow  string `json:"flow" binding:"required,oneof=signup login"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,pwd"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,pwd"`
}

type updateProfileRequest struct {
	Name           string `json:"name" binding:"omitempty,min=1,max=100"`
	Age            *int   `json:"age" binding:"omitempty,gte=5,lte=120"`
	Grade          string `json:"grade" binding:"omitempty,max=50"`
	School         string `json:"school" binding:"omitempty,max=200"`
	KnowledgeLevel string `json:"knowledgeLevel" binding:"omitempty,oneof=beginner intermediate advanced"`
}

// Signup POST /api/auth/signup
// Parks the registration and sends a verification code; no account exists
// until the code is verified.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	err := h.Svc.Signup(c.Request.Context(), application.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      req.Age,
		Grade:    req.Grade,
		School:   req.School,
	})
	if err != nil {
		h.writeAuthError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"requiresOtp": true, "flow": application.FlowSignup}, "verification code sent", nil)
}

// Login POST /api/auth/login
// Validates credentials and sends a login code; no token is issued yet.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	if err := h.Svc.Login(c.Request.Context(), req.Email, req.Password); err != nil {
		h.writeAuthError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"requiresOtp": true, "flow": application.FlowLogin}, "verification code sent", nil)
}

// ResendOTP POST /api/auth/resend-otp
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req resendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if req.Flow == application.FlowLogin && req.Password == "" {
		response.Error[any](c, http.StatusBadRequest, "password is required to resend a login code", nil)
		return
	}

	if err := h.Svc.ResendOTP(c.Request.Context(), req.Email, req.Flow, req.Password); err != nil {
		h.writeAuthError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"requiresOtp": true, "flow": req.Flow}, "verification code sent", nil)
}

// VerifyOTP POST /api/auth/verify-otp
// Completes either flow. Signup verification creates the account (201);
// login verification returns 200. Both return the bearer token.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	res, err := h.Svc.VerifyOTP(c.Request.Context(), req.Email, req.Code, req.Flow)
	if err != nil {
		h.writeAuthError(c, err)
		return
	}

	status := http.StatusOK
	message := "login successful"
	if res.Created {
		status = http.StatusCreated
		message = "account created"
	}
	response.Success(c, status, gin.H{
		"token": res.Token,
		"user":  res.User,
	}, message, map[string]any{"expires_at": res.Expires})
}

// ForgotPassword POST /api/auth/forgot-password
// Always responds 200 so the endpoint cannot be used to enumerate accounts.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	if err := h.Svc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		h.writeAuthError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "if the email exists, a reset link has been sent", nil)
}

// ResetPassword POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	if err := h.Svc.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		h.writeAuthError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "password has been reset", nil)
}

// ChangePassword POST /api/auth/change-password (auth required)
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	uid := c.GetString("userID")
	if err := h.Svc.ChangePassword(c.Request.Context(), uid, req.CurrentPassword, req.NewPassword); err != nil {
		h.writeAuthError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "password changed", nil)
}

// GetProfile GET /api/auth/profile (auth required)
func (h *AuthHandler) GetProfile(c *gin.Context) {
	uid := c.GetString("userID")
	u, err := h.Svc.GetProfile(c.Request.Context(), uid)
	if err != nil {
		h.writeAuthError(c, err)
		return
	}
	response.Success(c, http.StatusOK, u, "profile", nil)
}

// UpdateProfile PATCH /api/auth/profile (auth required)
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	uid := c.GetString("userID")
	u, err := h.Svc.UpdateProfile(c.Request.Context(), uid, application.UpdateProfileInput{
		Name:           req.Name,
		Age:            req.Age,
		Grade:          req.Grade,
		School:         req.School,
		KnowledgeLevel: req.KnowledgeLevel,
	})
	if err != nil {
		h.writeAuthError(c, err)
		return
	}
	response.Success(c, http.StatusOK, u, "profile updated", nil)
}

// Logout POST /api/auth/logout (auth required)
// Tokens are stateless, so there is nothing to revoke server side; the
// endpoint exists so clients have a uniform place to end a session.
func (h *AuthHandler) Logout(c *gin.Context) {
	response.Success[any](c, http.StatusOK, nil, "logged out", nil)
}

// writeAuthError maps business errors onto HTTP statuses.
func (h *AuthHandler) writeAuthError(c *gin.Context, err error) {
	var cooldown *pending.CooldownError
	switch {
	case errors.As(err, &cooldown):
		response.Error[any](c, http.StatusTooManyRequests, cooldown.Error(), map[string]any{"waitSeconds": cooldown.WaitSeconds()})
	case errors.Is(err, application.ErrConflict):
		response.Error[any](c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Error[any](c, http.StatusUnauthorized, err.Error(), nil)
	case errors.Is(err, application.ErrNoPendingSignup),
		errors.Is(err, application.ErrCodeExpired),
		errors.Is(err, application.ErrInvalidCode),
		errors.Is(err, application.ErrInvalidResetToken):
		response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, application.ErrUserNotFound):
		response.Error[any](c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, application.ErrDelivery):
		response.Error[any](c, http.StatusInternalServerError, err.Error(), nil)
	default:
		h.Logger.WithError(err).Error("auth request failed")
		response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
	}
}
