package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinquest/coinquest-api/pkg/validation"
)

func bindVerifyRequest(t *testing.T, body string) (verifyOTPRequest, error) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/verify-otp", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var req verifyOTPRequest
	err := c.ShouldBindJSON(&req)
	return req, err
}

func TestVerifyRequestBindsOtpField(t *testing.T) {
	req, err := bindVerifyRequest(t, `{"email":"kid@example.com","otp":"0123456","flow":"signup"}`)
	require.NoError(t, err)
	assert.Equal(t, "0123456", req.Code)
	assert.Equal(t, "signup", req.Flow)
}

func TestVerifyRequestRejectsCodeField(t *testing.T) {
	// Clients send the code under "otp"; any other key fails required.
	_, err := bindVerifyRequest(t, `{"email":"kid@example.com","code":"0123456","flow":"signup"}`)
	require.Error(t, err)
	details := validation.ToDetails(err)
	assert.Contains(t, details, "otp")
}

func TestVerifyRequestRejectsMalformedCode(t *testing.T) {
	_, err := bindVerifyRequest(t, `{"email":"kid@example.com","otp":"12345","flow":"login"}`)
	require.Error(t, err)
	_, err = bindVerifyRequest(t, `{"email":"kid@example.com","otp":"abcdefg","flow":"login"}`)
	require.Error(t, err)
}
