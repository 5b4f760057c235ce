package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"juris_desk_go/models"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestLoginSuccessIssuesSessionCookie(t *testing.T) {
	testDB := setupTestDB(t)
	createTestUser(t, testDB, "lawyer@example.com")

	body, _ := json.Marshal(LoginRequest{Email: "lawyer@example.com", Password: "test-password-123"})
	_, c, rec := setupEcho(http.MethodPost, "/api/login", bytes.NewReader(body))

	assert.NoError(t, LoginHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	var found bool
	for _, cookie := range cookies {
		if cookie.Name == "juris_desk_session" && cookie.Value != "" {
			found = true
			assert.True(t, cookie.HttpOnly)
		}
	}
	assert.True(t, found, "expected a session cookie")

	var sessionCount int64
	testDB.Model(&models.Session{}).Count(&sessionCount)
	assert.Equal(t, int64(1), sessionCount)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	testDB := setupTestDB(t)
	createTestUser(t, testDB, "lawyer@example.com")

	body, _ := json.Marshal(LoginRequest{Email: "lawyer@example.com", Password: "wrong"})
	_, c, _ := setupEcho(http.MethodPost, "/api/login", bytes.NewReader(body))

	err := LoginHandler(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestLoginUnknownEmailSameResponse(t *testing.T) {
	setupTestDB(t)

	body, _ := json.Marshal(LoginRequest{Email: "nobody@example.com", Password: "whatever-123"})
	_, c, _ := setupEcho(http.MethodPost, "/api/login", bytes.NewReader(body))

	err := LoginHandler(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	assert.Equal(t, "Invalid email or password", httpErr.Message)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	testDB := setupTestDB(t)
	user := createTestUser(t, testDB, "lawyer@example.com")
	assert.NoError(t, testDB.Model(user).Update("is_active", false).Error)

	body, _ := json.Marshal(LoginRequest{Email: "lawyer@example.com", Password: "test-password-123"})
	_, c, _ := setupEcho(http.MethodPost, "/api/login", bytes.NewReader(body))

	err := LoginHandler(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}
