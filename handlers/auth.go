package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"juris_desk_go/db"
	"juris_desk_go/middleware"
	"juris_desk_go/models"
	"juris_desk_go/services"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// LoginRequest is the login form payload
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// LoginHandler authenticates a user and issues a session cookie
func LoginHandler(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email and password are required")
	}

	var user models.User
	err := db.DB.Where("email = ?", email).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			// Same response as a wrong password to avoid account enumeration
			services.LogSecurityEvent("LOGIN_FAILED", "", fmt.Sprintf("unknown email from %s", c.RealIP()))
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to process login")
	}

	if !services.CheckPassword(req.Password, user.Password) {
		services.LogSecurityEvent("LOGIN_FAILED", user.ID, fmt.Sprintf("wrong password from %s", c.RealIP()))
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	if !user.IsActive {
		return echo.NewHTTPError(http.StatusUnauthorized, "Account disabled")
	}

	session, err := services.CreateSession(db.DB, user.ID, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create session")
	}

	middleware.SetSessionCookie(c, session.Token, int(services.DefaultSessionDuration.Seconds()))
	services.LogSecurityEvent("LOGIN_SUCCESS", user.ID, fmt.Sprintf("from %s", c.RealIP()))

	return c.JSON(http.StatusOK, map[string]interface{}{
		"user": user,
	})
}

// LogoutHandler deletes the current session and clears the cookie
func LogoutHandler(c echo.Context) error {
	if cookie, err := c.Cookie(middleware.SessionCookieName); err == nil {
		if err := services.DeleteSession(db.DB, cookie.Value); err != nil {
			c.Logger().Errorf("Failed to delete session: %v", err)
		}
	}
	middleware.ClearSessionCookie(c)
	return c.NoContent(http.StatusNoContent)
}

// MeHandler returns the authenticated user
func MeHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}
	return c.JSON(http.StatusOK, user)
}

// ForgotPasswordRequest is the password reset request payload
type ForgotPasswordRequest struct {
	Email string `json:"email" form:"email"`
}

// ForgotPasswordHandler issues a password reset token and emails the link.
// The response is identical whether or not the email exists.
func ForgotPasswordHandler(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email is required")
	}

	token, err := services.GenerateResetToken(db.DB, email)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to process request")
	}

	if token != nil {
		cfg := GetConfig(c)
		var user models.User
		if err := db.DB.Where("id = ?", token.UserID).First(&user).Error; err == nil {
			resetLink := fmt.Sprintf("%s/reset-password?token=%s", cfg.AppURL, token.Token)
			services.SendEmailAsync(cfg, services.BuildPasswordResetEmail(user.Email, user.Name, resetLink))
		}
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "If that email is registered, a reset link has been sent.",
	})
}

// ResetPasswordRequest is the password reset confirmation payload
type ResetPasswordRequest struct {
	Token    string `json:"token" form:"token"`
	Password string `json:"password" form:"password"`
}

// ResetPasswordHandler sets a new password from a valid reset token
func ResetPasswordHandler(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}

	if req.Token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Reset token is required")
	}
	if err := services.ValidatePassword(req.Password); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := services.ResetPassword(db.DB, req.Token, req.Password); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid or expired reset token")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Password updated. You can now log in.",
	})
}

// ChangePasswordRequest is the authenticated password change payload
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" form:"current_password"`
	NewPassword     string `json:"new_password" form:"new_password"`
}

// ChangePasswordHandler changes the authenticated user's password and
// invalidates every other session
func ChangePasswordHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}

	if !services.CheckPassword(req.CurrentPassword, user.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Current password is incorrect")
	}
	if err := services.ValidatePassword(req.NewPassword); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	hashed, err := services.HashPassword(req.NewPassword)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update password")
	}

	now := time.Now()
	if err := db.DB.Model(&models.User{}).Where("id = ?", user.ID).
		Updates(map[string]interface{}{"password": hashed, "updated_at": now}).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update password")
	}

	// Keep only the session performing the change
	if err := services.DeleteAllUserSessions(db.DB, user.ID); err != nil {
		c.Logger().Errorf("Failed to invalidate sessions: %v", err)
	}
	session, err := services.CreateSession(db.DB, user.ID, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		middleware.ClearSessionCookie(c)
		return c.JSON(http.StatusOK, map[string]string{"message": "Password updated. Please log in again."})
	}
	middleware.SetSessionCookie(c, session.Token, int(services.DefaultSessionDuration.Seconds()))

	services.LogSecurityEvent("PASSWORD_CHANGED", user.ID, fmt.Sprintf("from %s", c.RealIP()))
	return c.JSON(http.StatusOK, map[string]string{"message": "Password updated."})
}
