package services

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"time"

	"juris_desk_go/models"

	"gorm.io/gorm"
)

const (
	// ResetTokenLength is the length of the reset token in bytes
	ResetTokenLength = 32
	// ResetTokenExpiration is how long a reset token is valid
	ResetTokenExpiration = 24 * time.Hour
	// MinPasswordLength is the minimum accepted password length
	MinPasswordLength = 8
)

// ValidatePassword enforces the password policy
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// GenerateResetToken creates a password reset token for a user
func GenerateResetToken(db *gorm.DB, userEmail string) (*models.PasswordResetToken, error) {
	// Find user by email
	var user models.User
	if err := db.Where("email = ?", userEmail).First(&user).Error; err != nil {
		// Return nil without error to prevent email enumeration
		log.Printf("Password reset requested for non-existent email: %s", userEmail)
		return nil, nil
	}

	if !user.IsActive {
		log.Printf("Password reset requested for inactive user: %s", userEmail)
		return nil, nil
	}

	// Delete any existing tokens for this user
	db.Where("user_id = ?", user.ID).Delete(&models.PasswordResetToken{})

	// Generate cryptographically secure random token
	tokenBytes := make([]byte, ResetTokenLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		return nil, fmt.Errorf("failed to generate random token: %v", err)
	}
	token := base64.URLEncoding.EncodeToString(tokenBytes)

	resetToken := &models.PasswordResetToken{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: time.Now().Add(ResetTokenExpiration),
	}

	if err := db.Create(resetToken).Error; err != nil {
		return nil, fmt.Errorf("failed to create reset token: %v", err)
	}

	LogSecurityEvent("PASSWORD_RESET_REQUESTED", user.ID, fmt.Sprintf("Password reset requested for email: %s", userEmail))

	return resetToken, nil
}

// ValidateResetToken validates a password reset token and returns the associated user
func ValidateResetToken(db *gorm.DB, token string) (*models.User, error) {
	var resetToken models.PasswordResetToken

	if err := db.Preload("User").Where("token = ?", token).First(&resetToken).Error; err != nil {
		return nil, fmt.Errorf("invalid or expired token")
	}

	if resetToken.IsExpired() {
		// Delete expired token
		db.Delete(&resetToken)
		return nil, fmt.Errorf("token has expired")
	}

	if resetToken.User == nil || !resetToken.User.IsActive {
		return nil, fmt.Errorf("user account is not active")
	}

	return resetToken.User, nil
}

// ResetPassword resets a user's password using a valid token
func ResetPassword(db *gorm.DB, token string, newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	user, err := ValidateResetToken(db, token)
	if err != nil {
		LogSecurityEvent("PASSWORD_RESET_FAILED", "", fmt.Sprintf("Failed password reset attempt with token: %s", token[:10]))
		return err
	}

	hashedPassword, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %v", err)
	}

	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Model(&user).Update("password", hashedPassword).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to update password: %v", err)
	}

	if err := tx.Where("token = ?", token).Delete(&models.PasswordResetToken{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete token: %v", err)
	}

	// Invalidate all user sessions (force re-login on all devices)
	if err := DeleteAllUserSessions(tx, user.ID); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to invalidate sessions: %v", err)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	LogSecurityEvent("PASSWORD_RESET_COMPLETED", user.ID, "Password successfully reset")

	return nil
}

// CleanupExpiredTokens deletes all expired password reset tokens
func CleanupExpiredTokens(db *gorm.DB) error {
	result := db.Where("expires_at < ?", time.Now()).Delete(&models.PasswordResetToken{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected > 0 {
		log.Printf("Cleaned up %d expired password reset tokens", result.RowsAffected)
	}

	return nil
}
