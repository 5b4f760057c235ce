package services

import (
	"testing"

	"juris_desk_go/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{})
	assert.NoError(t, err)

	err = testDB.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.PasswordResetToken{},
		&models.Client{},
		&models.ClientFinancials{},
		&models.Installment{},
		&models.CourtMovement{},
		&models.ActivityLog{},
		&models.UserSettings{},
	)
	assert.NoError(t, err)

	return testDB
}

func createUser(t *testing.T, db *gorm.DB, email string) *models.User {
	user := &models.User{
		Name:     "Test Lawyer",
		Email:    email,
		Password: "hashed",
		Role:     "lawyer",
		IsActive: true,
	}
	assert.NoError(t, db.Create(user).Error)
	return user
}
