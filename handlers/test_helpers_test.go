package handlers

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"juris_desk_go/config"
	"juris_desk_go/db"
	"juris_desk_go/middleware"
	"juris_desk_go/models"
	"juris_desk_go/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// Use unique shared memory name to isolate tests while allowing shared cache for async tasks
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{})
	assert.NoError(t, err)

	err = testDB.Exec("PRAGMA journal_mode=WAL;").Error
	assert.NoError(t, err)

	// Initialize Storage for tests if not already set
	if services.Storage == nil {
		services.Storage = services.NewLocalStorage("tmp/test_uploads")
	}

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

	// Set global DB
	db.DB = testDB

	return testDB
}

func setupEcho(method, path string, body io.Reader) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	// Add config to context
	c.Set(ContextKeyConfig, &config.Config{
		Environment: "test",
	})

	return e, c, rec
}

func createTestUser(t *testing.T, testDB *gorm.DB, email string) *models.User {
	hashed, err := services.HashPassword("test-password-123")
	assert.NoError(t, err)

	user := &models.User{
		Name:     "Test Lawyer",
		Email:    email,
		Password: hashed,
		Role:     "lawyer",
		IsActive: true,
	}
	assert.NoError(t, testDB.Create(user).Error)
	return user
}

func authenticate(c echo.Context, user *models.User) {
	c.Set(middleware.ContextKeyUser, user)
}

func createTestClient(t *testing.T, testDB *gorm.DB, userID, origin, caseType string) *models.Client {
	client := &models.Client{
		UserID:   userID,
		Name:     "Maria Souza",
		Origin:   origin,
		CaseType: caseType,
		Status:   models.ClientStatusActive,
	}
	assert.NoError(t, testDB.Create(client).Error)
	return client
}

func createTestMovement(t *testing.T, testDB *gorm.DB, userID string, movementType string, date time.Time) *models.CourtMovement {
	movement := &models.CourtMovement{
		UserID: userID,
		Type:   movementType,
		Title:  "Test movement",
		Date:   date,
	}
	assert.NoError(t, testDB.Create(movement).Error)
	return movement
}
