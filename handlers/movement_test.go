package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"juris_desk_go/models"
	"juris_desk_go/services/gcalendar"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// stubCalendar is a Provider test double with scripted outcomes
type stubCalendar struct {
	createErr  error
	deleteErr  error
	created    []gcalendar.Event
	deletedIDs []string
}

func (s *stubCalendar) CreateEvent(ctx context.Context, settings *models.UserSettings, event gcalendar.Event) (string, error) {
	if s.createErr != nil {
		return "", s.createErr
	}
	s.created = append(s.created, event)
	return "evt-123", nil
}

func (s *stubCalendar) DeleteEvent(ctx context.Context, settings *models.UserSettings, eventID string) (bool, error) {
	if s.deleteErr != nil {
		return false, s.deleteErr
	}
	s.deletedIDs = append(s.deletedIDs, eventID)
	return true, nil
}

func connectCalendar(t *testing.T, testDB *gorm.DB, userID string) {
	expiry := time.Now().Add(time.Hour)
	settings := &models.UserSettings{
		UserID:              userID,
		CalendarAccessToken: "access-token",
		CalendarTokenExpiry: &expiry,
		CalendarID:          "primary",
	}
	assert.NoError(t, testDB.Create(settings).Error)
}

func TestCreateMovementSyncsToCalendar(t *testing.T) {
	testDB := setupTestDB(t)
	user := createTestUser(t, testDB, "lawyer@example.com")
	connectCalendar(t, testDB, user.ID)

	stub := &stubCalendar{}
	body, _ := json.Marshal(MovementRequest{
		Type:  models.MovementTypeHearing,
		Title: "Initial hearing",
		Date:  "2026-09-15",
	})

	_, c, rec := setupEcho(http.MethodPost, "/api/movements", bytes.NewReader(body))
	authenticate(c, user)
	c.Set(ContextKeyCalendar, gcalendar.Provider(stub))

	assert.NoError(t, CreateMovementHandler(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, stub.created, 1)

	var stored models.CourtMovement
	assert.NoError(t, testDB.Where("user_id = ?", user.ID).First(&stored).Error)
	assert.Equal(t, "evt-123", stored.CalendarEventID)
	assert.Empty(t, stored.CalendarSyncError)
}

func TestCreateMovementSurvivesCalendarFailure(t *testing.T) {
	testDB := setupTestDB(t)
	user := createTestUser(t, testDB, "lawyer@example.com")
	connectCalendar(t, testDB, user.ID)

	stub := &stubCalendar{createErr: errors.New("calendar quota exceeded")}
	body, _ := json.Marshal(MovementRequest{
		Type:  models.MovementTypeDeadline,
		Title: "Appeal deadline",
		Date:  "2026-09-20",
	})

	_, c, rec := setupEcho(http.MethodPost, "/api/movements", bytes.NewReader(body))
	authenticate(c, user)
	c.Set(ContextKeyCalendar, gcalendar.Provider(stub))

	// The movement is created even though the calendar push failed
	assert.NoError(t, CreateMovementHandler(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var stored models.CourtMovement
	assert.NoError(t, testDB.Where("user_id = ?", user.ID).First(&stored).Error)
	assert.Empty(t, stored.CalendarEventID)
	assert.Contains(t, stored.CalendarSyncError, "quota")
}

func TestCreateMovementRejectsForeignClientLink(t *testing.T) {
	testDB := setupTestDB(t)
	user := createTestUser(t, testDB, "lawyer@example.com")
	other := createTestUser(t, testDB, "other@example.com")
	foreign := createTestClient(t, testDB, other.ID, models.OriginPrivate, models.CaseTypeCivil)

	body, _ := json.Marshal(MovementRequest{
		ClientID: foreign.ID,
		Type:     models.MovementTypeHearing,
		Title:    "Hearing",
		Date:     "2026-09-15",
	})

	_, c, _ := setupEcho(http.MethodPost, "/api/movements", bytes.NewReader(body))
	authenticate(c, user)

	err := CreateMovementHandler(c)
	assert.Error(t, err)
}

func TestDeleteMovementProceedsWhenCalendarFails(t *testing.T) {
	testDB := setupTestDB(t)
	user := createTestUser(t, testDB, "lawyer@example.com")
	connectCalendar(t, testDB, user.ID)

	movement := createTestMovement(t, testDB, user.ID, models.MovementTypeHearing, time.Now().AddDate(0, 0, 5))
	assert.NoError(t, testDB.Model(movement).Update("calendar_event_id", "evt-999").Error)

	stub := &stubCalendar{deleteErr: errors.New("service unavailable")}

	_, c, rec := setupEcho(http.MethodDelete, "/api/movements/"+movement.ID, nil)
	authenticate(c, user)
	c.Set(ContextKeyCalendar, gcalendar.Provider(stub))
	c.SetParamNames("id")
	c.SetParamValues(movement.ID)

	assert.NoError(t, DeleteMovementHandler(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	var count int64
	testDB.Model(&models.CourtMovement{}).Where("id = ?", movement.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestGetMovementResolvesCaseNumberFallback(t *testing.T) {
	testDB := setupTestDB(t)
	user := createTestUser(t, testDB, "lawyer@example.com")

	client := createTestClient(t, testDB, user.ID, models.OriginPrivate, models.CaseTypeCivil)
	assert.NoError(t, testDB.Model(client).Update("case_number", "0001234-55.2026.8.26.0100").Error)

	movement := &models.CourtMovement{
		UserID:     user.ID,
		CaseNumber: "0001234-55.2026.8.26.0100",
		Type:       models.MovementTypeNotification,
		Title:      "Sentence published",
		Date:       time.Now().AddDate(0, 0, 3),
	}
	assert.NoError(t, testDB.Create(movement).Error)

	_, c, rec := setupEcho(http.MethodGet, "/api/movements/"+movement.ID, nil)
	authenticate(c, user)
	c.SetParamNames("id")
	c.SetParamValues(movement.ID)

	assert.NoError(t, GetMovementHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		LinkedClient *models.Client `json:"linked_client"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.NotNil(t, response.LinkedClient)
	assert.Equal(t, client.ID, response.LinkedClient.ID)

	// The fallback match is never written back to the movement
	var stored models.CourtMovement
	assert.NoError(t, testDB.Where("id = ?", movement.ID).First(&stored).Error)
	assert.Nil(t, stored.ClientID)
}
