package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"juris_desk_go/models"
	"juris_desk_go/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestGetFinancesReturnsGroupsAndTotals(t *testing.T) {
	testDB := setupTestDB(t)
	user := createTestUser(t, testDB, "lawyer@example.com")

	client := createTestClient(t, testDB, user.ID, models.OriginPrivate, models.CaseTypeCivil)
	now := time.Now()
	fin := &models.ClientFinancials{
		ClientID:             client.ID,
		TotalAgreed:          10000,
		InitialPayment:       2000,
		InitialPaymentStatus: models.PaymentStatusPaid,
		InitialPaymentPaidAt: &now,
		Installments: []models.Installment{
			{Number: 1, Value: 4000, DueDate: now.AddDate(0, 1, 0), Status: models.PaymentStatusPending},
			{Number: 2, Value: 4000, DueDate: now.AddDate(0, 2, 0), Status: models.PaymentStatusPending},
		},
	}
	assert.NoError(t, testDB.Create(fin).Error)

	_, c, rec := setupEcho(http.MethodGet, "/api/finances?tab=GENERAL", nil)
	authenticate(c, user)

	assert.NoError(t, GetFinancesHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Groups []services.ClientGroup `json:"groups"`
		Totals services.Totals        `json:"totals"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Len(t, response.Groups, 1)
	assert.Len(t, response.Groups[0].Lines, 3)
	assert.InDelta(t, 2000, response.Totals.Received, 0.001)
	assert.InDelta(t, 8000, response.Totals.Receivable, 0.001)
	assert.InDelta(t, 0, response.Totals.PendingByInstitution, 0.001)
}

func TestToggleInstallmentPersistsStatus(t *testing.T) {
	testDB := setupTestDB(t)
	user := createTestUser(t, testDB, "lawyer@example.com")

	client := createTestClient(t, testDB, user.ID, models.OriginPrivate, models.CaseTypeCivil)
	fin := &models.ClientFinancials{
		ClientID:    client.ID,
		TotalAgreed: 6000,
		Installments: []models.Installment{
			{Number: 1, Value: 3000, DueDate: time.Now().AddDate(0, 1, 0), Status: models.PaymentStatusPending},
			{Number: 2, Value: 3000, DueDate: time.Now().AddDate(0, 2, 0), Status: models.PaymentStatusPending},
		},
	}
	assert.NoError(t, testDB.Create(fin).Error)

	lineID := services.LinePrefixInstallment + fin.Installments[0].ID
	body, _ := json.Marshal(ToggleLineRequest{
		ClientID:      client.ID,
		LineID:        lineID,
		CurrentStatus: models.PaymentStatusPending,
	})

	_, c, rec := setupEcho(http.MethodPost, "/api/finances/toggle", bytes.NewReader(body))
	authenticate(c, user)

	assert.NoError(t, ToggleLineStatusHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var stored models.Installment
	assert.NoError(t, testDB.Where("id = ?", fin.Installments[0].ID).First(&stored).Error)
	assert.Equal(t, models.PaymentStatusPaid, stored.Status)
	assert.NotNil(t, stored.PaidAt)

	// Toggle back clears the timestamp
	body, _ = json.Marshal(ToggleLineRequest{
		ClientID:      client.ID,
		LineID:        lineID,
		CurrentStatus: models.PaymentStatusPaid,
	})
	_, c2, rec2 := setupEcho(http.MethodPost, "/api/finances/toggle", bytes.NewReader(body))
	authenticate(c2, user)

	assert.NoError(t, ToggleLineStatusHandler(c2))
	assert.Equal(t, http.StatusOK, rec2.Code)

	var toggledBack models.Installment
	assert.NoError(t, testDB.Where("id = ?", fin.Installments[0].ID).First(&toggledBack).Error)
	assert.Equal(t, models.PaymentStatusPending, toggledBack.Status)
	assert.Nil(t, toggledBack.PaidAt)
}

func TestToggleRejectsDefensoriaLines(t *testing.T) {
	testDB := setupTestDB(t)
	user := createTestUser(t, testDB, "lawyer@example.com")

	client := createTestClient(t, testDB, user.ID, models.OriginDefensoria, models.CaseTypeCriminal)
	fin := &models.ClientFinancials{
		ClientID:    client.ID,
		TotalAgreed: 1500,
	}
	assert.NoError(t, testDB.Create(fin).Error)

	body, _ := json.Marshal(ToggleLineRequest{
		ClientID:      client.ID,
		LineID:        services.LinePrefixDef70 + client.ID,
		CurrentStatus: models.CertificateStatusPending,
	})

	_, c, _ := setupEcho(http.MethodPost, "/api/finances/toggle", bytes.NewReader(body))
	authenticate(c, user)

	err := ToggleLineStatusHandler(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestToggleScopedToOwner(t *testing.T) {
	testDB := setupTestDB(t)
	owner := createTestUser(t, testDB, "owner@example.com")
	other := createTestUser(t, testDB, "other@example.com")

	client := createTestClient(t, testDB, owner.ID, models.OriginPrivate, models.CaseTypeCivil)
	fin := &models.ClientFinancials{ClientID: client.ID, TotalAgreed: 1000, InitialPayment: 500}
	assert.NoError(t, testDB.Create(fin).Error)

	body, _ := json.Marshal(ToggleLineRequest{
		ClientID:      client.ID,
		LineID:        services.LinePrefixEntry + client.ID,
		CurrentStatus: models.PaymentStatusPaid,
	})

	_, c, _ := setupEcho(http.MethodPost, "/api/finances/toggle", bytes.NewReader(body))
	authenticate(c, other)

	err := ToggleLineStatusHandler(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}
