package services

import (
	"bytes"
	"testing"
	"time"

	"juris_desk_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"
)

func TestExportFinancialReportXLSX(t *testing.T) {
	date := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	groups := []ClientGroup{{
		ClientID:   "client-1",
		ClientName: "Maria Souza",
		Lines: []LineItem{
			{Label: "Entry payment", Value: 2000, Date: &date, Status: models.PaymentStatusPaid},
			{Label: "Installment 1/2", Value: 4000, Date: &date, Status: models.PaymentStatusPending},
		},
	}}
	totals := Totals{Received: 2000, Receivable: 4000}

	data, err := ExportFinancialReportXLSX(groups, totals)
	assert.NoError(t, err)
	assert.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	assert.NoError(t, err)
	defer f.Close()

	const sheet = "Financial Report"

	// Header row
	client, err := f.GetCellValue(sheet, "A1")
	assert.NoError(t, err)
	assert.Equal(t, "Client", client)

	// First line item
	name, err := f.GetCellValue(sheet, "A2")
	assert.NoError(t, err)
	assert.Equal(t, "Maria Souza", name)
	label, err := f.GetCellValue(sheet, "B2")
	assert.NoError(t, err)
	assert.Equal(t, "Entry payment", label)

	// Summary block sits after the listing and a blank row
	summaryLabel, err := f.GetCellValue(sheet, "A5")
	assert.NoError(t, err)
	assert.Equal(t, "Received", summaryLabel)
	summaryValue, err := f.GetCellValue(sheet, "B5")
	assert.NoError(t, err)
	assert.Equal(t, "2000", summaryValue)
}
