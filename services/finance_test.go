package services

import (
	"fmt"
	"testing"
	"time"

	"juris_desk_go/models"

	"github.com/stretchr/testify/assert"
)

func timePtr(t time.Time) *time.Time {
	return &t
}

func privateClientWithPlan(initial float64, installmentCount int) *models.Client {
	total := 10000.0
	fin := &models.ClientFinancials{
		ID:                   "fin-1",
		ClientID:             "client-1",
		TotalAgreed:          total,
		InitialPayment:       initial,
		InitialPaymentStatus: models.PaymentStatusPaid,
	}
	plan := BuildInstallmentPlan(total, initial, installmentCount, time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC))
	for i := range plan {
		plan[i].ID = fmt.Sprintf("inst-%d", i+1)
		plan[i].FinancialsID = fin.ID
	}
	fin.Installments = plan

	return &models.Client{
		ID:         "client-1",
		Name:       "Maria Souza",
		Origin:     models.OriginPrivate,
		CaseType:   models.CaseTypeCivil,
		Financials: fin,
	}
}

func TestExpandFinancialsPrivateLineCount(t *testing.T) {
	t.Run("entry payment plus installments", func(t *testing.T) {
		client := privateClientWithPlan(2000, 3)
		lines := ExpandFinancials(client)
		assert.Len(t, lines, 4) // entry + 3 installments

		assert.Equal(t, "in-client-1", lines[0].ID)
		assert.True(t, lines[0].IsParticular)
		for _, line := range lines[1:] {
			assert.Contains(t, line.ID, "inst_")
		}
	})

	t.Run("no entry payment emits installments only", func(t *testing.T) {
		client := privateClientWithPlan(0, 3)
		lines := ExpandFinancials(client)
		assert.Len(t, lines, 3)
	})

	t.Run("no financials expands to nothing", func(t *testing.T) {
		client := &models.Client{ID: "c", Origin: models.OriginPrivate}
		assert.Empty(t, ExpandFinancials(client))
	})
}

func TestExpandFinancialsSuccessFee(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	client := &models.Client{
		ID:       "client-labor",
		Name:     "Jose Lima",
		Origin:   models.OriginPrivate,
		CaseType: models.CaseTypeLabor,
		Financials: &models.ClientFinancials{
			TotalAgreed:          50000,
			SuccessFeePercentage: 20,
		},
	}

	t.Run("value falls back to percentage of total", func(t *testing.T) {
		lines := ExpandFinancialsAt(client, now)
		assert.Len(t, lines, 1)
		assert.Equal(t, "success-client-labor", lines[0].ID)
		assert.Equal(t, 10000.0, lines[0].Value)
		assert.Equal(t, models.PaymentStatusPending, lines[0].Status)
	})

	t.Run("explicit final value wins", func(t *testing.T) {
		client.Financials.LaborFinalValue = 60000
		lines := ExpandFinancialsAt(client, now)
		assert.Equal(t, 60000.0, lines[0].Value)
		client.Financials.LaborFinalValue = 0
	})

	t.Run("past payment date forces paid", func(t *testing.T) {
		client.Financials.LaborPaymentDate = timePtr(now.AddDate(0, 0, -1))
		lines := ExpandFinancialsAt(client, now)
		assert.Equal(t, models.PaymentStatusPaid, lines[0].Status)
		client.Financials.LaborPaymentDate = nil
	})

	t.Run("future payment date stays pending", func(t *testing.T) {
		client.Financials.LaborPaymentDate = timePtr(now.AddDate(0, 0, 1))
		lines := ExpandFinancialsAt(client, now)
		assert.Equal(t, models.PaymentStatusPending, lines[0].Status)
		client.Financials.LaborPaymentDate = nil
	})
}

func TestExpandFinancialsDefensoriaCriminal(t *testing.T) {
	client := &models.Client{
		ID:       "client-def",
		Name:     "Ana Costa",
		Origin:   models.OriginDefensoria,
		CaseType: models.CaseTypeCriminal,
		Financials: &models.ClientFinancials{
			TotalAgreed: 1000,
		},
	}

	t.Run("without recourse only the 70 percent line", func(t *testing.T) {
		lines := ExpandFinancials(client)
		assert.Len(t, lines, 1)
		assert.Equal(t, "def70-client-def", lines[0].ID)
		assert.InDelta(t, 700.0, lines[0].Value, 0.001)
		assert.True(t, lines[0].IsEstimated)
		assert.False(t, lines[0].IsParticular)
	})

	t.Run("with recourse both shares", func(t *testing.T) {
		client.Financials.HasRecourse = true
		lines := ExpandFinancials(client)
		assert.Len(t, lines, 2)
		assert.Equal(t, "def30-client-def", lines[1].ID)
		assert.InDelta(t, 300.0, lines[1].Value, 0.001)
		client.Financials.HasRecourse = false
	})

	t.Run("explicit certificate values are not estimated", func(t *testing.T) {
		client.Financials.DefensoriaValue70 = 650
		client.Financials.DefensoriaStatus70 = models.CertificateStatusLiquidated
		client.Financials.DefensoriaMonth70 = "2026-07"
		lines := ExpandFinancials(client)
		assert.Equal(t, 650.0, lines[0].Value)
		assert.False(t, lines[0].IsEstimated)
		assert.True(t, lines[0].IsPaid())
		assert.Equal(t, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), *lines[0].Date)
	})
}

func TestExpandFinancialsDefensoriaNonCriminal(t *testing.T) {
	client := &models.Client{
		ID:       "client-def-fam",
		Name:     "Pedro Alves",
		Origin:   models.OriginDefensoria,
		CaseType: models.CaseTypeFamily,
		Financials: &models.ClientFinancials{
			TotalAgreed: 800,
		},
	}

	lines := ExpandFinancials(client)
	assert.Len(t, lines, 1)
	assert.Equal(t, "def100-client-def-fam", lines[0].ID)
	assert.Equal(t, 800.0, lines[0].Value)
	assert.True(t, lines[0].IsEstimated)
}

func TestAggregateWorkedExample(t *testing.T) {
	// total 10000, entry 2000 paid, 3 pending installments of 2666.67
	client := privateClientWithPlan(2000, 3)
	lines := ExpandFinancials(client)

	totals := Aggregate(lines, TabGeneral, "")
	assert.Equal(t, 2000.0, totals.Received)
	assert.InDelta(t, 8000.01, totals.Receivable, 0.001) // 3 x 2666.67
	assert.Equal(t, 0.0, totals.PendingByInstitution)
}

func TestAggregateReceivedPlusReceivableIdentity(t *testing.T) {
	client := privateClientWithPlan(2000, 4)
	// Mark one installment paid to mix the buckets
	client.Financials.Installments[1].Status = models.PaymentStatusPaid

	lines := ExpandFinancials(client)
	var sum float64
	for _, line := range lines {
		sum += line.Value
	}

	for _, tab := range []FilterTab{TabGeneral, TabPrivate} {
		totals := Aggregate(lines, tab, "")
		assert.InDelta(t, sum, totals.Received+totals.Receivable, 0.0001, "tab %s", tab)
	}
}

func TestAggregateFiltering(t *testing.T) {
	private := privateClientWithPlan(2000, 2)
	defensoria := &models.Client{
		ID:       "client-def",
		Name:     "Ana Costa",
		Origin:   models.OriginDefensoria,
		CaseType: models.CaseTypeCriminal,
		Financials: &models.ClientFinancials{
			TotalAgreed: 1000,
		},
	}
	lines := append(ExpandFinancials(private), ExpandFinancials(defensoria)...)

	t.Run("tab scopes origin", func(t *testing.T) {
		totals := Aggregate(lines, TabDefensoria, "")
		assert.Equal(t, 0.0, totals.Received)
		assert.Equal(t, 0.0, totals.Receivable)
		assert.InDelta(t, 700.0, totals.PendingByInstitution, 0.001)
	})

	t.Run("search matches client name case-insensitively", func(t *testing.T) {
		totals := Aggregate(lines, TabGeneral, "ana")
		assert.InDelta(t, 700.0, totals.PendingByInstitution, 0.001)
		assert.Equal(t, 0.0, totals.Received)
	})

	t.Run("no match sums nothing", func(t *testing.T) {
		totals := Aggregate(lines, TabGeneral, "nobody")
		assert.Equal(t, Totals{}, totals)
	})
}

func TestAggregateIdempotent(t *testing.T) {
	client := privateClientWithPlan(2000, 3)

	first := Aggregate(ExpandFinancials(client), TabGeneral, "")
	second := Aggregate(ExpandFinancials(client), TabGeneral, "")
	assert.Equal(t, first, second)
}

func TestGroupByClient(t *testing.T) {
	older := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	lines := []LineItem{
		{ID: "a1", ClientID: "a", ClientName: "A", Date: &older},
		{ID: "b1", ClientID: "b", ClientName: "B", Date: &newer},
		{ID: "a2", ClientID: "a", ClientName: "A", Date: &newer},
		{ID: "b2", ClientID: "b", ClientName: "B"},
	}

	groups := GroupByClient(lines)
	assert.Len(t, groups, 2)

	// Both groups share the same latest date; grouping is stable, so "a" stays first
	assert.Equal(t, "a", groups[0].ClientID)
	// Within a group, newest first, undated last
	assert.Equal(t, "a2", groups[0].Lines[0].ID)
	assert.Equal(t, "a1", groups[0].Lines[1].ID)
	assert.Equal(t, "b1", groups[1].Lines[0].ID)
	assert.Equal(t, "b2", groups[1].Lines[1].ID)
}

func TestToggleLineStatus(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	t.Run("pending to paid stamps PaidAt", func(t *testing.T) {
		client := privateClientWithPlan(2000, 2)
		instID := client.Financials.Installments[0].ID

		updated, ok := ToggleLineStatus(client.Financials, LinePrefixInstallment+instID, models.PaymentStatusPending, now)
		assert.True(t, ok)
		assert.Equal(t, models.PaymentStatusPaid, updated.Installments[0].Status)
		assert.NotNil(t, updated.Installments[0].PaidAt)
		assert.Equal(t, now, *updated.Installments[0].PaidAt)

		// Original untouched
		assert.Equal(t, models.PaymentStatusPending, client.Financials.Installments[0].Status)
		assert.Nil(t, client.Financials.Installments[0].PaidAt)
	})

	t.Run("paid to pending clears PaidAt", func(t *testing.T) {
		client := privateClientWithPlan(2000, 2)
		updated, ok := ToggleLineStatus(client.Financials, LinePrefixEntry+client.ID, models.PaymentStatusPaid, now)
		assert.True(t, ok)
		assert.Equal(t, models.PaymentStatusPending, updated.InitialPaymentStatus)
		assert.Nil(t, updated.InitialPaymentPaidAt)
	})

	t.Run("overdue counts as pending and toggles to paid", func(t *testing.T) {
		client := privateClientWithPlan(2000, 2)
		instID := client.Financials.Installments[1].ID
		updated, ok := ToggleLineStatus(client.Financials, LinePrefixInstallment+instID, models.PaymentStatusOverdue, now)
		assert.True(t, ok)
		assert.Equal(t, models.PaymentStatusPaid, updated.Installments[1].Status)
	})

	t.Run("double toggle returns to an equivalent state", func(t *testing.T) {
		client := privateClientWithPlan(2000, 2)
		instID := client.Financials.Installments[0].ID
		lineID := LinePrefixInstallment + instID

		once, ok := ToggleLineStatus(client.Financials, lineID, models.PaymentStatusPending, now)
		assert.True(t, ok)
		twice, ok := ToggleLineStatus(once, lineID, once.Installments[0].Status, now)
		assert.True(t, ok)

		assert.Equal(t, client.Financials.Installments[0].Status, twice.Installments[0].Status)
		assert.Nil(t, twice.Installments[0].PaidAt)
	})

	t.Run("success fee toggles", func(t *testing.T) {
		fin := &models.ClientFinancials{SuccessFeePercentage: 20, SuccessFeeStatus: models.PaymentStatusPending}
		updated, ok := ToggleLineStatus(fin, LinePrefixSuccessFee+"client-x", models.PaymentStatusPending, now)
		assert.True(t, ok)
		assert.Equal(t, models.PaymentStatusPaid, updated.SuccessFeeStatus)
		assert.NotNil(t, updated.SuccessFeePaidAt)
	})

	t.Run("defensoria lines are not togglable", func(t *testing.T) {
		fin := &models.ClientFinancials{TotalAgreed: 1000}
		_, ok := ToggleLineStatus(fin, LinePrefixDef70+"client-x", models.CertificateStatusIssued, now)
		assert.False(t, ok)
	})

	t.Run("missing financials is a no-op", func(t *testing.T) {
		_, ok := ToggleLineStatus(nil, LinePrefixEntry+"client-x", models.PaymentStatusPending, now)
		assert.False(t, ok)
	})

	t.Run("unknown installment id", func(t *testing.T) {
		client := privateClientWithPlan(2000, 2)
		_, ok := ToggleLineStatus(client.Financials, LinePrefixInstallment+"missing", models.PaymentStatusPending, now)
		assert.False(t, ok)
	})
}

func TestBuildInstallmentPlan(t *testing.T) {
	firstDue := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	plan := BuildInstallmentPlan(10000, 2000, 3, firstDue)

	assert.Len(t, plan, 3)
	for i, inst := range plan {
		assert.Equal(t, i+1, inst.Number)
		assert.Equal(t, 2666.67, inst.Value) // rounded to cents at creation
		assert.Equal(t, firstDue.AddDate(0, i, 0), inst.DueDate)
		assert.Equal(t, models.PaymentStatusPending, inst.Status)
	}

	assert.Nil(t, BuildInstallmentPlan(10000, 2000, 0, firstDue))
}

func TestRefreshOverdue(t *testing.T) {
	today := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	fin := &models.ClientFinancials{
		Installments: []models.Installment{
			{Number: 1, Status: models.PaymentStatusPending, DueDate: today.AddDate(0, 0, -5)},
			{Number: 2, Status: models.PaymentStatusPaid, DueDate: today.AddDate(0, 0, -5)},
			{Number: 3, Status: models.PaymentStatusPending, DueDate: today.AddDate(0, 0, 5)},
		},
	}

	changed := RefreshOverdue(fin, today)
	assert.True(t, changed)
	assert.Equal(t, models.PaymentStatusOverdue, fin.Installments[0].Status)
	assert.Equal(t, models.PaymentStatusPaid, fin.Installments[1].Status)
	assert.Equal(t, models.PaymentStatusPending, fin.Installments[2].Status)

	assert.False(t, RefreshOverdue(fin, today))
	assert.False(t, RefreshOverdue(nil, today))
}
