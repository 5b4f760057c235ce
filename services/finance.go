package services

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"juris_desk_go/models"
)

// Line item ID prefixes. The toggle endpoint dispatches on these.
const (
	LinePrefixEntry       = "in-"
	LinePrefixInstallment = "inst_"
	LinePrefixSuccessFee  = "success-"
	LinePrefixDef70       = "def70-"
	LinePrefixDef30       = "def30-"
	LinePrefixDef100      = "def100-"
)

// Defensoria criminal certificate split
const (
	defensoriaShare70 = 0.70
	defensoriaShare30 = 0.30
)

// LineItem is one discrete receivable derived from a client's fee plan:
// the entry payment, a single installment, the success fee or a defensoria
// certificate share.
type LineItem struct {
	ID         string     `json:"id"`
	ClientID   string     `json:"client_id"`
	ClientName string     `json:"client_name"`
	Origin     string     `json:"origin"`
	Label      string     `json:"label"`
	Value      float64    `json:"value"`
	Date       *time.Time `json:"date,omitempty"`
	Status     string     `json:"status"`
	// IsParticular marks private-origin lines, the only ones the paid/pending
	// toggle applies to. Defensoria statuses change via the registration form.
	IsParticular bool `json:"is_particular"`
	// IsEstimated marks defensoria values derived from the agreed total
	// because no explicit certificate value was registered.
	IsEstimated bool `json:"is_estimated"`
}

// IsPaid reports whether the line's status counts as settled
func (l *LineItem) IsPaid() bool {
	return IsPaidStatus(l.Status)
}

// IsPaidStatus reports whether a stored status string counts as settled.
// Anything that is not paid or liquidated is treated as pending.
func IsPaidStatus(status string) bool {
	return status == models.PaymentStatusPaid || status == models.CertificateStatusLiquidated
}

// ExpandFinancials turns a client's fee plan into its discrete line items.
// Clients without a financials block expand to nothing.
func ExpandFinancials(client *models.Client) []LineItem {
	return ExpandFinancialsAt(client, time.Now())
}

// ExpandFinancialsAt is ExpandFinancials with an explicit reference time,
// used for the labor success-fee payment-date rule.
func ExpandFinancialsAt(client *models.Client, now time.Time) []LineItem {
	if client == nil || client.Financials == nil {
		return nil
	}
	fin := client.Financials

	if client.Origin == models.OriginDefensoria {
		return expandDefensoria(client, fin)
	}
	return expandPrivate(client, fin, now)
}

func expandPrivate(client *models.Client, fin *models.ClientFinancials, now time.Time) []LineItem {
	var lines []LineItem

	// Entry payment, only when one was agreed
	if fin.InitialPayment > 0 {
		status := fin.InitialPaymentStatus
		if status == "" {
			status = models.PaymentStatusPaid
		}
		lines = append(lines, LineItem{
			ID:           LinePrefixEntry + client.ID,
			ClientID:     client.ID,
			ClientName:   client.Name,
			Origin:       client.Origin,
			Label:        "Entry payment",
			Value:        fin.InitialPayment,
			Date:         fin.InitialPaymentPaidAt,
			Status:       status,
			IsParticular: true,
		})
	}

	// One line per installment, ordered by number
	installments := make([]models.Installment, len(fin.Installments))
	copy(installments, fin.Installments)
	sort.Slice(installments, func(i, j int) bool {
		return installments[i].Number < installments[j].Number
	})
	for _, inst := range installments {
		due := inst.DueDate
		lines = append(lines, LineItem{
			ID:           LinePrefixInstallment + inst.ID,
			ClientID:     client.ID,
			ClientName:   client.Name,
			Origin:       client.Origin,
			Label:        fmt.Sprintf("Installment %d/%d", inst.Number, len(installments)),
			Value:        inst.Value,
			Date:         &due,
			Status:       inst.Status,
			IsParticular: true,
		})
	}

	// Success fee (labor plans)
	if fin.SuccessFeePercentage > 0 {
		value := fin.LaborFinalValue
		if value <= 0 {
			value = fin.TotalAgreed * fin.SuccessFeePercentage / 100
		}
		status := fin.SuccessFeeStatus
		if status == "" {
			status = models.PaymentStatusPending
		}
		// The fee is considered settled once the award payment date has passed,
		// even if the stored status was never flipped.
		if fin.SuccessFeeStatus == models.PaymentStatusPaid ||
			(fin.LaborPaymentDate != nil && !fin.LaborPaymentDate.After(now)) {
			status = models.PaymentStatusPaid
		}
		lines = append(lines, LineItem{
			ID:           LinePrefixSuccessFee + client.ID,
			ClientID:     client.ID,
			ClientName:   client.Name,
			Origin:       client.Origin,
			Label:        fmt.Sprintf("Success fee (%.0f%%)", fin.SuccessFeePercentage),
			Value:        value,
			Date:         fin.LaborPaymentDate,
			Status:       status,
			IsParticular: true,
		})
	}

	return lines
}

func expandDefensoria(client *models.Client, fin *models.ClientFinancials) []LineItem {
	if client.CaseType != models.CaseTypeCriminal {
		// Non-criminal defensoria cases carry a single 100% certificate
		value, estimated := fin.DefensoriaValue100, false
		if value <= 0 {
			value, estimated = fin.TotalAgreed, true
		}
		return []LineItem{{
			ID:          LinePrefixDef100 + client.ID,
			ClientID:    client.ID,
			ClientName:  client.Name,
			Origin:      client.Origin,
			Label:       "Defensoria certificate (100%)",
			Value:       value,
			Date:        parsePaymentMonth(fin.DefensoriaMonth100),
			Status:      certificateStatus(fin.DefensoriaStatus100),
			IsEstimated: estimated,
		}}
	}

	// Criminal: 70% certificate always, 30% only when the case had a recourse stage
	value70, estimated70 := fin.DefensoriaValue70, false
	if value70 <= 0 {
		value70, estimated70 = fin.TotalAgreed*defensoriaShare70, true
	}
	lines := []LineItem{{
		ID:          LinePrefixDef70 + client.ID,
		ClientID:    client.ID,
		ClientName:  client.Name,
		Origin:      client.Origin,
		Label:       "Defensoria certificate (70%)",
		Value:       value70,
		Date:        parsePaymentMonth(fin.DefensoriaMonth70),
		Status:      certificateStatus(fin.DefensoriaStatus70),
		IsEstimated: estimated70,
	}}

	if fin.HasRecourse {
		value30, estimated30 := fin.DefensoriaValue30, false
		if value30 <= 0 {
			value30, estimated30 = fin.TotalAgreed*defensoriaShare30, true
		}
		lines = append(lines, LineItem{
			ID:          LinePrefixDef30 + client.ID,
			ClientID:    client.ID,
			ClientName:  client.Name,
			Origin:      client.Origin,
			Label:       "Defensoria certificate (30%)",
			Value:       value30,
			Date:        parsePaymentMonth(fin.DefensoriaMonth30),
			Status:      certificateStatus(fin.DefensoriaStatus30),
			IsEstimated: estimated30,
		})
	}

	return lines
}

func certificateStatus(status string) string {
	if status == "" {
		return models.CertificateStatusPending
	}
	return status
}

// parsePaymentMonth turns a YYYY-MM string into the first day of that month
func parsePaymentMonth(month string) *time.Time {
	if month == "" {
		return nil
	}
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return nil
	}
	return &t
}

// FilterTab selects which origins the finances view aggregates over
type FilterTab string

const (
	TabGeneral    FilterTab = "GENERAL"
	TabPrivate    FilterTab = "PRIVATE"
	TabDefensoria FilterTab = "DEFENSORIA"
)

// Totals are the three running buckets shown across the finances views
type Totals struct {
	Received             float64 `json:"received"`
	Receivable           float64 `json:"receivable"`
	PendingByInstitution float64 `json:"pending_by_institution"`
}

// FilterLines applies the tab and client-name search to a line item sequence
func FilterLines(lines []LineItem, tab FilterTab, search string) []LineItem {
	search = strings.ToLower(strings.TrimSpace(search))
	var out []LineItem
	for _, line := range lines {
		switch tab {
		case TabPrivate:
			if line.Origin != models.OriginPrivate {
				continue
			}
		case TabDefensoria:
			if line.Origin != models.OriginDefensoria {
				continue
			}
		}
		if search != "" && !strings.Contains(strings.ToLower(line.ClientName), search) {
			continue
		}
		out = append(out, line)
	}
	return out
}

// Aggregate sums filtered line items into the three named buckets. Plain
// floating-point summation, no rounding.
func Aggregate(lines []LineItem, tab FilterTab, search string) Totals {
	var totals Totals
	for _, line := range FilterLines(lines, tab, search) {
		switch {
		case line.IsPaid():
			totals.Received += line.Value
		case line.Origin == models.OriginPrivate:
			totals.Receivable += line.Value
		case line.Origin == models.OriginDefensoria:
			totals.PendingByInstitution += line.Value
		}
	}
	return totals
}

// ClientGroup is the display grouping of line items per client
type ClientGroup struct {
	ClientID   string     `json:"client_id"`
	ClientName string     `json:"client_name"`
	Lines      []LineItem `json:"lines"`
}

// GroupByClient groups line items by client. Lines within a group are sorted
// by date descending (undated last); groups are sorted by their most recent
// line date descending.
func GroupByClient(lines []LineItem) []ClientGroup {
	byClient := make(map[string]*ClientGroup)
	var order []string
	for _, line := range lines {
		group, ok := byClient[line.ClientID]
		if !ok {
			group = &ClientGroup{ClientID: line.ClientID, ClientName: line.ClientName}
			byClient[line.ClientID] = group
			order = append(order, line.ClientID)
		}
		group.Lines = append(group.Lines, line)
	}

	groups := make([]ClientGroup, 0, len(byClient))
	for _, id := range order {
		group := byClient[id]
		sort.SliceStable(group.Lines, func(i, j int) bool {
			return lineDateAfter(group.Lines[i].Date, group.Lines[j].Date)
		})
		groups = append(groups, *group)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return lineDateAfter(groupLatestDate(groups[i]), groupLatestDate(groups[j]))
	})
	return groups
}

func groupLatestDate(group ClientGroup) *time.Time {
	var latest *time.Time
	for i := range group.Lines {
		d := group.Lines[i].Date
		if d == nil {
			continue
		}
		if latest == nil || d.After(*latest) {
			latest = d
		}
	}
	return latest
}

// lineDateAfter orders dates descending with nil dates last
func lineDateAfter(a, b *time.Time) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return a.After(*b)
}

// ToggleLineStatus flips a line between paid and pending on a copy of the
// financials and returns it; the input is left untouched. Any status other
// than paid/liquidated counts as pending. The transition to paid stamps the
// matching PaidAt field, the transition away clears it. Returns false when
// nothing was toggled: missing financials, an unknown line id, or a
// defensoria line (those change only through the registration form).
func ToggleLineStatus(fin *models.ClientFinancials, lineID, currentStatus string, now time.Time) (*models.ClientFinancials, bool) {
	if fin == nil {
		return nil, false
	}

	newStatus := models.PaymentStatusPaid
	var paidAt *time.Time
	if IsPaidStatus(currentStatus) {
		newStatus = models.PaymentStatusPending
	} else {
		stamp := now
		paidAt = &stamp
	}

	updated := fin.Clone()

	switch {
	case strings.HasPrefix(lineID, LinePrefixInstallment):
		instID := strings.TrimPrefix(lineID, LinePrefixInstallment)
		for i := range updated.Installments {
			if updated.Installments[i].ID == instID {
				updated.Installments[i].Status = newStatus
				updated.Installments[i].PaidAt = paidAt
				return updated, true
			}
		}
		return nil, false
	case strings.HasPrefix(lineID, LinePrefixEntry):
		updated.InitialPaymentStatus = newStatus
		updated.InitialPaymentPaidAt = paidAt
		return updated, true
	case strings.HasPrefix(lineID, LinePrefixSuccessFee):
		updated.SuccessFeeStatus = newStatus
		updated.SuccessFeePaidAt = paidAt
		return updated, true
	default:
		return nil, false
	}
}

// BuildInstallmentPlan computes the installment rows for a private plan:
// (total - entry) / count, rounded to cents, due monthly from firstDue.
// Values are a snapshot; later edits to the agreed total do not recompute them.
func BuildInstallmentPlan(totalAgreed, initialPayment float64, count int, firstDue time.Time) []models.Installment {
	if count <= 0 {
		return nil
	}
	value := math.Round((totalAgreed-initialPayment)/float64(count)*100) / 100
	installments := make([]models.Installment, count)
	for i := 0; i < count; i++ {
		installments[i] = models.Installment{
			Number:  i + 1,
			Value:   value,
			DueDate: firstDue.AddDate(0, i, 0),
			Status:  models.PaymentStatusPending,
		}
	}
	return installments
}

// RefreshOverdue marks unpaid installments past their due date as overdue.
// Returns true when any status changed.
func RefreshOverdue(fin *models.ClientFinancials, today time.Time) bool {
	if fin == nil {
		return false
	}
	changed := false
	for i := range fin.Installments {
		inst := &fin.Installments[i]
		if inst.Status == models.PaymentStatusPending && inst.DueDate.Before(today.Truncate(24*time.Hour)) {
			inst.Status = models.PaymentStatusOverdue
			changed = true
		}
	}
	return changed
}
