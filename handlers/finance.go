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

// GetFinancesHandler returns the finances view for a tab: the filtered line
// items grouped by client plus the three running totals.
func GetFinancesHandler(c echo.Context) error {
	tab := parseFilterTab(c.QueryParam("tab"))
	search := c.QueryParam("search")

	lines, err := collectLineItems(c)
	if err != nil {
		return err
	}

	filtered := services.FilterLines(lines, tab, search)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tab":    tab,
		"groups": services.GroupByClient(filtered),
		"totals": services.Aggregate(lines, tab, search),
	})
}

// ToggleLineRequest identifies the line being flipped between paid and pending
type ToggleLineRequest struct {
	ClientID      string `json:"client_id" form:"client_id"`
	LineID        string `json:"line_id" form:"line_id"`
	CurrentStatus string `json:"current_status" form:"current_status"`
}

// ToggleLineStatusHandler flips a private-origin line between paid and
// pending. Defensoria lines are rejected; their statuses change through the
// client registration form.
func ToggleLineStatusHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	var req ToggleLineRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}
	if req.ClientID == "" || req.LineID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Client id and line id are required")
	}

	client, err := loadOwnedClient(c, req.ClientID)
	if err != nil {
		return err
	}
	if client.Financials == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Client has no fee plan")
	}

	updated, ok := services.ToggleLineStatus(client.Financials, req.LineID, req.CurrentStatus, time.Now())
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "This line cannot be toggled")
	}

	if err := persistToggledLine(db.DB, updated, req.LineID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update payment status")
	}
	client.Financials = updated

	newStatus := statusForLine(updated, req.LineID)
	if err := services.LogActivity(db.DB, user.ID, models.ActivityActionUpdate, "Client", client.ID, client.Name,
		fmt.Sprintf("Payment line marked %s", newStatus)); err != nil {
		c.Logger().Errorf("Failed to log activity: %v", err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"lines":  services.ExpandFinancials(client),
		"status": newStatus,
	})
}

// collectLineItems expands every client of the current user into line items
func collectLineItems(c echo.Context) ([]services.LineItem, error) {
	var clients []models.Client
	if err := middleware.UserScopedQuery(c, db.DB).
		Preload("Financials").
		Preload("Financials.Installments").
		Find(&clients).Error; err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch clients")
	}

	now := time.Now()
	var lines []services.LineItem
	for i := range clients {
		if clients[i].Financials != nil {
			services.RefreshOverdue(clients[i].Financials, now)
		}
		lines = append(lines, services.ExpandFinancialsAt(&clients[i], now)...)
	}
	return lines, nil
}

func parseFilterTab(raw string) services.FilterTab {
	switch services.FilterTab(strings.ToUpper(raw)) {
	case services.TabPrivate:
		return services.TabPrivate
	case services.TabDefensoria:
		return services.TabDefensoria
	default:
		return services.TabGeneral
	}
}

// persistToggledLine writes only the fields the toggle touched
func persistToggledLine(tx *gorm.DB, fin *models.ClientFinancials, lineID string) error {
	switch {
	case strings.HasPrefix(lineID, services.LinePrefixInstallment):
		instID := strings.TrimPrefix(lineID, services.LinePrefixInstallment)
		for i := range fin.Installments {
			if fin.Installments[i].ID == instID {
				return tx.Model(&models.Installment{}).Where("id = ?", instID).
					Updates(map[string]interface{}{
						"status":  fin.Installments[i].Status,
						"paid_at": fin.Installments[i].PaidAt,
					}).Error
			}
		}
		return gorm.ErrRecordNotFound
	case strings.HasPrefix(lineID, services.LinePrefixEntry):
		return tx.Model(&models.ClientFinancials{}).Where("id = ?", fin.ID).
			Updates(map[string]interface{}{
				"initial_payment_status":  fin.InitialPaymentStatus,
				"initial_payment_paid_at": fin.InitialPaymentPaidAt,
			}).Error
	case strings.HasPrefix(lineID, services.LinePrefixSuccessFee):
		return tx.Model(&models.ClientFinancials{}).Where("id = ?", fin.ID).
			Updates(map[string]interface{}{
				"success_fee_status":  fin.SuccessFeeStatus,
				"success_fee_paid_at": fin.SuccessFeePaidAt,
			}).Error
	default:
		return fmt.Errorf("unknown line id %q", lineID)
	}
}

// statusForLine reads the stored status of the toggled line
func statusForLine(fin *models.ClientFinancials, lineID string) string {
	switch {
	case strings.HasPrefix(lineID, services.LinePrefixInstallment):
		instID := strings.TrimPrefix(lineID, services.LinePrefixInstallment)
		for i := range fin.Installments {
			if fin.Installments[i].ID == instID {
				return fin.Installments[i].Status
			}
		}
		return ""
	case strings.HasPrefix(lineID, services.LinePrefixEntry):
		return fin.InitialPaymentStatus
	case strings.HasPrefix(lineID, services.LinePrefixSuccessFee):
		return fin.SuccessFeeStatus
	default:
		return ""
	}
}
