package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"juris_desk_go/db"
	"juris_desk_go/middleware"
	"juris_desk_go/models"
	"juris_desk_go/services"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// ClientRequest is the create/update payload for a client and its fee plan
type ClientRequest struct {
	Name           string `json:"name" form:"name"`
	Document       string `json:"document" form:"document"`
	Email          string `json:"email" form:"email"`
	Phone          string `json:"phone" form:"phone"`
	Address        string `json:"address" form:"address"`
	Notes          string `json:"notes" form:"notes"`
	Origin         string `json:"origin" form:"origin"`
	CaseType       string `json:"case_type" form:"case_type"`
	CaseNumber     string `json:"case_number" form:"case_number"`
	Court          string `json:"court" form:"court"`
	Status         string `json:"status" form:"status"`
	LawyerOfRecord string `json:"lawyer_of_record" form:"lawyer_of_record"`

	Financials *FinancialsRequest `json:"financials,omitempty"`
}

// FinancialsRequest carries the fee plan fields. Which fields apply depends
// on the plan kind selected by origin and case type.
type FinancialsRequest struct {
	TotalAgreed float64 `json:"total_agreed" form:"total_agreed"`

	// Private installment plans
	InitialPayment   float64 `json:"initial_payment" form:"initial_payment"`
	InstallmentCount int     `json:"installment_count" form:"installment_count"`
	FirstDueDate     string  `json:"first_due_date" form:"first_due_date"` // YYYY-MM-DD

	// Private labor plans
	SuccessFeePercentage float64 `json:"success_fee_percentage" form:"success_fee_percentage"`
	LaborFinalValue      float64 `json:"labor_final_value" form:"labor_final_value"`
	LaborPaymentDate     string  `json:"labor_payment_date" form:"labor_payment_date"` // YYYY-MM-DD

	// Defensoria certificates
	HasRecourse          bool    `json:"has_recourse" form:"has_recourse"`
	DefensoriaValue70    float64 `json:"defensoria_value_70" form:"defensoria_value_70"`
	DefensoriaVoucher70  string  `json:"defensoria_voucher_70" form:"defensoria_voucher_70"`
	DefensoriaStatus70   string  `json:"defensoria_status_70" form:"defensoria_status_70"`
	DefensoriaMonth70    string  `json:"defensoria_month_70" form:"defensoria_month_70"`
	DefensoriaValue30    float64 `json:"defensoria_value_30" form:"defensoria_value_30"`
	DefensoriaVoucher30  string  `json:"defensoria_voucher_30" form:"defensoria_voucher_30"`
	DefensoriaStatus30   string  `json:"defensoria_status_30" form:"defensoria_status_30"`
	DefensoriaMonth30    string  `json:"defensoria_month_30" form:"defensoria_month_30"`
	DefensoriaValue100   float64 `json:"defensoria_value_100" form:"defensoria_value_100"`
	DefensoriaVoucher100 string  `json:"defensoria_voucher_100" form:"defensoria_voucher_100"`
	DefensoriaStatus100  string  `json:"defensoria_status_100" form:"defensoria_status_100"`
	DefensoriaMonth100   string  `json:"defensoria_month_100" form:"defensoria_month_100"`
}

// GetClientsHandler returns the user's clients with filtering and pagination
func GetClientsHandler(c echo.Context) error {
	origin := c.QueryParam("origin")
	caseType := c.QueryParam("case_type")
	status := c.QueryParam("status")
	keyword := c.QueryParam("keyword")

	page := 1
	limit := 20
	if pageParam := c.QueryParam("page"); pageParam != "" {
		if p, err := strconv.Atoi(pageParam); err == nil && p > 0 {
			page = p
		}
	}
	if limitParam := c.QueryParam("limit"); limitParam != "" {
		if l, err := strconv.Atoi(limitParam); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	query := middleware.UserScopedQuery(c, db.DB).Model(&models.Client{})

	if origin != "" && models.IsValidOrigin(origin) {
		query = query.Where("origin = ?", origin)
	}
	if caseType != "" && models.IsValidCaseType(caseType) {
		query = query.Where("case_type = ?", caseType)
	}
	if status != "" && models.IsValidClientStatus(status) {
		query = query.Where("status = ?", status)
	}
	if keyword != "" {
		keyword = "%" + keyword + "%"
		query = query.Where("name LIKE ? OR case_number LIKE ? OR document LIKE ?", keyword, keyword, keyword)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to count clients")
	}

	var clients []models.Client
	if err := query.
		Preload("Financials").
		Preload("Financials.Installments").
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&clients).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch clients")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"clients":     clients,
		"total":       total,
		"page":        page,
		"total_pages": int((total + int64(limit) - 1) / int64(limit)),
	})
}

// GetClientHandler returns a single client with its fee plan
func GetClientHandler(c echo.Context) error {
	client, err := loadOwnedClient(c, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, client)
}

// CreateClientHandler creates a client together with their fee plan
func CreateClientHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	var req ClientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}
	if err := validateClientRequest(&req); err != nil {
		return err
	}

	status := req.Status
	if status == "" {
		status = models.ClientStatusActive
	}

	client := models.Client{
		UserID:         user.ID,
		Name:           req.Name,
		Document:       req.Document,
		Email:          req.Email,
		Phone:          req.Phone,
		Address:        req.Address,
		Notes:          req.Notes,
		Origin:         req.Origin,
		CaseType:       req.CaseType,
		CaseNumber:     req.CaseNumber,
		Court:          req.Court,
		Status:         status,
		LawyerOfRecord: req.LawyerOfRecord,
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&client).Error; err != nil {
			return err
		}
		if req.Financials != nil {
			fin, err := buildFinancials(&client, req.Financials)
			if err != nil {
				return err
			}
			if err := tx.Create(fin).Error; err != nil {
				return err
			}
			client.Financials = fin
		}
		return nil
	})
	if err != nil {
		if httpErr, ok := err.(*echo.HTTPError); ok {
			return httpErr
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create client")
	}

	if err := services.LogActivity(db.DB, user.ID, models.ActivityActionCreate, "Client", client.ID, client.Name,
		fmt.Sprintf("Registered client (%s, %s)", models.GetOriginDisplayName(client.Origin), models.GetCaseTypeDisplayName(client.CaseType))); err != nil {
		c.Logger().Errorf("Failed to log activity: %v", err)
	}

	return c.JSON(http.StatusCreated, client)
}

// UpdateClientHandler updates a client's data and fee plan. Installment
// values are a snapshot from plan creation; editing the agreed total does
// not recompute existing installments.
func UpdateClientHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	client, err := loadOwnedClient(c, c.Param("id"))
	if err != nil {
		return err
	}

	var req ClientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}
	if err := validateClientRequest(&req); err != nil {
		return err
	}

	client.Name = req.Name
	client.Document = req.Document
	client.Email = req.Email
	client.Phone = req.Phone
	client.Address = req.Address
	client.Notes = req.Notes
	client.Origin = req.Origin
	client.CaseType = req.CaseType
	client.CaseNumber = req.CaseNumber
	client.Court = req.Court
	client.LawyerOfRecord = req.LawyerOfRecord
	if req.Status != "" {
		client.Status = req.Status
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(client).Error; err != nil {
			return err
		}
		if req.Financials != nil {
			if err := applyFinancialsUpdate(tx, client, req.Financials); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if httpErr, ok := err.(*echo.HTTPError); ok {
			return httpErr
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update client")
	}

	if err := services.LogActivity(db.DB, user.ID, models.ActivityActionUpdate, "Client", client.ID, client.Name, "Updated client record"); err != nil {
		c.Logger().Errorf("Failed to log activity: %v", err)
	}

	return c.JSON(http.StatusOK, client)
}

// DeleteClientHandler soft-deletes a client
func DeleteClientHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	client, err := loadOwnedClient(c, c.Param("id"))
	if err != nil {
		return err
	}

	if err := db.DB.Delete(client).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete client")
	}

	if err := services.LogActivity(db.DB, user.ID, models.ActivityActionDelete, "Client", client.ID, client.Name, "Removed client record"); err != nil {
		c.Logger().Errorf("Failed to log activity: %v", err)
	}

	return c.NoContent(http.StatusNoContent)
}

// loadOwnedClient fetches a client by id scoped to the current user
func loadOwnedClient(c echo.Context, id string) (*models.Client, error) {
	if id == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Client id is required")
	}

	var client models.Client
	err := middleware.UserScopedQuery(c, db.DB).
		Preload("Financials").
		Preload("Financials.Installments").
		First(&client, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, echo.NewHTTPError(http.StatusNotFound, "Client not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch client")
	}
	return &client, nil
}

func validateClientRequest(req *ClientRequest) error {
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Name is required")
	}
	if !models.IsValidOrigin(req.Origin) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid origin")
	}
	if !models.IsValidCaseType(req.CaseType) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid case type")
	}
	if req.Status != "" && !models.IsValidClientStatus(req.Status) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid status")
	}
	return nil
}

// buildFinancials assembles a new fee plan row for the client. For private
// installment plans the installment rows are generated here, snapshotting
// (total - entry) / count at creation time.
func buildFinancials(client *models.Client, req *FinancialsRequest) (*models.ClientFinancials, error) {
	fin := &models.ClientFinancials{
		ClientID:    client.ID,
		TotalAgreed: req.TotalAgreed,
	}

	switch models.PlanKindFor(client.Origin, client.CaseType) {
	case models.PlanKindInstallments:
		fin.InitialPayment = req.InitialPayment
		fin.InitialPaymentStatus = models.PaymentStatusPaid
		if req.InitialPayment > 0 {
			now := time.Now()
			fin.InitialPaymentPaidAt = &now
		}
		if req.InstallmentCount > 0 {
			firstDue, err := services.ParseDate(req.FirstDueDate)
			if err != nil {
				return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid first due date")
			}
			fin.Installments = services.BuildInstallmentPlan(req.TotalAgreed, req.InitialPayment, req.InstallmentCount, firstDue)
		}
	case models.PlanKindSuccessFee:
		fin.SuccessFeePercentage = req.SuccessFeePercentage
		fin.SuccessFeeStatus = models.PaymentStatusPending
		fin.LaborFinalValue = req.LaborFinalValue
		if req.LaborPaymentDate != "" {
			paymentDate, err := services.ParseDate(req.LaborPaymentDate)
			if err != nil {
				return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid labor payment date")
			}
			fin.LaborPaymentDate = &paymentDate
		}
	case models.PlanKindDefensoria:
		applyDefensoriaFields(fin, req)
	}

	return fin, nil
}

// applyFinancialsUpdate updates the existing fee plan in place. Existing
// installment rows are kept untouched; only plan-level fields change.
func applyFinancialsUpdate(tx *gorm.DB, client *models.Client, req *FinancialsRequest) error {
	if client.Financials == nil {
		fin, err := buildFinancials(client, req)
		if err != nil {
			return err
		}
		if err := tx.Create(fin).Error; err != nil {
			return err
		}
		client.Financials = fin
		return nil
	}

	fin := client.Financials
	fin.TotalAgreed = req.TotalAgreed

	switch models.PlanKindFor(client.Origin, client.CaseType) {
	case models.PlanKindInstallments:
		fin.InitialPayment = req.InitialPayment
	case models.PlanKindSuccessFee:
		fin.SuccessFeePercentage = req.SuccessFeePercentage
		fin.LaborFinalValue = req.LaborFinalValue
		if req.LaborPaymentDate != "" {
			paymentDate, err := services.ParseDate(req.LaborPaymentDate)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "Invalid labor payment date")
			}
			fin.LaborPaymentDate = &paymentDate
		} else {
			fin.LaborPaymentDate = nil
		}
	case models.PlanKindDefensoria:
		applyDefensoriaFields(fin, req)
	}

	return tx.Omit("Installments").Save(fin).Error
}

func applyDefensoriaFields(fin *models.ClientFinancials, req *FinancialsRequest) {
	fin.HasRecourse = req.HasRecourse
	fin.DefensoriaValue70 = req.DefensoriaValue70
	fin.DefensoriaVoucher70 = req.DefensoriaVoucher70
	fin.DefensoriaStatus70 = req.DefensoriaStatus70
	fin.DefensoriaMonth70 = req.DefensoriaMonth70
	fin.DefensoriaValue30 = req.DefensoriaValue30
	fin.DefensoriaVoucher30 = req.DefensoriaVoucher30
	fin.DefensoriaStatus30 = req.DefensoriaStatus30
	fin.DefensoriaMonth30 = req.DefensoriaMonth30
	fin.DefensoriaValue100 = req.DefensoriaValue100
	fin.DefensoriaVoucher100 = req.DefensoriaVoucher100
	fin.DefensoriaStatus100 = req.DefensoriaStatus100
	fin.DefensoriaMonth100 = req.DefensoriaMonth100
}
