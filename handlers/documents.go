package handlers

import (
	"fmt"
	"net/http"

	"juris_desk_go/db"
	"juris_desk_go/middleware"
	"juris_desk_go/models"
	"juris_desk_go/services"

	"github.com/labstack/echo/v4"
)

// GenerateProcurationHandler renders the power-of-attorney PDF for a client
func GenerateProcurationHandler(c echo.Context) error {
	return generateClientDocument(c, services.DocumentProcuration, services.RenderProcuration)
}

// GenerateContractHandler renders the fee agreement PDF for a client
func GenerateContractHandler(c echo.Context) error {
	return generateClientDocument(c, services.DocumentServicesContract, services.RenderServicesContract)
}

// GenerateIncomeDeclarationHandler renders the hyposufficiency declaration PDF
func GenerateIncomeDeclarationHandler(c echo.Context) error {
	return generateClientDocument(c, services.DocumentIncomeDeclaration, services.RenderIncomeDeclaration)
}

// generateClientDocument is the shared path for the per-client documents:
// load the client, render the letterheaded HTML, print it to PDF.
func generateClientDocument(c echo.Context, docType string, render func(services.DocumentHeader, *models.Client) (string, error)) error {
	user := middleware.GetCurrentUser(c)

	client, err := loadOwnedClient(c, c.Param("id"))
	if err != nil {
		return err
	}

	settings, err := services.GetOrCreateSettings(db.DB, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load settings")
	}

	html, err := render(services.NewDocumentHeader(user, settings), client)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to render document")
	}

	pdf, err := services.GeneratePDF(html, services.DefaultPDFOptions())
	if err != nil {
		c.Logger().Errorf("PDF generation failed: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate PDF")
	}

	filename := fmt.Sprintf("%s_%s.pdf", docType, client.ID)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

// GenerateFinancialReportHandler renders the aggregate financial report PDF
// for the selected tab and search
func GenerateFinancialReportHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	tab := parseFilterTab(c.QueryParam("tab"))
	search := c.QueryParam("search")

	lines, err := collectLineItems(c)
	if err != nil {
		return err
	}
	groups := services.GroupByClient(services.FilterLines(lines, tab, search))
	totals := services.Aggregate(lines, tab, search)

	settings, err := services.GetOrCreateSettings(db.DB, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load settings")
	}

	html, err := services.RenderFinancialReport(services.NewDocumentHeader(user, settings), groups, totals)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to render report")
	}

	pdf, err := services.GeneratePDF(html, services.DefaultPDFOptions())
	if err != nil {
		c.Logger().Errorf("PDF generation failed: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate PDF")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="financial_report.pdf"`)
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

// ExportFinancialReportHandler exports the financial report as a spreadsheet
func ExportFinancialReportHandler(c echo.Context) error {
	tab := parseFilterTab(c.QueryParam("tab"))
	search := c.QueryParam("search")

	lines, err := collectLineItems(c)
	if err != nil {
		return err
	}
	groups := services.GroupByClient(services.FilterLines(lines, tab, search))
	totals := services.Aggregate(lines, tab, search)

	data, err := services.ExportFinancialReportXLSX(groups, totals)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to export report")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="financial_report.xlsx"`)
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
