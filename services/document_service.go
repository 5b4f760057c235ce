package services

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"juris_desk_go/models"

	"github.com/microcosm-cc/bluemonday"
)

// Document type constants
const (
	DocumentProcuration       = "procuration"
	DocumentServicesContract  = "services_contract"
	DocumentIncomeDeclaration = "income_declaration"
	DocumentFinancialReport   = "financial_report"
)

// sanitizer strips markup from free-text fields before they reach a document
var sanitizer = bluemonday.StrictPolicy()

// DocumentHeader is the letterhead data shared by all generated documents
type DocumentHeader struct {
	FirmName        string
	LawyerName      string
	OABRegistration string
	Address         string
	Phone           string
	Today           string
}

// NewDocumentHeader builds the letterhead from the user and their settings
func NewDocumentHeader(user *models.User, settings *models.UserSettings) DocumentHeader {
	header := DocumentHeader{
		LawyerName: user.Name,
		Today:      time.Now().Format("January 2, 2006"),
	}
	if settings != nil {
		header.FirmName = settings.FirmName
		header.OABRegistration = settings.OABRegistration
		header.Address = settings.Address
		header.Phone = settings.Phone
	}
	if header.FirmName == "" {
		header.FirmName = user.Name
	}
	return header
}

var procurationTmpl = template.Must(template.New(DocumentProcuration).Parse(`
<h1>POWER OF ATTORNEY</h1>
<p><strong>Principal:</strong> {{.Client.Name}}, document {{.Client.Document}}, residing at {{.Client.Address}}.</p>
<p><strong>Attorney-in-fact:</strong> {{.Header.LawyerName}}, registration {{.Header.OABRegistration}}, with office at {{.Header.Address}}.</p>
<p>The principal appoints the attorney-in-fact with the powers of the general clause for the judicial practice, in any court or instance, being able to file suits, waive, settle, receive and give discharge, as well as the special powers required for the full representation of the principal in the matter of {{.CaseTypeLabel}} case {{.Client.CaseNumber}}.</p>
<div class="date-line"><p>{{.Header.Today}}</p></div>
<div class="signature-block">
  <div class="signature-line">{{.Client.Name}}</div>
</div>
`))

var contractTmpl = template.Must(template.New(DocumentServicesContract).Parse(`
<h1>LEGAL SERVICES AGREEMENT</h1>
<p><strong>Contracting party:</strong> {{.Client.Name}}, document {{.Client.Document}}.</p>
<p><strong>Contracted party:</strong> {{.Header.FirmName}}, represented by {{.Header.LawyerName}}, registration {{.Header.OABRegistration}}.</p>
<h2>Object</h2>
<p>Legal representation in the {{.CaseTypeLabel}} matter{{if .Client.CaseNumber}}, case {{.Client.CaseNumber}}{{end}}.</p>
<h2>Fees</h2>
<p>Total agreed fees: {{.TotalAgreed}}.</p>
{{if .HasEntry}}<p>Entry payment: {{.EntryPayment}}.</p>{{end}}
{{if .Installments}}
<table>
  <tr><th>#</th><th>Value</th><th>Due date</th></tr>
  {{range .Installments}}<tr><td>{{.Number}}</td><td>{{.Value}}</td><td>{{.DueDate}}</td></tr>{{end}}
</table>
{{end}}
{{if .SuccessFee}}<p>Success fee: {{.SuccessFee}} of the final award.</p>{{end}}
<div class="date-line"><p>{{.Header.Today}}</p></div>
<div class="signature-block">
  <div class="signature-line">{{.Client.Name}}</div>
  <div class="signature-line">{{.Header.LawyerName}}</div>
</div>
`))

var incomeDeclarationTmpl = template.Must(template.New(DocumentIncomeDeclaration).Parse(`
<h1>DECLARATION OF HYPOSUFFICIENCY</h1>
<p>{{.Client.Name}}, document {{.Client.Document}}, residing at {{.Client.Address}}, declares under the penalties of the law that they lack the financial means to bear the costs of legal proceedings without prejudice to their own sustenance or that of their family, for the purposes of the free legal aid benefit.</p>
<div class="date-line"><p>{{.Header.Today}}</p></div>
<div class="signature-block">
  <div class="signature-line">{{.Client.Name}}</div>
</div>
`))

var financialReportTmpl = template.Must(template.New(DocumentFinancialReport).Parse(`
<h1>FINANCIAL REPORT</h1>
<p>{{.Header.FirmName}} — generated {{.Header.Today}}</p>
<h2>Summary</h2>
<table>
  <tr><th>Received</th><th>Receivable</th><th>Pending by institution</th></tr>
  <tr><td>{{.Received}}</td><td>{{.Receivable}}</td><td>{{.PendingByInstitution}}</td></tr>
</table>
{{range .Groups}}
<h3>{{.ClientName}}</h3>
<table>
  <tr><th>Item</th><th>Value</th><th>Date</th><th>Status</th></tr>
  {{range .Lines}}<tr><td>{{.Label}}</td><td>{{.Value}}</td><td>{{.Date}}</td><td>{{.Status}}</td></tr>{{end}}
</table>
{{end}}
`))

type documentClient struct {
	Name       string
	Document   string
	Address    string
	CaseNumber string
}

func sanitizeClient(client *models.Client) documentClient {
	return documentClient{
		Name:       sanitizer.Sanitize(client.Name),
		Document:   sanitizer.Sanitize(client.Document),
		Address:    sanitizer.Sanitize(client.Address),
		CaseNumber: sanitizer.Sanitize(client.CaseNumber),
	}
}

// FormatMoney renders a value the way the documents show money
func FormatMoney(value float64) string {
	return fmt.Sprintf("R$ %.2f", value)
}

func renderDocument(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", tmpl.Name(), err)
	}
	return wrapDocumentHTML(buf.String()), nil
}

// RenderProcuration renders the power-of-attorney document for a client
func RenderProcuration(header DocumentHeader, client *models.Client) (string, error) {
	return renderDocument(procurationTmpl, map[string]interface{}{
		"Header":        header,
		"Client":        sanitizeClient(client),
		"CaseTypeLabel": models.GetCaseTypeDisplayName(client.CaseType),
	})
}

// RenderServicesContract renders the fee agreement, payment plan included
func RenderServicesContract(header DocumentHeader, client *models.Client) (string, error) {
	data := map[string]interface{}{
		"Header":        header,
		"Client":        sanitizeClient(client),
		"CaseTypeLabel": models.GetCaseTypeDisplayName(client.CaseType),
		"TotalAgreed":   FormatMoney(0),
		"HasEntry":      false,
		"EntryPayment":  "",
		"SuccessFee":    "",
	}

	if fin := client.Financials; fin != nil {
		data["TotalAgreed"] = FormatMoney(fin.TotalAgreed)
		if fin.InitialPayment > 0 {
			data["HasEntry"] = true
			data["EntryPayment"] = FormatMoney(fin.InitialPayment)
		}
		if fin.SuccessFeePercentage > 0 {
			data["SuccessFee"] = fmt.Sprintf("%.0f%%", fin.SuccessFeePercentage)
		}
		type row struct {
			Number  int
			Value   string
			DueDate string
		}
		var rows []row
		for _, inst := range fin.Installments {
			rows = append(rows, row{
				Number:  inst.Number,
				Value:   FormatMoney(inst.Value),
				DueDate: inst.DueDate.Format("2006-01-02"),
			})
		}
		data["Installments"] = rows
	}

	return renderDocument(contractTmpl, data)
}

// RenderIncomeDeclaration renders the hyposufficiency declaration
func RenderIncomeDeclaration(header DocumentHeader, client *models.Client) (string, error) {
	return renderDocument(incomeDeclarationTmpl, map[string]interface{}{
		"Header": header,
		"Client": sanitizeClient(client),
	})
}

// RenderFinancialReport renders the aggregate report over grouped line items
func RenderFinancialReport(header DocumentHeader, groups []ClientGroup, totals Totals) (string, error) {
	type lineRow struct {
		Label  string
		Value  string
		Date   string
		Status string
	}
	type groupRow struct {
		ClientName string
		Lines      []lineRow
	}

	var groupRows []groupRow
	for _, group := range groups {
		row := groupRow{ClientName: sanitizer.Sanitize(group.ClientName)}
		for _, line := range group.Lines {
			date := ""
			if line.Date != nil {
				date = line.Date.Format("2006-01-02")
			}
			row.Lines = append(row.Lines, lineRow{
				Label:  line.Label,
				Value:  FormatMoney(line.Value),
				Date:   date,
				Status: line.Status,
			})
		}
		groupRows = append(groupRows, row)
	}

	return renderDocument(financialReportTmpl, map[string]interface{}{
		"Header":               header,
		"Groups":               groupRows,
		"Received":             FormatMoney(totals.Received),
		"Receivable":           FormatMoney(totals.Receivable),
		"PendingByInstitution": FormatMoney(totals.PendingByInstitution),
	})
}

// wrapDocumentHTML wraps rendered content with the shared legal document styles
func wrapDocumentHTML(content string) string {
	return `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        @page { margin: 1in; }
        body {
            font-family: "Times New Roman", Times, serif;
            font-size: 12pt;
            line-height: 1.5;
            color: #000;
            text-align: justify;
        }
        h1 {
            font-size: 16pt;
            font-weight: bold;
            text-align: center;
            margin-bottom: 24pt;
        }
        h2 { font-size: 14pt; font-weight: bold; margin-top: 18pt; margin-bottom: 12pt; }
        h3 { font-size: 12pt; font-weight: bold; margin-top: 12pt; margin-bottom: 6pt; }
        p { margin-bottom: 12pt; }
        table { width: 100%; border-collapse: collapse; margin-bottom: 12pt; }
        th, td { border: 1px solid #000; padding: 6pt; text-align: left; }
        .signature-block { margin-top: 48pt; }
        .signature-line {
            border-top: 1px solid #000;
            width: 3in;
            margin-top: 36pt;
            padding-top: 6pt;
        }
        .date-line { margin-top: 24pt; }
    </style>
</head>
<body>
` + content + `
</body>
</html>`
}
