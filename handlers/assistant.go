package handlers

import (
	"io"
	"net/http"

	"juris_desk_go/db"
	"juris_desk_go/middleware"
	"juris_desk_go/models"
	"juris_desk_go/services"
	"juris_desk_go/services/ai"

	"github.com/labstack/echo/v4"
)

// MaxTriageAttachmentSize caps triage attachments at 10 MB
const MaxTriageAttachmentSize = 10 * 1024 * 1024

// assistantUnavailable is the only error detail exposed to clients when the
// AI provider fails. Raw provider errors stay in the server log.
const assistantUnavailable = "The assistant is unavailable right now. Please try again later."

// ChatRequest is a chat conversation payload
type ChatRequest struct {
	Messages []ai.Message `json:"messages"`
}

// AssistantChatHandler runs a chat turn against the hosted model
func AssistantChatHandler(c echo.Context) error {
	assistant := GetAssistant(c)
	if assistant == nil || !assistant.IsConfigured() {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "The assistant is not configured")
	}

	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}
	if len(req.Messages) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "At least one message is required")
	}

	answer, err := assistant.Chat(c.Request().Context(), req.Messages)
	if err != nil {
		c.Logger().Errorf("Assistant chat failed: %v", err)
		return echo.NewHTTPError(http.StatusBadGateway, assistantUnavailable)
	}

	return c.JSON(http.StatusOK, map[string]string{"answer": answer})
}

// SearchRequest is a grounded web search payload
type SearchRequest struct {
	Query string `json:"query" form:"query"`
}

// AssistantSearchHandler answers a legal research query with web grounding
// and returns the citations backing the answer
func AssistantSearchHandler(c echo.Context) error {
	assistant := GetAssistant(c)
	if assistant == nil || !assistant.IsConfigured() {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "The assistant is not configured")
	}

	var req SearchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}
	if req.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Query is required")
	}

	answer, citations, err := assistant.SearchGrounded(c.Request().Context(), req.Query)
	if err != nil {
		c.Logger().Errorf("Assistant search failed: %v", err)
		return echo.NewHTTPError(http.StatusBadGateway, assistantUnavailable)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"answer":    answer,
		"citations": citations,
	})
}

// TriageEmailHandler extracts a court-movement draft from a pasted email
// body plus an optional attachment. Nothing is persisted here: the draft
// pre-fills the movement form and the user confirms via the movements
// endpoint.
func TriageEmailHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)

	assistant := GetAssistant(c)
	if assistant == nil || !assistant.IsConfigured() {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "The assistant is not configured")
	}

	emailBody := c.FormValue("email_body")
	if emailBody == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email body is required")
	}

	var attachment *ai.Attachment
	if file, err := c.FormFile("attachment"); err == nil {
		if file.Size > MaxTriageAttachmentSize {
			return echo.NewHTTPError(http.StatusBadRequest, "Attachment must be smaller than 10 MB")
		}
		src, err := file.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Failed to read attachment")
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Failed to read attachment")
		}

		mimeType := file.Header.Get("Content-Type")
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		attachment = &ai.Attachment{MimeType: mimeType, Data: data}
	}

	draft, err := assistant.ExtractMovement(c.Request().Context(), emailBody, attachment)
	if err != nil {
		c.Logger().Errorf("Assistant triage failed: %v", err)
		return echo.NewHTTPError(http.StatusBadGateway, assistantUnavailable)
	}

	// Suggest the client the draft's case number points at, if any
	response := map[string]interface{}{"draft": draft}
	if draft.CaseNumber != "" {
		probe := models.CourtMovement{CaseNumber: draft.CaseNumber}
		suggested, err := services.ResolveLinkedClient(db.DB, user.ID, &probe)
		if err == nil && suggested != nil {
			response["suggested_client"] = suggested
		}
	}

	return c.JSON(http.StatusOK, response)
}
