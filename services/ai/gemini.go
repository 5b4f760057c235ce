package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	appconfig "juris_desk_go/config"

	"github.com/go-resty/resty/v2"
)

// Role constants for chat history
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Message is one turn of a chat conversation
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Citation is a web source backing a grounded answer
type Citation struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// Attachment is an optional binary payload sent with an extraction request
type Attachment struct {
	MimeType string
	Data     []byte
}

// MovementDraft is the fixed extraction schema for email triage: the fields
// needed to pre-fill a court movement form.
type MovementDraft struct {
	CaseNumber   string `json:"case_number"`
	Date         string `json:"date"` // YYYY-MM-DD
	Description  string `json:"description"`
	MovementType string `json:"movement_type"` // HEARING, DEADLINE or NOTIFICATION
}

// Client talks to the Gemini REST API
type Client struct {
	http    *resty.Client
	apiKey  string
	model   string
	baseURL string
}

// NewClient creates a Gemini client from app configuration
func NewClient(cfg *appconfig.Config) *Client {
	return &Client{
		http:    resty.New().SetTimeout(60 * time.Second),
		apiKey:  cfg.GeminiAPIKey,
		model:   cfg.GeminiModel,
		baseURL: cfg.GeminiBaseURL,
	}
}

// IsConfigured reports whether an API key is present
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// Request/response wire types (subset of the generateContent schema)

type generateRequest struct {
	Contents         []content         `json:"contents"`
	Tools            []tool            `json:"tools,omitempty"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"` // base64
}

type tool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

type generationConfig struct {
	ResponseMimeType string          `json:"responseMimeType,omitempty"`
	ResponseSchema   json.RawMessage `json:"responseSchema,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		GroundingMetadata *struct {
			GroundingChunks []struct {
				Web *struct {
					URI   string `json:"uri"`
					Title string `json:"title"`
				} `json:"web"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) generate(ctx context.Context, req generateRequest) (*generateResponse, error) {
	if !c.IsConfigured() {
		return nil, fmt.Errorf("GEMINI_API_KEY not configured")
	}

	var result generateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetQueryParam("key", c.apiKey).
		SetBody(req).
		SetResult(&result).
		SetError(&result).
		Post(fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model))
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	if resp.IsError() {
		if result.Error != nil {
			return nil, fmt.Errorf("gemini error %d: %s", result.Error.Code, result.Error.Message)
		}
		return nil, fmt.Errorf("gemini error: status %d", resp.StatusCode())
	}
	if len(result.Candidates) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates")
	}
	return &result, nil
}

func (r *generateResponse) text() string {
	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

// Chat runs a free-form completion over the conversation history and returns
// the model's reply
func (c *Client) Chat(ctx context.Context, history []Message) (string, error) {
	contents := make([]content, 0, len(history))
	for _, msg := range history {
		contents = append(contents, content{
			Role:  msg.Role,
			Parts: []part{{Text: msg.Text}},
		})
	}

	resp, err := c.generate(ctx, generateRequest{Contents: contents})
	if err != nil {
		return "", err
	}
	return resp.text(), nil
}

// SearchGrounded answers a query with web-search grounding and returns the
// answer text plus its source citations
func (c *Client) SearchGrounded(ctx context.Context, query string) (string, []Citation, error) {
	req := generateRequest{
		Contents: []content{{Role: RoleUser, Parts: []part{{Text: query}}}},
		Tools:    []tool{{GoogleSearch: &struct{}{}}},
	}

	resp, err := c.generate(ctx, req)
	if err != nil {
		return "", nil, err
	}

	var citations []Citation
	if gm := resp.Candidates[0].GroundingMetadata; gm != nil {
		for _, chunk := range gm.GroundingChunks {
			if chunk.Web != nil {
				citations = append(citations, Citation{Title: chunk.Web.Title, URI: chunk.Web.URI})
			}
		}
	}
	return resp.text(), citations, nil
}

// movementSchema is the fixed response schema for email triage
var movementSchema = json.RawMessage(`{
	"type": "OBJECT",
	"properties": {
		"case_number": {"type": "STRING"},
		"date": {"type": "STRING"},
		"description": {"type": "STRING"},
		"movement_type": {"type": "STRING", "enum": ["HEARING", "DEADLINE", "NOTIFICATION"]}
	},
	"required": ["description", "movement_type"]
}`)

const triagePrompt = `Extract the court movement described in this email. ` +
	`Return the case number, the date (YYYY-MM-DD), a short description and ` +
	`the movement type (HEARING, DEADLINE or NOTIFICATION). Leave fields you ` +
	`cannot determine empty.`

// ExtractMovement runs a structured extraction over an email body plus an
// optional attachment and returns a movement draft
func (c *Client) ExtractMovement(ctx context.Context, emailBody string, attachment *Attachment) (*MovementDraft, error) {
	parts := []part{
		{Text: triagePrompt},
		{Text: emailBody},
	}
	if attachment != nil && len(attachment.Data) > 0 {
		parts = append(parts, part{InlineData: &inlineData{
			MimeType: attachment.MimeType,
			Data:     base64.StdEncoding.EncodeToString(attachment.Data),
		}})
	}

	req := generateRequest{
		Contents: []content{{Role: RoleUser, Parts: parts}},
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   movementSchema,
		},
	}

	resp, err := c.generate(ctx, req)
	if err != nil {
		return nil, err
	}

	var draft MovementDraft
	if err := json.Unmarshal([]byte(resp.text()), &draft); err != nil {
		return nil, fmt.Errorf("failed to decode extraction response: %w", err)
	}
	return &draft, nil
}
