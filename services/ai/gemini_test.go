package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	appconfig "juris_desk_go/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	return NewClient(&appconfig.Config{
		GeminiAPIKey:  "test-key",
		GeminiModel:   "gemini-2.0-flash",
		GeminiBaseURL: server.URL,
	})
}

func candidateResponse(text string) map[string]interface{} {
	return map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"parts": []map[string]string{{"text": text}},
				},
			},
		},
	}
}

func TestChat(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "gemini-2.0-flash:generateContent")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 2)
		assert.Equal(t, RoleUser, req.Contents[0].Role)

		json.NewEncoder(w).Encode(candidateResponse("Hello back"))
	})

	reply, err := client.Chat(context.Background(), []Message{
		{Role: RoleUser, Text: "Hi"},
		{Role: RoleModel, Text: "Hello"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello back", reply)
}

func TestChatAPIError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"code": 429, "message": "quota exceeded"},
		})
	})

	_, err := client.Chat(context.Background(), []Message{{Role: RoleUser, Text: "Hi"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestChatNotConfigured(t *testing.T) {
	client := NewClient(&appconfig.Config{})
	_, err := client.Chat(context.Background(), []Message{{Role: RoleUser, Text: "Hi"}})
	assert.Error(t, err)
}

func TestSearchGrounded(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Tools, 1)
		assert.NotNil(t, req.Tools[0].GoogleSearch)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{
					"content": map[string]interface{}{
						"parts": []map[string]string{{"text": "Grounded answer"}},
					},
					"groundingMetadata": map[string]interface{}{
						"groundingChunks": []map[string]interface{}{
							{"web": map[string]string{"uri": "https://example.com", "title": "Example"}},
						},
					},
				},
			},
		})
	})

	text, citations, err := client.SearchGrounded(context.Background(), "latest ruling")
	require.NoError(t, err)
	assert.Equal(t, "Grounded answer", text)
	require.Len(t, citations, 1)
	assert.Equal(t, "https://example.com", citations[0].URI)
}

func TestExtractMovement(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.GenerationConfig)
		assert.Equal(t, "application/json", req.GenerationConfig.ResponseMimeType)
		// Attachment travels as inline data
		require.Len(t, req.Contents, 1)
		assert.NotNil(t, req.Contents[0].Parts[2].InlineData)

		json.NewEncoder(w).Encode(candidateResponse(
			`{"case_number":"0001234-56.2026.8.26.0100","date":"2026-09-12","description":"Hearing scheduled","movement_type":"HEARING"}`,
		))
	})

	draft, err := client.ExtractMovement(context.Background(), "Email body here", &Attachment{
		MimeType: "application/pdf",
		Data:     []byte("%PDF-1.4"),
	})
	require.NoError(t, err)
	assert.Equal(t, "0001234-56.2026.8.26.0100", draft.CaseNumber)
	assert.Equal(t, "2026-09-12", draft.Date)
	assert.Equal(t, "HEARING", draft.MovementType)
}

func TestExtractMovementBadJSON(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(candidateResponse("not json"))
	})

	_, err := client.ExtractMovement(context.Background(), "Email body", nil)
	assert.Error(t, err)
}
