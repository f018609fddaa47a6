// Package genai is a thin client for the Gemini generateContent REST API.
package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"course_gen_backend/config"
	"course_gen_backend/models"
	"course_gen_backend/pkg/logging"
)

var ErrEmptyResponse = errors.New("no response from Gemini")

// Generator produces free text for a prompt plus optional inline documents.
type Generator interface {
	Generate(ctx context.Context, prompt string, files []models.Attachment) (string, error)
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini API error (%d): %s", e.StatusCode, e.Message)
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
	apiKey     string
}

func NewClient(cfg *config.Config) *Client {
	return NewClientWithHTTP(&http.Client{Timeout: cfg.GeminiTimeout}, cfg.GeminiBaseURL, cfg.GeminiModel, cfg.GeminiAPIKey)
}

func NewClientWithHTTP(httpClient *http.Client, baseURL, model, apiKey string) *Client {
	if !strings.HasPrefix(model, "models/") {
		model = "models/" + model
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		apiKey:     apiKey,
	}
}

func (c *Client) endpoint() string {
	return fmt.Sprintf("%s/v1beta/%s:generateContent?key=%s", c.baseURL, c.model, url.QueryEscape(c.apiKey))
}

// Generate sends the prompt and files as one user turn and returns the text
// of the first candidate.
func (c *Client) Generate(ctx context.Context, prompt string, files []models.Attachment) (string, error) {
	parts := make([]part, 0, len(files)+1)
	parts = append(parts, part{Text: prompt})
	for _, f := range files {
		parts = append(parts, part{InlineData: &inlineData{
			MimeType: f.MimeType,
			Data:     base64.StdEncoding.EncodeToString(f.Data),
		}})
	}
	body, err := json.Marshal(generateRequest{Contents: []content{{Role: "user", Parts: parts}}})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logging.Logger.Warn("Error closing response body", "error", err)
		}
	}(resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	var gr generateResponse
	decodeErr := json.Unmarshal(raw, &gr)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(raw))
		if decodeErr == nil && gr.Error != nil && gr.Error.Message != "" {
			msg = gr.Error.Message
		}
		return "", &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return "", fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	if gr.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("prompt blocked: %s", gr.PromptFeedback.BlockReason)
	}
	if len(gr.Candidates) == 0 {
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	logging.Logger.Debug("gemini generateContent",
		"model", c.model,
		"files", len(files),
		"elapsed", time.Since(start),
		"chars", sb.Len(),
	)
	return sb.String(), nil
}
