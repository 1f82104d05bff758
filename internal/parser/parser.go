// Package parser extracts structured expense fields from free text by calling
// a hosted chat-completion endpoint with a fixed instruction prompt.
package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"ai-expense-tracker/internal/models"
)

const systemPrompt = `You are an expense parser. Extract expense information from natural language input.

RULES:
1. Extract the amount as a number (no currency symbols)
2. Default currency is INR unless explicitly mentioned (USD, EUR, etc.)
3. Categorize into EXACTLY one of these categories:
   - Food & Dining (restaurants, cafes, food delivery, groceries)
   - Transport (uber, ola, taxi, fuel, parking, metro)
   - Shopping (clothes, electronics, amazon, flipkart)
   - Entertainment (movies, netflix, spotify, games)
   - Bills & Utilities (electricity, water, internet, phone)
   - Health (medicine, doctor, gym, pharmacy)
   - Travel (flights, hotels, trips)
   - Other (anything that doesn't fit above)
4. Description should be a clean summary (not the raw input)
5. Merchant is the company/store name if mentioned, null otherwise

RESPOND ONLY WITH VALID JSON, no other text:
{
  "amount": <number>,
  "currency": "<string>",
  "category": "<string>",
  "description": "<string>",
  "merchant": "<string or null>"
}

If the input is invalid or you cannot extract an amount, respond:
{
  "error": "Could not parse expense. Please include an amount.",
  "amount": null
}`

// genericFailure is the message returned for every failure the model did not
// explicitly signal: transport errors, bad status codes, malformed completions.
const genericFailure = "Failed to parse expense. Please try again."

// Config holds the completion endpoint settings.
type Config struct {
	// URL is the chat-completions endpoint.
	URL string
	// Model is the model name sent with each request.
	Model string
	// APIKey is the bearer token for the endpoint.
	APIKey string
}

// Parser calls the completion endpoint. It is stateless; the only side effect
// of Parse is the network call.
type Parser struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

// New creates a Parser using the default HTTP client. Callers bound the call
// duration through the context passed to Parse.
func New(cfg Config, logger *slog.Logger) *Parser {
	return &Parser{
		cfg:    cfg,
		client: http.DefaultClient,
		logger: logger,
	}
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Parse submits the user's text to the completion endpoint and returns a
// candidate expense. Every failure mode — transport error, non-2xx status,
// empty or malformed completion, or the model explicitly signaling unparseable
// input — collapses into the single failure shape: nil Amount with Error set.
// Transport detail is logged, never returned.
func (p *Parser) Parse(ctx context.Context, text string) models.ParsedCandidate {
	content, err := p.complete(ctx, text)
	if err != nil {
		p.logger.Error("completion call failed", "error", err)
		return failureCandidate(genericFailure)
	}

	var parsed models.ParsedCandidate
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		p.logger.Error("completion was not valid JSON", "error", err, "content", content)
		return failureCandidate(genericFailure)
	}

	if parsed.Error != "" || parsed.Amount == nil {
		msg := parsed.Error
		if msg == "" {
			msg = "Could not parse expense"
		}
		return failureCandidate(msg)
	}

	// Fill defaults for omitted optional fields. Amount and category are
	// deliberately not validated here; that trust boundary sits with the
	// caller and the UI.
	if parsed.Currency == "" {
		parsed.Currency = models.DefaultCurrency
	}
	if parsed.Category == "" {
		parsed.Category = models.DefaultCategory
	}
	if parsed.Description == "" {
		parsed.Description = text
	}

	return parsed
}

func (p *Parser) complete(ctx context.Context, text string) (string, error) {
	reqBody := completionRequest{
		Model: p.cfg.Model,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: text},
		},
		Temperature: 0.1,
		MaxTokens:   200,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion api returned %d: %s", resp.StatusCode, body)
	}

	var result completionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}

	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("completion response contained no content")
	}

	return result.Choices[0].Message.Content, nil
}

func failureCandidate(msg string) models.ParsedCandidate {
	return models.ParsedCandidate{
		Amount:      nil,
		Currency:    models.DefaultCurrency,
		Category:    models.DefaultCategory,
		Description: "",
		Merchant:    nil,
		Error:       msg,
	}
}
