package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// completionServer returns an httptest server that replies with the given
// completion content wrapped in the chat-completions response envelope.
func completionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func newTestParser(url string) *Parser {
	return New(Config{URL: url, Model: "test-model", APIKey: "test-key"}, testLogger())
}

func TestParseSuccess(t *testing.T) {
	srv := completionServer(t, `{"amount":500,"currency":"INR","category":"Food & Dining","description":"Groceries","merchant":"BigBazaar"}`)
	defer srv.Close()

	candidate := newTestParser(srv.URL).Parse(context.Background(), "Spent 500 on groceries at BigBazaar")

	require.False(t, candidate.Failed())
	require.NotNil(t, candidate.Amount)
	assert.Equal(t, 500.0, *candidate.Amount)
	assert.Equal(t, "INR", candidate.Currency)
	assert.Equal(t, "Food & Dining", candidate.Category)
	assert.Equal(t, "Groceries", candidate.Description)
	require.NotNil(t, candidate.Merchant)
	assert.Equal(t, "BigBazaar", *candidate.Merchant)
}

func TestParseAppliesDefaultsForOmittedFields(t *testing.T) {
	srv := completionServer(t, `{"amount":42}`)
	defer srv.Close()

	candidate := newTestParser(srv.URL).Parse(context.Background(), "42 for something")

	require.False(t, candidate.Failed())
	assert.Equal(t, "INR", candidate.Currency)
	assert.Equal(t, "Other", candidate.Category)
	assert.Equal(t, "42 for something", candidate.Description, "description falls back to the raw input")
	assert.Nil(t, candidate.Merchant)
}

func TestParseSuccessPassesThroughUnvalidatedFields(t *testing.T) {
	// The parser trusts the model: out-of-enum categories and non-positive
	// amounts are persisted as returned.
	srv := completionServer(t, `{"amount":-10,"currency":"INR","category":"Gadgets","description":"weird"}`)
	defer srv.Close()

	candidate := newTestParser(srv.URL).Parse(context.Background(), "weird input")

	require.False(t, candidate.Failed())
	assert.Equal(t, -10.0, *candidate.Amount)
	assert.Equal(t, "Gadgets", candidate.Category)
}

func TestParseModelSignalsUnparseable(t *testing.T) {
	srv := completionServer(t, `{"error":"Could not parse expense. Please include an amount.","amount":null}`)
	defer srv.Close()

	candidate := newTestParser(srv.URL).Parse(context.Background(), "asdkjh random text")

	assert.True(t, candidate.Failed())
	assert.Nil(t, candidate.Amount)
	assert.Equal(t, "Could not parse expense. Please include an amount.", candidate.Error)
	assert.Equal(t, "INR", candidate.Currency)
	assert.Equal(t, "Other", candidate.Category)
	assert.Empty(t, candidate.Description)
}

func TestParseNullAmountWithoutError(t *testing.T) {
	srv := completionServer(t, `{"amount":null}`)
	defer srv.Close()

	candidate := newTestParser(srv.URL).Parse(context.Background(), "nothing here")

	assert.True(t, candidate.Failed())
	assert.Equal(t, "Could not parse expense", candidate.Error)
}

func TestParseMalformedCompletionContent(t *testing.T) {
	srv := completionServer(t, "Sure! Here is the expense you asked for: amount=500")
	defer srv.Close()

	candidate := newTestParser(srv.URL).Parse(context.Background(), "spent 500")

	assert.True(t, candidate.Failed())
	assert.Equal(t, "Failed to parse expense. Please try again.", candidate.Error)
}

func TestParseEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	}))
	defer srv.Close()

	candidate := newTestParser(srv.URL).Parse(context.Background(), "spent 500")

	assert.True(t, candidate.Failed())
	assert.Equal(t, "Failed to parse expense. Please try again.", candidate.Error)
}

func TestParseUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	candidate := newTestParser(srv.URL).Parse(context.Background(), "spent 500")

	assert.True(t, candidate.Failed())
	assert.Equal(t, "Failed to parse expense. Please try again.", candidate.Error)
}

func TestParseTransportFailure(t *testing.T) {
	srv := completionServer(t, "{}")
	srv.Close() // connection refused

	candidate := newTestParser(srv.URL).Parse(context.Background(), "spent 500")

	assert.True(t, candidate.Failed())
	assert.Equal(t, "Failed to parse expense. Please try again.", candidate.Error)
}

func TestParseHonorsContextCancellation(t *testing.T) {
	srv := completionServer(t, `{"amount":1}`)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	candidate := newTestParser(srv.URL).Parse(ctx, "spent 500")

	assert.True(t, candidate.Failed())
}

func TestParseSendsExpectedRequest(t *testing.T) {
	var got struct {
		Model       string  `json:"model"`
		Temperature float64 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	var auth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		fmt.Fprint(w, `{"choices":[{"message":{"content":"{\"amount\":1}"}}]}`)
	}))
	defer srv.Close()

	newTestParser(srv.URL).Parse(context.Background(), "coffee 100")

	assert.Equal(t, "Bearer test-key", auth)
	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, 0.1, got.Temperature)
	assert.Equal(t, 200, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Contains(t, got.Messages[0].Content, "Food & Dining")
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "coffee 100", got.Messages[1].Content)
}
