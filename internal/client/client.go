// Package client is a small HTTP client for the expense service, used by the
// addexpense CLI and end-to-end checks.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-expense-tracker/internal/models"
)

// DefaultTimeout bounds each request, matching the mobile client's wait.
const DefaultTimeout = 10 * time.Second

// ErrTimeout is returned when the bounded wait elapses before the server
// responds. It is distinct from other transport errors so callers can offer
// "try again" wording.
var ErrTimeout = errors.New("request timeout. Please try again.")

// Client talks to a running expense service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for the given base URL (e.g. "http://localhost:3000").
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
}

type envelope struct {
	Success  bool             `json:"success"`
	Error    string           `json:"error"`
	Message  string           `json:"message"`
	Expense  *models.Expense  `json:"expense"`
	Expenses []models.Expense `json:"expenses"`
	Total    float64          `json:"total"`
}

// AddExpense submits free text and returns the stored expense.
func (c *Client) AddExpense(ctx context.Context, input string) (*models.Expense, error) {
	body, err := json.Marshal(map[string]string{"input": input})
	if err != nil {
		return nil, err
	}

	env, err := c.do(ctx, http.MethodPost, "/expenses", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if env.Expense == nil {
		return nil, errors.New("server response missing expense")
	}
	return env.Expense, nil
}

// ListExpenses fetches all stored expenses, newest first.
func (c *Client) ListExpenses(ctx context.Context) ([]models.Expense, error) {
	env, err := c.do(ctx, http.MethodGet, "/expenses", nil)
	if err != nil {
		return nil, err
	}
	return env.Expenses, nil
}

// DeleteExpense removes the expense with the given id.
func (c *Client) DeleteExpense(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/expenses/%d", id), nil)
	return err
}

// Health checks the service's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.mapTransportError(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.mapTransportError(err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decoding server response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := env.Error
		if msg == "" {
			msg = fmt.Sprintf("server returned %d", resp.StatusCode)
		}
		return nil, errors.New(msg)
	}

	return &env, nil
}

func (c *Client) mapTransportError(err error) error {
	var ue interface{ Timeout() bool }
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	if errors.As(err, &ue) && ue.Timeout() {
		return ErrTimeout
	}
	return err
}
