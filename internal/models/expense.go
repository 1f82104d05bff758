package models

import "time"

// Expense represents a persisted record of one spending event.
type Expense struct {
	ID            int64     `json:"id"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	Category      string    `json:"category"`
	Description   string    `json:"description"`
	Merchant      *string   `json:"merchant"`
	OriginalInput string    `json:"original_input"`
	CreatedAt     time.Time `json:"created_at"`
}

// ParsedCandidate is the transient result of interpreting free text, before it
// becomes an Expense. A nil Amount signals that parsing failed; Error carries
// the message in that case.
type ParsedCandidate struct {
	Amount      *float64 `json:"amount"`
	Currency    string   `json:"currency"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Merchant    *string  `json:"merchant"`
	Error       string   `json:"error,omitempty"`
}

// Failed reports whether the candidate represents a parse failure.
func (c ParsedCandidate) Failed() bool {
	return c.Amount == nil || c.Error != ""
}

// DefaultCurrency is used when the model omits a currency.
const DefaultCurrency = "INR"

// DefaultCategory is used when the model omits a category.
const DefaultCategory = "Other"

// Categories is the closed set the model is instructed to choose from.
var Categories = []string{
	"Food & Dining",
	"Transport",
	"Shopping",
	"Entertainment",
	"Bills & Utilities",
	"Health",
	"Travel",
	"Other",
}
