package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ai-expense-tracker/internal/models"
	"ai-expense-tracker/internal/storage"
)

// Parser extracts a candidate expense from free text. Failures are signaled
// through the candidate itself, never through a Go error.
type Parser interface {
	Parse(ctx context.Context, text string) models.ParsedCandidate
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	db           *storage.DB
	parser       Parser
	logger       *slog.Logger
	parseTimeout time.Duration
}

// New creates a new Handlers instance. parseTimeout bounds how long a single
// completion call may block; zero disables the bound.
func New(db *storage.DB, parser Parser, logger *slog.Logger, parseTimeout time.Duration) *Handlers {
	return &Handlers{db: db, parser: parser, logger: logger, parseTimeout: parseTimeout}
}

type addExpenseRequest struct {
	Input string `json:"input"`
}

// AddExpense handles POST /expenses: validate, parse, persist, respond.
func (h *Handlers) AddExpense(w http.ResponseWriter, r *http.Request) {
	var req addExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Input text is required")
		return
	}

	input := req.Input
	if strings.TrimSpace(input) == "" {
		h.writeError(w, http.StatusBadRequest, "Input text is required")
		return
	}

	ctx := r.Context()
	if h.parseTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.parseTimeout)
		defer cancel()
	}

	parsed := h.parser.Parse(ctx, input)
	if parsed.Failed() {
		msg := parsed.Error
		if msg == "" {
			msg = "Could not parse expense"
		}
		h.writeError(w, http.StatusBadRequest, msg)
		return
	}

	expense, err := h.db.InsertExpense(parsed, input)
	if err != nil {
		h.logger.Error("failed to insert expense", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"expense": expense,
	})
}

// ListExpenses handles GET /expenses, newest first.
func (h *Handlers) ListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.db.ListExpenses()
	if err != nil {
		h.logger.Error("failed to list expenses", "error", err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if expenses == nil {
		expenses = []models.Expense{}
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"expenses": expenses,
	})
}

// DeleteExpense handles DELETE /expenses/{id}.
func (h *Handlers) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid expense ID")
		return
	}

	deleted, err := h.db.DeleteExpense(id)
	if err != nil {
		h.logger.Error("failed to delete expense", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if !deleted {
		h.writeError(w, http.StatusNotFound, "Expense not found")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Expense deleted successfully",
	})
}

// Health handles GET /health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"message": "AI Expense Tracker API is running",
	})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]any{
		"success": false,
		"error":   msg,
	})
}
