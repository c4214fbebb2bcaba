// Package server exposes the ledger service as a JSON HTTP API.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rjsplit/splitr/internal/ledger"
	"github.com/rjsplit/splitr/internal/models"
	"github.com/rjsplit/splitr/internal/service"
)

const dateLayout = "2006-01-02"

// Server holds the HTTP handlers for the ledger API.
type Server struct {
	svc *service.LedgerService
	now func() time.Time
}

// New creates a Server around the given service.
func New(svc *service.LedgerService) *Server {
	return &Server{svc: svc, now: time.Now}
}

// Routes registers every API route on a fresh mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("GET /api/users", s.handleListUsers)
	mux.HandleFunc("POST /api/users", s.handleAddUser)
	mux.HandleFunc("DELETE /api/users/{name}", s.handleRemoveUser)

	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleAddExpense)
	mux.HandleFunc("PUT /api/expenses/{id}", s.handleEditExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleRemoveExpense)

	mux.HandleFunc("GET /api/balances", s.handleBalances)
	mux.HandleFunc("GET /api/settlements", s.handleSettlements)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/receipt", s.handleReceipt)

	return mux
}

// expenseRequest is the transport shape of an expense. Dates travel as
// YYYY-MM-DD strings.
type expenseRequest struct {
	Description    string             `json:"description"`
	Category       string             `json:"category"`
	Amount         float64            `json:"amount"`
	Date           string             `json:"date"`
	Payers         []string           `json:"payers"`
	PaymentAmounts map[string]float64 `json:"payment_amounts"`
	Participants   []string           `json:"participants"`
}

type expenseResponse struct {
	ID             string             `json:"id"`
	Description    string             `json:"description"`
	Category       string             `json:"category"`
	Amount         float64            `json:"amount"`
	Date           string             `json:"date"`
	Payers         []string           `json:"payers"`
	PaymentAmounts map[string]float64 `json:"payment_amounts,omitempty"`
	Participants   []string           `json:"participants"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"users": s.svc.Users()})
}

func (s *Server) handleAddUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "")
		return
	}

	s.svc.AddUser(r.Context(), req.Name)
	writeJSON(w, http.StatusOK, map[string]any{"users": s.svc.Users()})
}

func (s *Server) handleRemoveUser(w http.ResponseWriter, r *http.Request) {
	s.svc.RemoveUser(r.Context(), r.PathValue("name"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses := s.svc.Expenses()
	out := make([]expenseResponse, len(expenses))
	for i := range expenses {
		out[i] = toResponse(&expenses[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"expenses": out})
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	expense, ok := s.decodeExpense(w, r)
	if !ok {
		return
	}

	stored, err := s.svc.AddExpense(r.Context(), expense)
	if err != nil {
		writeValidationError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toResponse(&stored))
}

func (s *Server) handleEditExpense(w http.ResponseWriter, r *http.Request) {
	expense, ok := s.decodeExpense(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	stored, found, err := s.svc.EditExpense(r.Context(), id, expense)
	if err != nil {
		writeValidationError(w, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, fmt.Sprintf("expense not found: %s", id), "")
		return
	}
	writeJSON(w, http.StatusOK, toResponse(&stored))
}

func (s *Server) handleRemoveExpense(w http.ResponseWriter, r *http.Request) {
	s.svc.RemoveExpense(r.Context(), r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"balances": s.svc.Balances()})
}

func (s *Server) handleSettlements(w http.ResponseWriter, r *http.Request) {
	settlements := s.svc.Settlements()
	if settlements == nil {
		settlements = []models.Settlement{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"settlements": settlements})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Summarize())
}

func (s *Server) handleReceipt(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "expense-report-"+now.Format(dateLayout)+".txt"))
	if err := s.svc.WriteReceipt(w, now); err != nil {
		slog.Error("Failed to write receipt", "error", err)
	}
}

// decodeExpense parses and converts the transport shape, reporting any
// parse failure to the client. Structural validation happens in the
// ledger, not here.
func (s *Server) decodeExpense(w http.ResponseWriter, r *http.Request) (models.Expense, bool) {
	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "")
		return models.Expense{}, false
	}

	date := s.now()
	if req.Date != "" {
		parsed, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("invalid date %q: expected %s", req.Date, dateLayout), "")
			return models.Expense{}, false
		}
		date = parsed
	}

	return models.Expense{
		Description:    req.Description,
		Category:       models.Category(req.Category),
		Amount:         req.Amount,
		Date:           date,
		Payers:         req.Payers,
		PaymentAmounts: req.PaymentAmounts,
		Participants:   req.Participants,
	}, true
}

func toResponse(e *models.Expense) expenseResponse {
	return expenseResponse{
		ID:             e.ID,
		Description:    e.Description,
		Category:       string(e.Category),
		Amount:         e.Amount,
		Date:           e.Date.Format(dateLayout),
		Payers:         e.Payers,
		PaymentAmounts: e.PaymentAmounts,
		Participants:   e.Participants,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg, kind string) {
	body := map[string]string{"error": msg}
	if kind != "" {
		body["kind"] = kind
	}
	writeJSON(w, status, body)
}

// writeValidationError maps a ledger rejection to a 400 carrying the
// violated rule's kind.
func writeValidationError(w http.ResponseWriter, err error) {
	var verr *ledger.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusBadRequest, verr.Message, string(verr.Kind))
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error(), "")
}
