package httpserver

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/phenrril/headstock/internal/domain"
)

type lineRequest struct {
	ID        string   `json:"id" validate:"omitempty,uuid"`
	ProductID string   `json:"productId" validate:"omitempty,uuid"`
	Amount    *float64 `json:"amount" validate:"omitempty,lte=1000000000"`
	Type      *string  `json:"type" validate:"omitempty,max=60"`
}

func productIDQuery(r *http.Request) (*uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("productId"))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, domain.BadRequestf("invalid productId %q", raw)
	}
	return &id, nil
}

// lineTarget resolves the row id from the path or, for the body forms, from
// the request body.
func (s *Server) lineTarget(r *http.Request, needBody bool) (uuid.UUID, lineRequest, error) {
	var req lineRequest
	if needBody || chi.URLParam(r, "id") == "" {
		if err := s.decode(r, &req); err != nil {
			return uuid.Nil, req, err
		}
	}
	id, err := pathID(r, req.ID)
	return id, req, err
}

func (s *Server) newLine(r *http.Request) (uuid.UUID, lineRequest, error) {
	var req lineRequest
	if err := s.decode(r, &req); err != nil {
		return uuid.Nil, req, err
	}
	if req.Amount == nil {
		return uuid.Nil, req, domain.BadRequestf("amount is required")
	}
	if req.ProductID == "" {
		return uuid.Nil, req, nil
	}
	return uuid.MustParse(req.ProductID), req, nil
}

func (s *Server) listIncomes(w http.ResponseWriter, r *http.Request) {
	pid, err := productIDQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := s.ledger.ListIncomes(r.Context(), pid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) createIncome(w http.ResponseWriter, r *http.Request) {
	pid, req, err := s.newLine(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	in, err := s.ledger.CreateIncome(r.Context(), pid, *req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, in)
}

func (s *Server) updateIncome(w http.ResponseWriter, r *http.Request) {
	id, req, err := s.lineTarget(r, true)
	if err != nil {
		writeError(w, r, err)
		return
	}
	in, err := s.ledger.UpdateIncome(r.Context(), id, req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, in)
}

func (s *Server) deleteIncome(w http.ResponseWriter, r *http.Request) {
	id, _, err := s.lineTarget(r, false)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.ledger.DeleteIncome(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Income deleted"})
}

func (s *Server) listExpenses(w http.ResponseWriter, r *http.Request) {
	pid, err := productIDQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := s.ledger.ListExpenses(r.Context(), pid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) createExpense(w http.ResponseWriter, r *http.Request) {
	pid, req, err := s.newLine(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	typ := ""
	if req.Type != nil {
		typ = *req.Type
	}
	e, err := s.ledger.CreateExpense(r.Context(), pid, *req.Amount, typ)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) updateExpense(w http.ResponseWriter, r *http.Request) {
	id, req, err := s.lineTarget(r, true)
	if err != nil {
		writeError(w, r, err)
		return
	}
	e, err := s.ledger.UpdateExpense(r.Context(), id, req.Amount, req.Type)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) deleteExpense(w http.ResponseWriter, r *http.Request) {
	id, _, err := s.lineTarget(r, false)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.ledger.DeleteExpense(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Expense deleted"})
}
