package handlers

import (
	"net/http"

	"finance-tracker/internal/models"
	"finance-tracker/internal/validate"
)

type expenseRequest struct {
	Amount      textValue `json:"amount"`
	Category    string    `json:"category"`
	Date        string    `json:"date"`
	Description string    `json:"description"`
}

// update parses the request through the shared validators.
func (req expenseRequest) update() (models.ExpenseUpdate, error) {
	amount, err := validate.Amount(string(req.Amount))
	if err != nil {
		return models.ExpenseUpdate{}, err
	}
	category, err := validate.Category(req.Category)
	if err != nil {
		return models.ExpenseUpdate{}, err
	}
	date, err := validate.Date(req.Date)
	if err != nil {
		return models.ExpenseUpdate{}, err
	}
	desc, err := validate.Description(req.Description)
	if err != nil {
		return models.ExpenseUpdate{}, err
	}
	return models.ExpenseUpdate{Amount: amount, Category: category, Date: date, Description: desc}, nil
}

// ListExpenses returns the user's expenses, optionally filtered by ?month=.
func (h *Handlers) ListExpenses(w http.ResponseWriter, r *http.Request) {
	month, err := validate.OptionalMonth(r.URL.Query().Get("month"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	expenses, err := h.ledger.List(r.Context(), GetUserFromContext(r).ID, month)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

// GetExpense returns one expense.
func (h *Handlers) GetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := validate.ID(r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	expense, err := h.ledger.Get(r.Context(), GetUserFromContext(r).ID, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

// CreateExpense handles the creation of a new expense.
func (h *Handlers) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	in, err := req.update()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	expense, err := h.ledger.Add(r.Context(), GetUserFromContext(r).ID, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, expense)
}

// UpdateExpense replaces every field of an existing expense.
func (h *Handlers) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := validate.ID(r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	in, err := req.update()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	expense, err := h.ledger.Update(r.Context(), GetUserFromContext(r).ID, id, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

// DeleteExpense removes an expense.
func (h *Handlers) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := validate.ID(r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.ledger.Delete(r.Context(), GetUserFromContext(r).ID, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
