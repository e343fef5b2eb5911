package handlers

import (
	"net/http"
	"strconv"

	"finance-tracker/internal/models"
	"finance-tracker/internal/validate"
)

type budgetRequest struct {
	Month  string    `json:"month"`
	Amount textValue `json:"amount"`
}

// ListBudgets returns the latest budget for every month that has one.
func (h *Handlers) ListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := h.budgets.ListLatest(r.Context(), GetUserFromContext(r).ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, budgets)
}

// CreateBudget adds a budget; an existing budget for the month is a conflict.
func (h *Handlers) CreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	month, err := validate.Month(req.Month)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	amount, err := validate.Amount(string(req.Amount))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	budget, err := h.budgets.Create(r.Context(), GetUserFromContext(r).ID, month, amount)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, budget)
}

// GetBudget returns the budget for the month in the path.
func (h *Handlers) GetBudget(w http.ResponseWriter, r *http.Request) {
	month, err := validate.Month(r.PathValue("month"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	budget, err := h.budgets.Get(r.Context(), GetUserFromContext(r).ID, month)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if budget == nil {
		h.writeError(w, r, models.ErrBudgetNotFound)
		return
	}
	writeJSON(w, http.StatusOK, budget)
}

// UpdateBudget changes a month's amount. With ?upsert=true a missing budget
// is created instead of reported as not found.
func (h *Handlers) UpdateBudget(w http.ResponseWriter, r *http.Request) {
	month, err := validate.Month(r.PathValue("month"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	upsert := false
	if v := r.URL.Query().Get("upsert"); v != "" {
		if upsert, err = strconv.ParseBool(v); err != nil {
			h.writeError(w, r, models.Invalid("invalid upsert flag %q", v))
			return
		}
	}

	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	amount, err := validate.Amount(string(req.Amount))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	userID := GetUserFromContext(r).ID
	var budget *models.Budget
	if upsert {
		budget, err = h.budgets.Set(r.Context(), userID, month, amount)
	} else {
		budget, err = h.budgets.Update(r.Context(), userID, month, amount)
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, budget)
}

// DeleteBudget removes the budget for the month in the path.
func (h *Handlers) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	month, err := validate.Month(r.PathValue("month"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.budgets.Delete(r.Context(), GetUserFromContext(r).ID, month); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
