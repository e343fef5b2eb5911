package handlers

import (
	"net/http"
	"time"

	"finance-tracker/internal/models"
	"finance-tracker/internal/validate"
)

// CategoriesViewModel lists the values clients may send.
type CategoriesViewModel struct {
	Categories []models.Category `json:"categories"`
	Months     []string          `json:"months"`
}

// Categories returns the allowed categories and month names.
func (h *Handlers) Categories(w http.ResponseWriter, r *http.Request) {
	months := make([]string, 0, 12)
	for m := time.January; m <= time.December; m++ {
		months = append(months, m.String())
	}
	writeJSON(w, http.StatusOK, CategoriesViewModel{Categories: models.Categories, Months: months})
}

// Summary renders totals for ?month=, or for all time without it.
func (h *Handlers) Summary(w http.ResponseWriter, r *http.Request) {
	month, err := validate.OptionalMonth(r.URL.Query().Get("month"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	summary, err := h.aggregator.MonthlySummary(r.Context(), GetUserFromContext(r).ID, month)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// BudgetReport lists each budget against its month's spending.
func (h *Handlers) BudgetReport(w http.ResponseWriter, r *http.Request) {
	month, err := validate.OptionalMonth(r.URL.Query().Get("month"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	reports, err := h.aggregator.BudgetReports(r.Context(), GetUserFromContext(r).ID, month)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}
