package handlers

import "net/http"

// Routes registers every endpoint on a new mux.
func (h *Handlers) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("POST /register", h.Register)
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("POST /logout", h.Logout)

	// Protected routes
	protected := func(fn http.HandlerFunc) http.Handler {
		return h.AuthMiddleware(fn)
	}
	mux.Handle("GET /me", protected(h.Me))
	mux.Handle("GET /categories", protected(h.Categories))

	mux.Handle("GET /expenses", protected(h.ListExpenses))
	mux.Handle("POST /expenses", protected(h.CreateExpense))
	mux.Handle("GET /expenses/{id}", protected(h.GetExpense))
	mux.Handle("PUT /expenses/{id}", protected(h.UpdateExpense))
	mux.Handle("DELETE /expenses/{id}", protected(h.DeleteExpense))

	mux.Handle("GET /budgets", protected(h.ListBudgets))
	mux.Handle("POST /budgets", protected(h.CreateBudget))
	mux.Handle("GET /budgets/report", protected(h.BudgetReport))
	mux.Handle("GET /budgets/{month}", protected(h.GetBudget))
	mux.Handle("PUT /budgets/{month}", protected(h.UpdateBudget))
	mux.Handle("DELETE /budgets/{month}", protected(h.DeleteBudget))

	mux.Handle("GET /summary", protected(h.Summary))

	return mux
}
