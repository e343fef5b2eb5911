package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Category is one of the fixed expense labels.
type Category string

const (
	CategoryFood          Category = "Food"
	CategoryTransport     Category = "Transport"
	CategoryEntertainment Category = "Entertainment"
	CategoryUtilities     Category = "Utilities"
	CategoryShopping      Category = "Shopping"
)

// Categories lists every allowed category in display order.
var Categories = []Category{
	CategoryFood,
	CategoryTransport,
	CategoryEntertainment,
	CategoryUtilities,
	CategoryShopping,
}

// Valid reports whether c belongs to the allowed set.
func (c Category) Valid() bool {
	for _, allowed := range Categories {
		if c == allowed {
			return true
		}
	}
	return false
}

// User represents a user account.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Expense represents a financial expense record.
type Expense struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Category    Category        `json:"category"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description,omitempty"`
}

// ExpenseUpdate carries every mutable expense field. Updates replace all of them.
type ExpenseUpdate struct {
	Amount      decimal.Decimal
	Category    Category
	Date        time.Time
	Description string
}

// Budget is the spending limit a user sets for a calendar month.
// Year records when the budget was created; lookups ignore it.
type Budget struct {
	ID     int64           `json:"id"`
	UserID int64           `json:"user_id"`
	Month  time.Month      `json:"-"`
	Year   int             `json:"year"`
	Amount decimal.Decimal `json:"amount"`
}

// MonthName returns the English month name used for persistence and display.
func (b Budget) MonthName() string {
	return b.Month.String()
}

// MarshalJSON renders Month by name.
func (b Budget) MarshalJSON() ([]byte, error) {
	type alias Budget
	return json.Marshal(struct {
		alias
		Month string `json:"month"`
	}{alias(b), b.MonthName()})
}

// Session represents a user session.
type Session struct {
	Token        string    `json:"-"`
	UserID       int64     `json:"user_id"`
	ExpiresAt    time.Time `json:"expires_at"`
	LastActivity time.Time `json:"last_activity"`
}

// MonthlySummary aggregates budgets and expenses for one month, or for all
// months when Month is nil.
type MonthlySummary struct {
	Month             *time.Month                  `json:"-"`
	TotalBudget       decimal.Decimal              `json:"total_budget"`
	TotalExpenses     decimal.Decimal              `json:"total_expenses"`
	CategoryBreakdown map[Category]decimal.Decimal `json:"category_breakdown"`
	Difference        decimal.Decimal              `json:"difference"`
}

// MarshalJSON renders Month by name, omitting it for all-time summaries.
func (s MonthlySummary) MarshalJSON() ([]byte, error) {
	type alias MonthlySummary
	out := struct {
		alias
		Month string `json:"month,omitempty"`
	}{alias: alias(s)}
	if s.Month != nil {
		out.Month = s.Month.String()
	}
	return json.Marshal(out)
}

// OverBudget reports whether expenses exceed the budget.
func (s MonthlySummary) OverBudget() bool {
	return s.Difference.IsNegative()
}

// BudgetReport pairs a budget with the expenses recorded in its month.
type BudgetReport struct {
	Budget            Budget                       `json:"budget"`
	TotalExpenses     decimal.Decimal              `json:"total_expenses"`
	Difference        decimal.Decimal              `json:"difference"`
	CategoryBreakdown map[Category]decimal.Decimal `json:"category_breakdown"`
}
