package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"finance-tracker/internal/models"

	"github.com/shopspring/decimal"
)

const budgetColumns = "id, user_id, month, year, amount_cents"

// CreateBudget inserts a budget for (user, month). A second budget for the
// same month yields models.ErrBudgetExists.
func (q *Queries) CreateBudget(ctx context.Context, userID int64, month time.Month, year int, amount decimal.Decimal) (*models.Budget, error) {
	_, err := q.db.ExecContext(ctx,
		"INSERT INTO budgets (user_id, month, year, amount_cents) VALUES (?, ?, ?, ?)",
		userID, month.String(), year, toCents(amount),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrBudgetExists
		}
		return nil, fmt.Errorf("insert budget: %w", err)
	}
	return q.GetBudget(ctx, userID, month)
}

// UpsertBudget creates the month's budget or overwrites its amount.
func (q *Queries) UpsertBudget(ctx context.Context, userID int64, month time.Month, year int, amount decimal.Decimal) (*models.Budget, error) {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO budgets (user_id, month, year, amount_cents) VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, month) DO UPDATE SET amount_cents = excluded.amount_cents
	`, userID, month.String(), year, toCents(amount))
	if err != nil {
		return nil, fmt.Errorf("upsert budget: %w", err)
	}
	return q.GetBudget(ctx, userID, month)
}

// UpdateBudgetAmount overwrites the amount of an existing budget.
func (q *Queries) UpdateBudgetAmount(ctx context.Context, userID int64, month time.Month, amount decimal.Decimal) error {
	result, err := q.db.ExecContext(ctx,
		"UPDATE budgets SET amount_cents = ? WHERE user_id = ? AND month = ?",
		toCents(amount), userID, month.String(),
	)
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	return expectOneRow(result, models.ErrBudgetNotFound)
}

// GetBudget returns the month's budget, preferring the greatest year.
func (q *Queries) GetBudget(ctx context.Context, userID int64, month time.Month) (*models.Budget, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+budgetColumns+" FROM budgets WHERE user_id = ? AND month = ? ORDER BY year DESC LIMIT 1",
		userID, month.String(),
	)
	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrBudgetNotFound
	}
	return b, err
}

// ListLatestBudgets returns one budget per month, each the greatest-year
// entry, ordered January to December.
func (q *Queries) ListLatestBudgets(ctx context.Context, userID int64) ([]models.Budget, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT b.id, b.user_id, b.month, b.year, b.amount_cents
		FROM budgets b
		JOIN (
			SELECT month, MAX(year) AS max_year FROM budgets WHERE user_id = ? GROUP BY month
		) latest ON b.month = latest.month AND b.year = latest.max_year
		WHERE b.user_id = ?
	`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	budgets := []models.Budget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(budgets, func(i, j int) bool { return budgets[i].Month < budgets[j].Month })
	return budgets, nil
}

// DeleteBudget removes the month's budget.
func (q *Queries) DeleteBudget(ctx context.Context, userID int64, month time.Month) error {
	result, err := q.db.ExecContext(ctx, "DELETE FROM budgets WHERE user_id = ? AND month = ?", userID, month.String())
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return expectOneRow(result, models.ErrBudgetNotFound)
}

func scanBudget(row rowScanner) (*models.Budget, error) {
	var (
		b     models.Budget
		month string
		cents int64
	)
	if err := row.Scan(&b.ID, &b.UserID, &month, &b.Year, &cents); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan budget: %w", err)
	}

	m, ok := monthByName(month)
	if !ok {
		return nil, fmt.Errorf("budget %d has unknown month %q", b.ID, month)
	}
	b.Month = m
	b.Amount = fromCents(cents)
	return &b, nil
}

func monthByName(name string) (time.Month, bool) {
	for m := time.January; m <= time.December; m++ {
		if m.String() == name {
			return m, true
		}
	}
	return 0, false
}
