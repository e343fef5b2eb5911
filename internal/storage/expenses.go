package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"finance-tracker/internal/models"

	"github.com/shopspring/decimal"
)

const (
	dateLayout     = "2006-01-02"
	expenseColumns = "id, user_id, amount_cents, category, date, description"
)

// CreateExpense inserts a new expense owned by userID.
func (q *Queries) CreateExpense(ctx context.Context, userID int64, in models.ExpenseUpdate) (*models.Expense, error) {
	result, err := q.db.ExecContext(ctx,
		"INSERT INTO expenses (user_id, amount_cents, category, date, description) VALUES (?, ?, ?, ?, ?)",
		userID, toCents(in.Amount), string(in.Category), in.Date.Format(dateLayout), nullString(in.Description),
	)
	if err != nil {
		return nil, fmt.Errorf("insert expense: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("expense id: %w", err)
	}
	return q.GetExpense(ctx, userID, id)
}

// GetExpense retrieves a single expense by ID. Expenses owned by another user
// are reported as models.ErrExpenseNotFound.
func (q *Queries) GetExpense(ctx context.Context, userID, id int64) (*models.Expense, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ? AND user_id = ?",
		id, userID,
	)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrExpenseNotFound
	}
	return e, err
}

// UpdateExpense replaces every mutable field of an expense.
func (q *Queries) UpdateExpense(ctx context.Context, userID, id int64, in models.ExpenseUpdate) error {
	result, err := q.db.ExecContext(ctx,
		"UPDATE expenses SET amount_cents = ?, category = ?, date = ?, description = ? WHERE id = ? AND user_id = ?",
		toCents(in.Amount), string(in.Category), in.Date.Format(dateLayout), nullString(in.Description), id, userID,
	)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return expectOneRow(result, models.ErrExpenseNotFound)
}

// DeleteExpense removes an expense owned by userID.
func (q *Queries) DeleteExpense(ctx context.Context, userID, id int64) error {
	result, err := q.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return expectOneRow(result, models.ErrExpenseNotFound)
}

// ListExpenses retrieves a user's expenses ordered by date descending.
func (q *Queries) ListExpenses(ctx context.Context, userID int64) ([]models.Expense, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE user_id = ? ORDER BY date DESC, id DESC",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return collectExpenses(rows)
}

// ListExpensesByMonth retrieves a user's expenses whose date falls in month,
// whatever the year, ordered by date descending.
func (q *Queries) ListExpensesByMonth(ctx context.Context, userID int64, month time.Month) ([]models.Expense, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+expenseColumns+` FROM expenses
		WHERE user_id = ? AND CAST(strftime('%m', date) AS INTEGER) = ?
		ORDER BY date DESC, id DESC
	`, userID, int(month))
	if err != nil {
		return nil, fmt.Errorf("list expenses by month: %w", err)
	}
	return collectExpenses(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (*models.Expense, error) {
	var (
		e           models.Expense
		cents       int64
		category    string
		date        string
		description sql.NullString
	)
	if err := row.Scan(&e.ID, &e.UserID, &cents, &category, &date, &description); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan expense: %w", err)
	}

	parsed, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("parse expense date %q: %w", date, err)
	}
	e.Amount = fromCents(cents)
	e.Category = models.Category(category)
	e.Date = parsed
	e.Description = description.String
	return &e, nil
}

func collectExpenses(rows *sql.Rows) ([]models.Expense, error) {
	defer rows.Close()

	expenses := []models.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, *e)
	}
	return expenses, rows.Err()
}

func toCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

func fromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
