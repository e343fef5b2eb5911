package services

import (
	"context"
	"time"

	"finance-tracker/internal/events"
	"finance-tracker/internal/log"
	"finance-tracker/internal/models"
	"finance-tracker/internal/storage"
	"finance-tracker/internal/validate"
)

// Ledger records a user's expenses.
type Ledger struct {
	db     *storage.DB
	events events.Publisher
	logger *log.Logger
}

// NewLedger creates a Ledger. A nil publisher disables notifications.
func NewLedger(db *storage.DB, publisher events.Publisher, logger *log.Logger) *Ledger {
	return &Ledger{
		db:     db,
		events: orNop(publisher),
		logger: orDiscard(logger).WithComponent(log.ComponentLedger),
	}
}

// Add validates and stores a new expense.
func (l *Ledger) Add(ctx context.Context, userID int64, in models.ExpenseUpdate) (*models.Expense, error) {
	in, err := checkExpense(in)
	if err != nil {
		return nil, err
	}

	expense, err := l.db.CreateExpense(ctx, userID, in)
	if err != nil {
		return nil, err
	}

	l.logger.InfoContext(ctx, "Expense created",
		log.FieldOperation, log.OpCreate,
		log.FieldUserID, userID,
		log.FieldExpenseID, expense.ID)
	l.notify(ctx, events.ExpenseCreated, userID, expense.ID)
	return expense, nil
}

// Get returns one of the user's expenses.
func (l *Ledger) Get(ctx context.Context, userID, id int64) (*models.Expense, error) {
	return l.db.GetExpense(ctx, userID, id)
}

// List returns the user's expenses, newest first. A non-nil month keeps only
// expenses dated in that calendar month of any year.
func (l *Ledger) List(ctx context.Context, userID int64, month *time.Month) ([]models.Expense, error) {
	if month == nil {
		return l.db.ListExpenses(ctx, userID)
	}
	if *month < time.January || *month > time.December {
		return nil, models.ErrInvalidMonth
	}
	return l.db.ListExpensesByMonth(ctx, userID, *month)
}

// Update replaces every field of an expense the user owns.
func (l *Ledger) Update(ctx context.Context, userID, id int64, in models.ExpenseUpdate) (*models.Expense, error) {
	in, err := checkExpense(in)
	if err != nil {
		return nil, err
	}

	var updated *models.Expense
	err = l.db.InTx(ctx, func(q *storage.Queries) error {
		if err := q.UpdateExpense(ctx, userID, id, in); err != nil {
			return err
		}
		updated, err = q.GetExpense(ctx, userID, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	l.logger.InfoContext(ctx, "Expense updated",
		log.FieldOperation, log.OpUpdate,
		log.FieldUserID, userID,
		log.FieldExpenseID, id)
	l.notify(ctx, events.ExpenseUpdated, userID, id)
	return updated, nil
}

// Delete removes an expense the user owns.
func (l *Ledger) Delete(ctx context.Context, userID, id int64) error {
	if err := l.db.DeleteExpense(ctx, userID, id); err != nil {
		return err
	}

	l.logger.InfoContext(ctx, "Expense deleted",
		log.FieldOperation, log.OpDelete,
		log.FieldUserID, userID,
		log.FieldExpenseID, id)
	l.notify(ctx, events.ExpenseDeleted, userID, id)
	return nil
}

func (l *Ledger) notify(ctx context.Context, eventType string, userID, expenseID int64) {
	e := events.New(eventType, userID)
	e.ExpenseID = expenseID
	publish(ctx, l.events, l.logger, e)
}

// checkExpense validates typed input and normalises the date to UTC midnight.
func checkExpense(in models.ExpenseUpdate) (models.ExpenseUpdate, error) {
	if !in.Category.Valid() {
		return in, models.ErrInvalidCategory
	}
	amount, err := validate.PositiveAmount(in.Amount)
	if err != nil {
		return in, err
	}
	if in.Date.IsZero() {
		return in, models.ErrInvalidDate
	}
	desc, err := validate.Description(in.Description)
	if err != nil {
		return in, err
	}

	y, m, d := in.Date.Date()
	return models.ExpenseUpdate{
		Amount:      amount.Round(2),
		Category:    in.Category,
		Date:        time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Description: desc,
	}, nil
}
