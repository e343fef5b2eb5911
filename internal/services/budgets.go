package services

import (
	"context"
	"errors"
	"time"

	"finance-tracker/internal/events"
	"finance-tracker/internal/log"
	"finance-tracker/internal/models"
	"finance-tracker/internal/storage"
	"finance-tracker/internal/validate"

	"github.com/shopspring/decimal"
)

// Register keeps one budget per user and calendar month. Create refuses a
// month that already has a budget; Update changes an existing one; Set does
// either.
type Register struct {
	db     *storage.DB
	events events.Publisher
	logger *log.Logger
	now    Clock
}

// NewRegister creates a Register. The clock stamps new budgets with a year.
func NewRegister(db *storage.DB, publisher events.Publisher, logger *log.Logger, now Clock) *Register {
	return &Register{
		db:     db,
		events: orNop(publisher),
		logger: orDiscard(logger).WithComponent(log.ComponentBudget),
		now:    orNow(now),
	}
}

// Create adds a budget for month, failing with ErrBudgetExists if one is set.
func (r *Register) Create(ctx context.Context, userID int64, month time.Month, amount decimal.Decimal) (*models.Budget, error) {
	amount, err := checkBudget(month, amount)
	if err != nil {
		return nil, err
	}

	b, err := r.db.CreateBudget(ctx, userID, month, r.now().Year(), amount)
	if err != nil {
		return nil, err
	}
	r.logged(ctx, log.OpCreate, userID, month)
	r.notify(ctx, events.BudgetCreated, userID, month)
	return b, nil
}

// Update changes the amount of the existing budget for month.
func (r *Register) Update(ctx context.Context, userID int64, month time.Month, amount decimal.Decimal) (*models.Budget, error) {
	amount, err := checkBudget(month, amount)
	if err != nil {
		return nil, err
	}

	var b *models.Budget
	err = r.db.InTx(ctx, func(q *storage.Queries) error {
		if err := q.UpdateBudgetAmount(ctx, userID, month, amount); err != nil {
			return err
		}
		b, err = q.GetBudget(ctx, userID, month)
		return err
	})
	if err != nil {
		return nil, err
	}
	r.logged(ctx, log.OpUpdate, userID, month)
	r.notify(ctx, events.BudgetUpdated, userID, month)
	return b, nil
}

// Set creates the budget for month or overwrites its amount.
func (r *Register) Set(ctx context.Context, userID int64, month time.Month, amount decimal.Decimal) (*models.Budget, error) {
	amount, err := checkBudget(month, amount)
	if err != nil {
		return nil, err
	}

	b, err := r.db.UpsertBudget(ctx, userID, month, r.now().Year(), amount)
	if err != nil {
		return nil, err
	}
	r.logged(ctx, log.OpUpdate, userID, month)
	r.notify(ctx, events.BudgetUpdated, userID, month)
	return b, nil
}

// Get returns the budget for month, or nil when none is set.
func (r *Register) Get(ctx context.Context, userID int64, month time.Month) (*models.Budget, error) {
	if month < time.January || month > time.December {
		return nil, models.ErrInvalidMonth
	}
	b, err := r.db.GetBudget(ctx, userID, month)
	if errors.Is(err, models.ErrBudgetNotFound) {
		return nil, nil
	}
	return b, err
}

// ListLatest returns one budget per month, January first.
func (r *Register) ListLatest(ctx context.Context, userID int64) ([]models.Budget, error) {
	return r.db.ListLatestBudgets(ctx, userID)
}

// Delete removes the budget for month.
func (r *Register) Delete(ctx context.Context, userID int64, month time.Month) error {
	if month < time.January || month > time.December {
		return models.ErrInvalidMonth
	}
	if err := r.db.DeleteBudget(ctx, userID, month); err != nil {
		return err
	}
	r.logged(ctx, log.OpDelete, userID, month)
	r.notify(ctx, events.BudgetDeleted, userID, month)
	return nil
}

func (r *Register) logged(ctx context.Context, op string, userID int64, month time.Month) {
	r.logger.InfoContext(ctx, "Budget changed",
		log.FieldOperation, op,
		log.FieldUserID, userID,
		log.FieldMonth, month.String())
}

func (r *Register) notify(ctx context.Context, eventType string, userID int64, month time.Month) {
	e := events.New(eventType, userID)
	e.Month = month.String()
	publish(ctx, r.events, r.logger, e)
}

func checkBudget(month time.Month, amount decimal.Decimal) (decimal.Decimal, error) {
	if month < time.January || month > time.December {
		return decimal.Zero, models.ErrInvalidMonth
	}
	amount, err := validate.PositiveAmount(amount)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Round(2), nil
}
