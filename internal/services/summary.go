package services

import (
	"context"
	"errors"
	"time"

	"finance-tracker/internal/log"
	"finance-tracker/internal/models"
	"finance-tracker/internal/storage"

	"github.com/shopspring/decimal"
)

// Aggregator joins budgets and expenses into summaries.
type Aggregator struct {
	db     *storage.DB
	logger *log.Logger
}

// NewAggregator creates an Aggregator.
func NewAggregator(db *storage.DB, logger *log.Logger) *Aggregator {
	return &Aggregator{
		db:     db,
		logger: orDiscard(logger).WithComponent(log.ComponentSummary),
	}
}

// MonthlySummary totals one month, or every month when month is nil. Budgets
// and expenses are read in a single transaction.
func (a *Aggregator) MonthlySummary(ctx context.Context, userID int64, month *time.Month) (models.MonthlySummary, error) {
	if month != nil && (*month < time.January || *month > time.December) {
		return models.MonthlySummary{}, models.ErrInvalidMonth
	}

	var budgets []models.Budget
	var expenses []models.Expense
	err := a.db.InTx(ctx, func(q *storage.Queries) error {
		var err error
		budgets, err = applicableBudgets(ctx, q, userID, month)
		if err != nil {
			return err
		}
		if month == nil {
			expenses, err = q.ListExpenses(ctx, userID)
		} else {
			expenses, err = q.ListExpensesByMonth(ctx, userID, *month)
		}
		return err
	})
	if err != nil {
		return models.MonthlySummary{}, err
	}

	a.logger.DebugContext(ctx, "Summary computed",
		log.FieldOperation, log.OpRead,
		log.FieldUserID, userID,
		log.FieldMonth, monthLabel(month),
		"expenses", len(expenses))
	return Summarize(month, budgets, expenses), nil
}

// BudgetReports pairs every budget (or only month's) with its month's
// spending.
func (a *Aggregator) BudgetReports(ctx context.Context, userID int64, month *time.Month) ([]models.BudgetReport, error) {
	if month != nil && (*month < time.January || *month > time.December) {
		return nil, models.ErrInvalidMonth
	}

	var budgets []models.Budget
	var expenses []models.Expense
	err := a.db.InTx(ctx, func(q *storage.Queries) error {
		var err error
		budgets, err = applicableBudgets(ctx, q, userID, month)
		if err != nil {
			return err
		}
		expenses, err = q.ListExpenses(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	byMonth := make(map[time.Month][]models.Expense)
	for _, e := range expenses {
		m := e.Date.Month()
		byMonth[m] = append(byMonth[m], e)
	}

	reports := make([]models.BudgetReport, 0, len(budgets))
	for _, b := range budgets {
		m := b.Month
		s := Summarize(&m, []models.Budget{b}, byMonth[m])
		reports = append(reports, models.BudgetReport{
			Budget:            b,
			TotalExpenses:     s.TotalExpenses,
			Difference:        s.Difference,
			CategoryBreakdown: s.CategoryBreakdown,
		})
	}
	a.logger.DebugContext(ctx, "Budget reports computed",
		log.FieldOperation, log.OpList,
		log.FieldUserID, userID,
		log.FieldMonth, monthLabel(month),
		"count", len(reports))
	return reports, nil
}

// Summarize sums budgets and expenses. The breakdown always holds every
// category, zero when unused.
func Summarize(month *time.Month, budgets []models.Budget, expenses []models.Expense) models.MonthlySummary {
	breakdown := make(map[models.Category]decimal.Decimal, len(models.Categories))
	for _, c := range models.Categories {
		breakdown[c] = decimal.Zero
	}

	totalBudget := decimal.Zero
	for _, b := range budgets {
		totalBudget = totalBudget.Add(b.Amount)
	}

	totalExpenses := decimal.Zero
	for _, e := range expenses {
		totalExpenses = totalExpenses.Add(e.Amount)
		breakdown[e.Category] = breakdown[e.Category].Add(e.Amount)
	}

	return models.MonthlySummary{
		Month:             month,
		TotalBudget:       totalBudget,
		TotalExpenses:     totalExpenses,
		CategoryBreakdown: breakdown,
		Difference:        totalBudget.Sub(totalExpenses),
	}
}

func applicableBudgets(ctx context.Context, q *storage.Queries, userID int64, month *time.Month) ([]models.Budget, error) {
	if month == nil {
		return q.ListLatestBudgets(ctx, userID)
	}
	b, err := q.GetBudget(ctx, userID, *month)
	if errors.Is(err, models.ErrBudgetNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []models.Budget{*b}, nil
}

func monthLabel(month *time.Month) string {
	if month == nil {
		return "all"
	}
	return month.String()
}
