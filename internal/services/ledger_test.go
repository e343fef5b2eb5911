package services

import (
	"bytes"
	"errors"
	"time"

	"finance-tracker/internal/events"
	"finance-tracker/internal/log"
	"finance-tracker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type LedgerSuite struct {
	serviceSuite
}

func (s *LedgerSuite) TestEveryCategoryIsAccepted() {
	for _, c := range models.Categories {
		_, err := s.ledger().Add(s.ctx, s.alice.ID, models.ExpenseUpdate{
			Amount: dec("1"), Category: c, Date: day(2026, time.January, 1),
		})
		assert.NoError(s.T(), err, "category %s", c)
	}
}

func (s *LedgerSuite) TestUnknownCategoryIsRejected() {
	for _, c := range []models.Category{"", "Housing", "food", "Food "} {
		_, err := s.ledger().Add(s.ctx, s.alice.ID, models.ExpenseUpdate{
			Amount: dec("1"), Category: c, Date: day(2026, time.January, 1),
		})
		assert.ErrorIs(s.T(), err, models.ErrValidation, "category %q", c)
	}
	assert.Empty(s.T(), s.events.Events)
}

func (s *LedgerSuite) TestAmountAndDateValidation() {
	for _, amount := range []string{"0", "-5"} {
		_, err := s.ledger().Add(s.ctx, s.alice.ID, models.ExpenseUpdate{
			Amount: dec(amount), Category: models.CategoryFood, Date: day(2026, time.January, 1),
		})
		assert.ErrorIs(s.T(), err, models.ErrInvalidAmount)
	}

	_, err := s.ledger().Add(s.ctx, s.alice.ID, models.ExpenseUpdate{Amount: dec("1"), Category: models.CategoryFood})
	assert.ErrorIs(s.T(), err, models.ErrInvalidDate)
}

func (s *LedgerSuite) TestRoundTrip() {
	in := models.ExpenseUpdate{
		Amount:      dec("42.10"),
		Category:    models.CategoryEntertainment,
		Date:        time.Date(2026, time.March, 14, 18, 30, 0, 0, time.FixedZone("X", 3600)),
		Description: "Cinema",
	}
	created, err := s.ledger().Add(s.ctx, s.alice.ID, in)
	require.NoError(s.T(), err)

	got, err := s.ledger().Get(s.ctx, s.alice.ID, created.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), created.ID, got.ID)
	assert.Equal(s.T(), created.UserID, got.UserID)
	assert.True(s.T(), created.Amount.Equal(got.Amount))
	assert.Equal(s.T(), created.Category, got.Category)
	assert.Equal(s.T(), day(2026, time.March, 14), got.Date, "dates keep their calendar day")
	assert.Equal(s.T(), created.Date, got.Date)
	assert.Equal(s.T(), "Cinema", got.Description)

	assert.Equal(s.T(), []string{events.ExpenseCreated}, s.events.Types())
	assert.Equal(s.T(), created.ID, s.events.Events[0].ExpenseID)
}

func (s *LedgerSuite) TestListFiltersByMonthAcrossYears() {
	s.addExpense(s.alice.ID, "10", models.CategoryFood, day(2025, time.January, 10))
	s.addExpense(s.alice.ID, "20", models.CategoryFood, day(2026, time.January, 3))
	s.addExpense(s.alice.ID, "30", models.CategoryFood, day(2026, time.February, 3))

	all, err := s.ledger().List(s.ctx, s.alice.ID, nil)
	require.NoError(s.T(), err)
	require.Len(s.T(), all, 3)
	assert.Equal(s.T(), day(2026, time.February, 3), all[0].Date)

	jan, err := s.ledger().List(s.ctx, s.alice.ID, monthPtr(time.January))
	require.NoError(s.T(), err)
	require.Len(s.T(), jan, 2)
	assert.Equal(s.T(), day(2026, time.January, 3), jan[0].Date)
	assert.Equal(s.T(), day(2025, time.January, 10), jan[1].Date)

	_, err = s.ledger().List(s.ctx, s.alice.ID, monthPtr(time.Month(13)))
	assert.ErrorIs(s.T(), err, models.ErrInvalidMonth)
}

func (s *LedgerSuite) TestUpdateReplacesAllFields() {
	created, err := s.ledger().Add(s.ctx, s.alice.ID, models.ExpenseUpdate{
		Amount: dec("5"), Category: models.CategoryFood, Date: day(2026, time.January, 1), Description: "Coffee",
	})
	require.NoError(s.T(), err)

	updated, err := s.ledger().Update(s.ctx, s.alice.ID, created.ID, models.ExpenseUpdate{
		Amount: dec("60"), Category: models.CategoryUtilities, Date: day(2026, time.April, 2),
	})
	require.NoError(s.T(), err)
	assert.True(s.T(), dec("60").Equal(updated.Amount))
	assert.Equal(s.T(), models.CategoryUtilities, updated.Category)
	assert.Equal(s.T(), day(2026, time.April, 2), updated.Date)
	assert.Empty(s.T(), updated.Description)

	_, err = s.ledger().Update(s.ctx, s.alice.ID, created.ID, models.ExpenseUpdate{
		Amount: dec("1"), Category: "Rent", Date: day(2026, time.April, 2),
	})
	assert.ErrorIs(s.T(), err, models.ErrInvalidCategory)

	assert.Equal(s.T(), []string{events.ExpenseCreated, events.ExpenseUpdated}, s.events.Types())
}

func (s *LedgerSuite) TestOwnershipIsolation() {
	bobs := s.addExpense(s.bob.ID, "9", models.CategoryShopping, day(2026, time.May, 5))
	missing := bobs.ID + 1000
	ledger := s.ledger()

	for _, id := range []int64{bobs.ID, missing} {
		_, err := ledger.Get(s.ctx, s.alice.ID, id)
		assert.ErrorIs(s.T(), err, models.ErrNotFound)

		_, err = ledger.Update(s.ctx, s.alice.ID, id, models.ExpenseUpdate{
			Amount: dec("1"), Category: models.CategoryFood, Date: day(2026, time.May, 5),
		})
		assert.ErrorIs(s.T(), err, models.ErrNotFound)

		err = ledger.Delete(s.ctx, s.alice.ID, id)
		assert.ErrorIs(s.T(), err, models.ErrNotFound)
	}

	got, err := ledger.Get(s.ctx, s.bob.ID, bobs.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), dec("9").Equal(got.Amount), "bob's expense is untouched")
}

func (s *LedgerSuite) TestDelete() {
	e := s.addExpense(s.alice.ID, "9", models.CategoryShopping, day(2026, time.May, 5))

	require.NoError(s.T(), s.ledger().Delete(s.ctx, s.alice.ID, e.ID))
	_, err := s.ledger().Get(s.ctx, s.alice.ID, e.ID)
	assert.ErrorIs(s.T(), err, models.ErrExpenseNotFound)
	assert.Equal(s.T(), events.ExpenseDeleted, s.events.Events[len(s.events.Events)-1].Type)
}

func (s *LedgerSuite) TestPublishFailureDoesNotFailWrite() {
	s.events.Err = errors.New("broker down")
	var buf bytes.Buffer
	ledger := NewLedger(s.db, s.events, log.New(log.Config{Format: "json", Output: &buf}))

	e, err := ledger.Add(s.ctx, s.alice.ID, models.ExpenseUpdate{
		Amount: dec("3"), Category: models.CategoryTransport, Date: day(2026, time.June, 1),
	})
	require.NoError(s.T(), err)

	_, err = s.ledger().Get(s.ctx, s.alice.ID, e.ID)
	assert.NoError(s.T(), err)

	assert.Contains(s.T(), buf.String(), `"operation":"publish"`)
	assert.Contains(s.T(), buf.String(), `"component":"ledger"`)
	assert.Contains(s.T(), buf.String(), "broker down")
}
