package services

import (
	"time"

	"finance-tracker/internal/events"
	"finance-tracker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type RegisterSuite struct {
	serviceSuite
}

func (s *RegisterSuite) TestCreateConflictThenUpdate() {
	reg := s.register(2026)

	b, err := reg.Create(s.ctx, s.alice.ID, time.February, dec("1500"))
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 2026, b.Year)

	_, err = reg.Create(s.ctx, s.alice.ID, time.February, dec("1600"))
	assert.ErrorIs(s.T(), err, models.ErrConflict)

	_, err = reg.Update(s.ctx, s.alice.ID, time.February, dec("1800"))
	require.NoError(s.T(), err)

	got, err := reg.Get(s.ctx, s.alice.ID, time.February)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), got)
	assert.True(s.T(), dec("1800").Equal(got.Amount))

	assert.Equal(s.T(), []string{events.BudgetCreated, events.BudgetUpdated}, s.events.Types())
}

func (s *RegisterSuite) TestCreateInLaterYearIsStillADuplicate() {
	_, err := s.register(2025).Create(s.ctx, s.alice.ID, time.March, dec("100"))
	require.NoError(s.T(), err)

	_, err = s.register(2026).Create(s.ctx, s.alice.ID, time.March, dec("200"))
	assert.ErrorIs(s.T(), err, models.ErrBudgetExists)
}

func (s *RegisterSuite) TestUpdateMissing() {
	_, err := s.register(2026).Update(s.ctx, s.alice.ID, time.May, dec("10"))
	assert.ErrorIs(s.T(), err, models.ErrNotFound)
}

func (s *RegisterSuite) TestSetUpserts() {
	reg := s.register(2026)

	first, err := reg.Set(s.ctx, s.alice.ID, time.April, dec("300"))
	require.NoError(s.T(), err)

	second, err := reg.Set(s.ctx, s.alice.ID, time.April, dec("350"))
	require.NoError(s.T(), err)
	assert.Equal(s.T(), first.ID, second.ID)
	assert.True(s.T(), dec("350").Equal(second.Amount))

	budgets, err := reg.ListLatest(s.ctx, s.alice.ID)
	require.NoError(s.T(), err)
	assert.Len(s.T(), budgets, 1)
}

func (s *RegisterSuite) TestValidation() {
	reg := s.register(2026)

	_, err := reg.Create(s.ctx, s.alice.ID, time.Month(0), dec("1"))
	assert.ErrorIs(s.T(), err, models.ErrInvalidMonth)

	_, err = reg.Create(s.ctx, s.alice.ID, time.July, dec("0"))
	assert.ErrorIs(s.T(), err, models.ErrInvalidAmount)

	_, err = reg.Set(s.ctx, s.alice.ID, time.July, dec("-1"))
	assert.ErrorIs(s.T(), err, models.ErrValidation)
}

func (s *RegisterSuite) TestGetMissingReturnsNil() {
	b, err := s.register(2026).Get(s.ctx, s.alice.ID, time.August)
	assert.NoError(s.T(), err)
	assert.Nil(s.T(), b)
}

func (s *RegisterSuite) TestBudgetsArePerUser() {
	reg := s.register(2026)
	_, err := reg.Create(s.ctx, s.bob.ID, time.September, dec("50"))
	require.NoError(s.T(), err)

	b, err := reg.Get(s.ctx, s.alice.ID, time.September)
	assert.NoError(s.T(), err)
	assert.Nil(s.T(), b)

	err = reg.Delete(s.ctx, s.alice.ID, time.September)
	assert.ErrorIs(s.T(), err, models.ErrBudgetNotFound)
}

func (s *RegisterSuite) TestListLatestAndDelete() {
	reg := s.register(2026)
	for _, m := range []time.Month{time.November, time.February, time.June} {
		_, err := reg.Create(s.ctx, s.alice.ID, m, dec("10"))
		require.NoError(s.T(), err)
	}

	require.NoError(s.T(), reg.Delete(s.ctx, s.alice.ID, time.June))

	budgets, err := reg.ListLatest(s.ctx, s.alice.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), budgets, 2)
	assert.Equal(s.T(), time.February, budgets[0].Month)
	assert.Equal(s.T(), time.November, budgets[1].Month)
}
