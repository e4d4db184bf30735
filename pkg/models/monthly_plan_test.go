package models_test

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stashbox/backend/internal/types"
	"github.com/stashbox/backend/pkg/models"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestGetOrCreateMonthlyPlan() {
	goal := suite.createTestGoal(models.Goal{Name: "House"})
	month := types.NewMonth(2024, 3)

	calls := 0
	target := func() (decimal.Decimal, error) {
		calls++
		return decimal.NewFromInt(250), nil
	}

	first, err := models.GetOrCreateMonthlyPlan(models.DB, goal.ID, month, target)
	suite.Require().Nil(err)
	assert.True(suite.T(), decimal.NewFromInt(250).Equal(first.Target))
	assert.True(suite.T(), first.TotalContributed.IsZero())
	assert.Equal(suite.T(), "2024-03", first.Month.String())

	second, err := models.GetOrCreateMonthlyPlan(models.DB, goal.ID, month, target)
	suite.Require().Nil(err)
	assert.Equal(suite.T(), first.ID, second.ID)
	assert.Equal(suite.T(), 1, calls, "the target is only computed for new plans")

	other, err := models.GetOrCreateMonthlyPlan(models.DB, goal.ID, month.AddDate(0, 1), nil)
	suite.Require().Nil(err)
	assert.NotEqual(suite.T(), first.ID, other.ID)
	assert.True(suite.T(), other.Target.IsZero())
}

func (suite *TestSuiteStandard) TestGetOrCreateMonthlyPlanConcurrent() {
	goal := suite.createTestGoal(models.Goal{Name: "House"})
	month := types.NewMonth(2024, 3)

	const workers = 10
	ids := make([]uuid.UUID, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			plan, err := models.GetOrCreateMonthlyPlan(models.DB, goal.ID, month, nil)
			ids[i], errs[i] = plan.ID, err
		}()
	}
	wg.Wait()

	for i := range workers {
		suite.Require().Nil(errs[i])
		assert.Equal(suite.T(), ids[0], ids[i])
	}

	var count int64
	suite.Require().Nil(models.DB.Model(&models.MonthlyPlan{}).Where("goal_id = ?", goal.ID).Count(&count).Error)
	assert.Equal(suite.T(), int64(1), count)
}

func (suite *TestSuiteStandard) TestGetOrCreateMonthlyPlanTargetError() {
	goal := suite.createTestGoal(models.Goal{Name: "House"})
	failure := errors.New("planning failed")

	_, err := models.GetOrCreateMonthlyPlan(models.DB, goal.ID, types.NewMonth(2024, 3), func() (decimal.Decimal, error) {
		return decimal.Zero, failure
	})
	assert.ErrorIs(suite.T(), err, failure)

	var count int64
	suite.Require().Nil(models.DB.Model(&models.MonthlyPlan{}).Count(&count).Error)
	assert.Equal(suite.T(), int64(0), count)
}

func (suite *TestSuiteStandard) TestGetOrCreateMonthlyPlanMissingGoal() {
	_, err := models.GetOrCreateMonthlyPlan(models.DB, uuid.New(), types.NewMonth(2024, 3), nil)
	assert.ErrorIs(suite.T(), err, models.ErrResourceNotFound)
}

func (suite *TestSuiteStandard) TestGetOrCreateMonthlyPlans() {
	house := suite.createTestGoal(models.Goal{Name: "House"})
	car := suite.createTestGoal(models.Goal{Name: "Car"})
	month := types.NewMonth(2024, 3)

	existing := suite.createTestPlan(house, month)

	plans, err := models.GetOrCreateMonthlyPlans(models.DB, []models.Goal{house, car, house}, month, func(g models.Goal) models.TargetFunc {
		return func() (decimal.Decimal, error) {
			return g.TargetAmount, nil
		}
	})
	suite.Require().Nil(err)
	suite.Require().Len(plans, 2)
	assert.Equal(suite.T(), existing.ID, plans[house.ID].ID)
	assert.True(suite.T(), decimal.NewFromInt(1000).Equal(plans[car.ID].Target))
}

func (suite *TestSuiteStandard) TestMonthlyPlanAddContribution() {
	goal := suite.createTestGoal(models.Goal{Name: "House"})
	plan, err := models.GetOrCreateMonthlyPlan(models.DB, goal.ID, types.NewMonth(2024, 3), func() (decimal.Decimal, error) {
		return decimal.NewFromInt(100), nil
	})
	suite.Require().Nil(err)

	// A stale copy must not lose the increment of the other
	stale := plan

	suite.Require().Nil(plan.AddContribution(models.DB, decimal.RequireFromString("30.5")))
	suite.Require().Nil(stale.AddContribution(models.DB, decimal.NewFromInt(20)))

	assert.True(suite.T(), decimal.RequireFromString("50.5").Equal(stale.TotalContributed), stale.TotalContributed.String())
	assert.True(suite.T(), decimal.RequireFromString("49.5").Equal(stale.Remaining()), stale.Remaining().String())

	suite.Require().Nil(stale.AddContribution(models.DB, decimal.NewFromInt(100)))
	assert.True(suite.T(), stale.Remaining().IsZero(), "remaining is never negative")
}

func (suite *TestSuiteStandard) TestMonthlyPlanCascade() {
	goal := suite.createTestGoal(models.Goal{Name: "House"})
	_ = suite.createTestPlan(goal, types.NewMonth(2024, 3))

	suite.Require().Nil(models.DB.Delete(&goal).Error)

	var count int64
	suite.Require().Nil(models.DB.Model(&models.MonthlyPlan{}).Count(&count).Error)
	assert.Equal(suite.T(), int64(0), count)
}
