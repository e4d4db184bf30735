package models_test

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stashbox/backend/internal/types"
	"github.com/stashbox/backend/pkg/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func (suite *TestSuiteStandard) TestGoalBeforeSave() {
	tests := []struct {
		name     string
		currency string
		amount   decimal.Decimal
		err      error
	}{
		{"Negative amount", "EUR", decimal.NewFromFloat(-10), models.ErrGoalAmountNotPositive},
		{"Zero amount", "EUR", decimal.Zero, models.ErrGoalAmountNotPositive},
		{"No currency", " ", decimal.NewFromFloat(750), models.ErrCurrencyEmpty},
		{"Valid", "eur", decimal.NewFromFloat(750), nil},
	}

	for _, tt := range tests {
		g := models.Goal{
			Currency:     tt.currency,
			TargetAmount: tt.amount,
		}

		err := g.BeforeSave(&gorm.DB{})
		assert.Equal(suite.T(), tt.err, err, tt.name)
	}
}

func (suite *TestSuiteStandard) TestGoalTrimWhitespace() {
	note := " Whitespace    "
	name := "  There is whitespace here  \t"

	goal := suite.createTestGoal(models.Goal{
		Name:     name,
		Note:     note,
		Currency: " usd",
	})

	assert.Equal(suite.T(), strings.TrimSpace(name), goal.Name)
	assert.Equal(suite.T(), strings.TrimSpace(note), goal.Note)
	assert.Equal(suite.T(), "USD", goal.Currency)
}

func (suite *TestSuiteStandard) TestGoalNameUnique() {
	_ = suite.createTestGoal(models.Goal{Name: "House"})

	err := models.DB.Create(&models.Goal{Name: "House", Currency: "EUR", TargetAmount: decimal.NewFromInt(10)}).Error
	assert.ErrorIs(suite.T(), err, models.ErrGoalNameNotUnique)
}

func (suite *TestSuiteStandard) TestGoalLive() {
	assert.True(suite.T(), models.Goal{}.Live())
	assert.False(suite.T(), models.Goal{Archived: true}.Live())
}

func (suite *TestSuiteStandard) TestGoalContributed() {
	goal := suite.createTestGoal(models.Goal{Name: "House"})

	january := types.NewMonth(2024, 1)
	for i, month := range []types.Month{january, january.AddDate(0, 1), january.AddDate(0, 2)} {
		plan := suite.createTestPlan(goal, month)
		suite.Require().Nil(plan.AddContribution(models.DB, decimal.NewFromInt(int64(100*(i+1)))))
	}

	tests := []struct {
		before types.Month
		sum    int64
	}{
		{january, 0},
		{january.AddDate(0, 1), 100},
		{january.AddDate(0, 2), 300},
		{january.AddDate(1, 0), 600},
		{types.Month{}, 600},
	}

	for _, tt := range tests {
		contributed, err := goal.Contributed(models.DB, tt.before)
		suite.Require().Nil(err)
		suite.Assert().True(decimal.NewFromInt(tt.sum).Equal(contributed), "before %s: %s", tt.before, contributed)
	}
}
