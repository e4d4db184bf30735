// Package planning derives the monthly saving targets for goals.
package planning

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stashbox/backend/internal/types"
	"github.com/stashbox/backend/pkg/models"
	"gorm.io/gorm"
)

// targetPlaces is the precision of computed targets.
const targetPlaces = 8

// Planner computes the amount that should be saved for a goal in a month.
type Planner interface {
	MonthlyTarget(db *gorm.DB, goal models.Goal, month types.Month) (decimal.Decimal, error)
}

// DeadlinePlanner spreads the amount still missing for a goal evenly over
// the months left until its deadline.
//
// Contributions made in the month itself do not lower its target, so the
// target of a month stays the same while it is in progress. Goals without a
// deadline, or with a deadline in the past, are due in the month itself.
type DeadlinePlanner struct{}

func (DeadlinePlanner) MonthlyTarget(db *gorm.DB, goal models.Goal, month types.Month) (decimal.Decimal, error) {
	contributed, err := goal.Contributed(db, month)
	if err != nil {
		return decimal.Zero, err
	}

	remaining := goal.TargetAmount.Sub(contributed)
	if !remaining.IsPositive() {
		return decimal.Zero, nil
	}

	months := 1
	if !goal.Deadline.IsZero() {
		months = max(1, month.MonthsUntil(goal.Deadline))
	}

	return remaining.DivRound(decimal.NewFromInt(int64(months)), targetPlaces), nil
}

// Target returns a function that computes the target for a goal in a
// month with the planner. It is used to seed monthly plans on creation.
func Target(db *gorm.DB, planner Planner, month types.Month) func(models.Goal) models.TargetFunc {
	return func(goal models.Goal) models.TargetFunc {
		return func() (decimal.Decimal, error) {
			return planner.MonthlyTarget(db, goal, month)
		}
	}
}

// PlansForMonth returns the monthly plans of all goals for the month,
// creating the ones that do not exist yet with the target computed by the
// planner. Plans are returned in the order of the goals.
func PlansForMonth(db *gorm.DB, planner Planner, goals []models.Goal, month types.Month) ([]models.MonthlyPlan, error) {
	byGoal, err := models.GetOrCreateMonthlyPlans(db, goals, month, Target(db, planner, month))
	if err != nil {
		return nil, err
	}

	plans := make([]models.MonthlyPlan, 0, len(byGoal))
	seen := make(map[uuid.UUID]bool, len(goals))
	for _, goal := range goals {
		if seen[goal.ID] {
			continue
		}
		seen[goal.ID] = true
		plans = append(plans, byGoal[goal.ID])
	}

	return plans, nil
}
