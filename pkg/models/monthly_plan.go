package models

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stashbox/backend/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MonthlyPlan tracks the target and the contributions for one goal in one
// month.
type MonthlyPlan struct {
	DefaultModel
	GoalID           uuid.UUID       `gorm:"uniqueIndex:monthly_plan_goal_month"`
	Goal             Goal            `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Month            types.Month     `gorm:"uniqueIndex:monthly_plan_goal_month"`
	Target           decimal.Decimal `gorm:"type:DECIMAL(20,8)"` // Amount planned to be saved in the month
	TotalContributed decimal.Decimal `gorm:"type:DECIMAL(20,8)"` // Sum of all contributions in the month
	Contributions    []Contribution  `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// TargetFunc computes the target of a plan that is about to be created.
type TargetFunc func() (decimal.Decimal, error)

func findMonthlyPlan(db *gorm.DB, goalID uuid.UUID, month types.Month) (MonthlyPlan, error) {
	var plan MonthlyPlan
	err := db.Where(&MonthlyPlan{GoalID: goalID, Month: month}).First(&plan).Error
	return plan, err
}

// GetOrCreateMonthlyPlan returns the plan for the goal and month, creating
// it if it does not exist yet.
//
// The target is only computed when a plan needs to be created. Creation is
// an insert that does nothing if a plan for the same goal and month already
// exists, followed by a read, so concurrent callers always end up with the
// same plan.
func GetOrCreateMonthlyPlan(db *gorm.DB, goalID uuid.UUID, month types.Month, target TargetFunc) (MonthlyPlan, error) {
	plan, err := findMonthlyPlan(db, goalID, month)
	if err == nil {
		return plan, nil
	}

	if !errors.Is(err, ErrResourceNotFound) {
		return MonthlyPlan{}, err
	}

	t := decimal.Zero
	if target != nil {
		t, err = target()
		if err != nil {
			return MonthlyPlan{}, err
		}
	}

	plan = MonthlyPlan{
		GoalID:           goalID,
		Month:            month,
		Target:           t,
		TotalContributed: decimal.Zero,
	}

	err = db.
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "goal_id"}, {Name: "month"}},
			DoNothing: true,
		}).
		Create(&plan).Error
	if err != nil {
		return MonthlyPlan{}, err
	}

	return findMonthlyPlan(db, goalID, month)
}

// GetOrCreateMonthlyPlans resolves the plans for all goals in the month in
// one batch. The result is keyed by goal ID.
func GetOrCreateMonthlyPlans(db *gorm.DB, goals []Goal, month types.Month, target func(Goal) TargetFunc) (map[uuid.UUID]MonthlyPlan, error) {
	plans := make(map[uuid.UUID]MonthlyPlan, len(goals))

	for _, goal := range goals {
		if _, ok := plans[goal.ID]; ok {
			continue
		}

		var fn TargetFunc
		if target != nil {
			fn = target(goal)
		}

		plan, err := GetOrCreateMonthlyPlan(db, goal.ID, month, fn)
		if err != nil {
			return nil, err
		}
		plans[goal.ID] = plan
	}

	return plans, nil
}

// AddContribution increments the total of the plan by the amount.
//
// The increment is done by the database so that it does not depend on the
// total the caller has loaded.
func (p *MonthlyPlan) AddContribution(tx *gorm.DB, amount decimal.Decimal) error {
	err := tx.
		Model(&MonthlyPlan{}).
		Where("id = ?", p.ID).
		UpdateColumn("total_contributed", gorm.Expr("ROUND(total_contributed + ?, 8)", amount)).Error
	if err != nil {
		return err
	}

	reloaded, err := findMonthlyPlan(tx, p.GoalID, p.Month)
	if err != nil {
		return err
	}
	p.TotalContributed = reloaded.TotalContributed

	return nil
}

// Remaining returns how much is left to contribute to reach the target of
// the month. It is never negative.
func (p MonthlyPlan) Remaining() decimal.Decimal {
	return decimal.Max(decimal.Zero, p.Target.Sub(p.TotalContributed))
}
