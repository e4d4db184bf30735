package models

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stashbox/backend/internal/types"
	"gorm.io/gorm"
)

// Goal is a savings target. Assets contribute to it through allocations.
type Goal struct {
	DefaultModel
	Name         string          `gorm:"uniqueIndex"`
	Note         string
	Currency     string          // Currency the target and all contributions are kept in
	TargetAmount decimal.Decimal `gorm:"type:DECIMAL(20,8)"` // The amount to save
	Deadline     types.Month     // Month the target should be reached in. Zero for no deadline.
	Archived     bool            // Archived goals do not receive contributions
}

func (g *Goal) BeforeSave(_ *gorm.DB) error {
	g.Name = strings.TrimSpace(g.Name)
	g.Note = strings.TrimSpace(g.Note)
	g.Currency = NormalizeCurrency(g.Currency)

	if g.Currency == "" {
		return ErrCurrencyEmpty
	}

	if !g.TargetAmount.IsPositive() {
		return ErrGoalAmountNotPositive
	}

	return nil
}

// Live reports if the goal can receive contributions.
func (g Goal) Live() bool {
	return !g.Archived
}

// Contributed returns the sum of all contributions to the goal in months
// before the specified month. With a zero month, all contributions are
// summed up.
func (g Goal) Contributed(db *gorm.DB, before types.Month) (decimal.Decimal, error) {
	var plans []MonthlyPlan

	query := db.Where(&MonthlyPlan{GoalID: g.ID})
	if !before.IsZero() {
		query = query.Where("month < ?", before)
	}

	err := query.Find(&plans).Error
	if err != nil {
		return decimal.Zero, err
	}

	sum := decimal.Zero
	for _, plan := range plans {
		sum = sum.Add(plan.TotalContributed)
	}

	return sum, nil
}
