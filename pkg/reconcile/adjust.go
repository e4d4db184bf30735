package reconcile

import (
	"github.com/shopspring/decimal"
	"github.com/stashbox/backend/pkg/models"
	"gorm.io/gorm"
)

// adjust keeps the target of an asset that is allocated entirely to a
// single goal in sync with the asset balance.
//
// before is the allocation set of the asset and preBalance its balance,
// both read before the deposit was recorded. Assets with any other
// allocation set are never adjusted. It returns the updated allocation or
// nil if nothing changed.
func adjust(tx *gorm.DB, before []models.Allocation, preBalance decimal.Decimal, deposit models.Transaction) (*models.Allocation, error) {
	if len(before) != 1 || !models.IsFullyAllocated(before[0].Percentage) {
		return nil, nil
	}

	allocation := before[0]
	target := decimal.Max(decimal.Zero, preBalance.Add(deposit.Amount)).Round(amountPlaces)
	if target.Sub(allocation.TargetAmount).Abs().LessThanOrEqual(models.Epsilon) {
		return nil, nil
	}

	err := tx.
		Model(&models.Allocation{}).
		Where("id = ?", allocation.ID).
		UpdateColumn("target_amount", target).Error
	if err != nil {
		return nil, err
	}

	allocation.TargetAmount = target
	err = allocation.RecordHistory(tx, deposit.Date)
	if err != nil {
		return nil, err
	}

	return &allocation, nil
}
