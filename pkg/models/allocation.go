package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Epsilon is the tolerance for every percentage comparison: the 100% cap,
// the "fully allocated" check and the "active allocation" threshold.
var Epsilon = decimal.New(1, -7)

// percentagePlaces is the precision percentages and amounts are stored with.
const percentagePlaces = 8

var one = decimal.NewFromInt(1)

// Allocation assigns a fraction of an Asset's value to a Goal.
//
// There is at most one allocation per asset and goal.
type Allocation struct {
	DefaultModel
	AssetID      uuid.UUID       `gorm:"uniqueIndex:allocation_asset_goal"`
	Asset        Asset           `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	GoalID       uuid.UUID       `gorm:"uniqueIndex:allocation_asset_goal"`
	Goal         Goal            `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Percentage   decimal.Decimal `gorm:"type:DECIMAL(20,8)"` // Fraction of the asset, between 0 and 1
	TargetAmount decimal.Decimal `gorm:"type:DECIMAL(20,8)"` // Amount of the asset dedicated to the goal
}

// AllocationHistory records every change of an allocation's target amount.
type AllocationHistory struct {
	DefaultModel
	AllocationID uuid.UUID       `gorm:"index"`
	Allocation   Allocation      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Percentage   decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	TargetAmount decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	Date         time.Time
}

// IsFullyAllocated reports if a percentage is 100% within Epsilon.
func IsFullyAllocated(percentage decimal.Decimal) bool {
	return percentage.Sub(one).Abs().LessThanOrEqual(Epsilon)
}

// IsActive reports if the allocation should receive contributions.
func (a Allocation) IsActive() bool {
	return a.Percentage.GreaterThan(Epsilon)
}

// AllocationSum returns the sum of the percentages of all allocations.
func AllocationSum(allocations []Allocation) decimal.Decimal {
	sum := decimal.Zero
	for _, a := range allocations {
		sum = sum.Add(a.Percentage)
	}

	return sum
}

// validatePercentages verifies that all percentages are in [0, 1] and that
// they do not add up to more than 100%.
//
// Percentages are checked with the precision they are stored with.
func validatePercentages(percentages map[uuid.UUID]decimal.Decimal) error {
	sum := decimal.Zero
	for goalID, p := range percentages {
		if goalID == uuid.Nil {
			return fmt.Errorf("%w: no goal ID specified", ErrInvalidAllocation)
		}

		p = p.Round(percentagePlaces)

		if p.IsNegative() || p.GreaterThan(one.Add(Epsilon)) {
			return fmt.Errorf("%w: the percentage for goal %s must be between 0 and 1, got %s", ErrInvalidAllocation, goalID, p)
		}
		sum = sum.Add(p)
	}

	if sum.GreaterThan(one.Add(Epsilon)) {
		return fmt.Errorf("%w: the percentages add up to %s, which is more than 100%%", ErrInvalidAllocation, sum)
	}

	return nil
}

// SetAllocations replaces the full allocation set of an asset.
//
// The set is validated before anything is written. Replacement happens in
// one database transaction: if any write fails, the previous set is kept.
// Allocations for goals that are in both the old and the new set keep their
// ID and history.
func SetAllocations(db *gorm.DB, assetID uuid.UUID, percentages map[uuid.UUID]decimal.Decimal) ([]Allocation, error) {
	err := validatePercentages(percentages)
	if err != nil {
		return nil, err
	}

	var allocations []Allocation
	err = db.Transaction(func(tx *gorm.DB) error {
		asset, err := assetByID(tx, assetID)
		if err != nil {
			return err
		}

		balance, err := asset.Balance(tx)
		if err != nil {
			return err
		}

		var existing []Allocation
		err = tx.Where(&Allocation{AssetID: assetID}).Find(&existing).Error
		if err != nil {
			return err
		}

		byGoal := make(map[uuid.UUID]Allocation, len(existing))
		for _, a := range existing {
			if _, ok := percentages[a.GoalID]; !ok {
				err = tx.Delete(&a).Error
				if err != nil {
					return err
				}
				continue
			}
			byGoal[a.GoalID] = a
		}

		goalIDs := maps.Keys(percentages)
		slices.SortFunc(goalIDs, func(a, b uuid.UUID) int {
			return strings.Compare(a.String(), b.String())
		})

		now := time.Now().UTC()
		for _, goalID := range goalIDs {
			allocation, ok := byGoal[goalID]
			if !ok {
				allocation = Allocation{AssetID: assetID, GoalID: goalID}
			}

			allocation, err = saveAllocation(tx, allocation, percentages[goalID], balance, now)
			if err != nil {
				return err
			}
			allocations = append(allocations, allocation)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return allocations, nil
}

// saveAllocation sets the percentage of an allocation, derives its target
// from the asset balance and records the change in the history.
func saveAllocation(tx *gorm.DB, a Allocation, percentage, balance decimal.Decimal, date time.Time) (Allocation, error) {
	percentage = percentage.Round(percentagePlaces)
	target := decimal.Max(decimal.Zero, balance.Mul(percentage).Round(percentagePlaces))

	changed := a.ID == uuid.Nil || !a.Percentage.Equal(percentage) || !a.TargetAmount.Equal(target)
	a.Percentage = percentage
	a.TargetAmount = target

	err := tx.Omit(clause.Associations).Save(&a).Error
	if err != nil {
		return Allocation{}, err
	}

	if changed {
		err = a.RecordHistory(tx, date)
		if err != nil {
			return Allocation{}, err
		}
	}

	return a, nil
}

// RecordHistory appends the current percentage and target of the
// allocation to its history.
func (a Allocation) RecordHistory(tx *gorm.DB, date time.Time) error {
	return tx.Omit(clause.Associations).Create(&AllocationHistory{
		AllocationID: a.ID,
		Percentage:   a.Percentage,
		TargetAmount: a.TargetAmount,
		Date:         date.UTC(),
	}).Error
}

// DistributeEvenly allocates the asset in equal parts to all goals. It
// replaces the existing allocation set.
//
// Each goal receives 1/len(goals), truncated to the stored precision so
// that the sum never exceeds 100%.
func DistributeEvenly(db *gorm.DB, assetID uuid.UUID, goalIDs []uuid.UUID) ([]Allocation, error) {
	unique := make(map[uuid.UUID]decimal.Decimal, len(goalIDs))
	for _, id := range goalIDs {
		unique[id] = decimal.Zero
	}

	if len(unique) == 0 {
		return nil, ClearAllocations(db, assetID)
	}

	share := one.Div(decimal.NewFromInt(int64(len(unique)))).Truncate(percentagePlaces)
	for id := range unique {
		unique[id] = share
	}

	return SetAllocations(db, assetID, unique)
}

// ActiveAllocations returns the allocations of the asset that have a
// percentage above Epsilon, ordered by goal name. The goals are preloaded.
func ActiveAllocations(db *gorm.DB, assetID uuid.UUID) ([]Allocation, error) {
	allocations, err := Asset{DefaultModel: DefaultModel{ID: assetID}}.Allocations(db)
	if err != nil {
		return nil, err
	}

	active := make([]Allocation, 0, len(allocations))
	for _, a := range allocations {
		if a.IsActive() {
			active = append(active, a)
		}
	}

	sort.SliceStable(active, func(i, j int) bool {
		if active[i].Goal.Name != active[j].Goal.Name {
			return active[i].Goal.Name < active[j].Goal.Name
		}
		return active[i].GoalID.String() < active[j].GoalID.String()
	})

	return active, nil
}

// ClearAllocations deletes all allocations of the asset.
func ClearAllocations(db *gorm.DB, assetID uuid.UUID) error {
	return db.Where("asset_id = ?", assetID).Delete(&Allocation{}).Error
}

// NormalizeAllocations rescales the allocations of the asset so that they
// add up to 100%. Empty sets and sets that sum up to zero are left alone.
func NormalizeAllocations(db *gorm.DB, assetID uuid.UUID) ([]Allocation, error) {
	var result []Allocation

	err := db.Transaction(func(tx *gorm.DB) error {
		asset, err := assetByID(tx, assetID)
		if err != nil {
			return err
		}

		allocations, err := asset.Allocations(tx)
		if err != nil {
			return err
		}

		sum := AllocationSum(allocations)
		if !sum.IsPositive() {
			result = allocations
			return nil
		}

		balance, err := asset.Balance(tx)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		for _, a := range allocations {
			percentage := a.Percentage.Div(sum).Truncate(percentagePlaces)
			a, err = saveAllocation(tx, a, percentage, balance, now)
			if err != nil {
				return err
			}
			result = append(result, a)
		}

		return nil
	})

	return result, err
}
