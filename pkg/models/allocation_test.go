package models_test

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stashbox/backend/pkg/models"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) historyOf(allocationID uuid.UUID) []models.AllocationHistory {
	var history []models.AllocationHistory
	err := models.DB.Where(&models.AllocationHistory{AllocationID: allocationID}).Order("created_at ASC").Find(&history).Error
	suite.Require().Nil(err)
	return history
}

func (suite *TestSuiteStandard) TestSetAllocations() {
	asset := suite.createTestAsset(models.Asset{Name: "Savings", InitialBalance: decimal.NewFromInt(100)})
	house := suite.createTestGoal(models.Goal{Name: "House"})
	car := suite.createTestGoal(models.Goal{Name: "Car"})

	allocations, err := models.SetAllocations(models.DB, asset.ID, map[uuid.UUID]decimal.Decimal{
		house.ID: decimal.NewFromFloat(0.6),
		car.ID:   decimal.NewFromFloat(0.4),
	})
	suite.Require().Nil(err)
	suite.Require().Len(allocations, 2)

	targets := map[uuid.UUID]decimal.Decimal{}
	for _, a := range allocations {
		targets[a.GoalID] = a.TargetAmount
		suite.Assert().Len(suite.historyOf(a.ID), 1, "creating an allocation records its target")
	}

	suite.Assert().True(decimal.NewFromInt(60).Equal(targets[house.ID]), targets[house.ID].String())
	suite.Assert().True(decimal.NewFromInt(40).Equal(targets[car.ID]), targets[car.ID].String())

	stored, err := asset.Allocations(models.DB)
	suite.Require().Nil(err)
	suite.Assert().True(decimal.NewFromInt(1).Equal(models.AllocationSum(stored)))
}

func (suite *TestSuiteStandard) TestSetAllocationsReplaces() {
	asset := suite.createTestAsset(models.Asset{Name: "Savings", InitialBalance: decimal.NewFromInt(100)})
	house := suite.createTestGoal(models.Goal{Name: "House"})
	car := suite.createTestGoal(models.Goal{Name: "Car"})
	boat := suite.createTestGoal(models.Goal{Name: "Boat"})

	first, err := models.SetAllocations(models.DB, asset.ID, map[uuid.UUID]decimal.Decimal{
		house.ID: decimal.NewFromFloat(0.5),
		car.ID:   decimal.NewFromFloat(0.5),
	})
	suite.Require().Nil(err)

	var houseAllocation models.Allocation
	for _, a := range first {
		if a.GoalID == house.ID {
			houseAllocation = a
		}
	}

	second, err := models.SetAllocations(models.DB, asset.ID, map[uuid.UUID]decimal.Decimal{
		house.ID: decimal.NewFromFloat(0.5),
		boat.ID:  decimal.NewFromFloat(0.25),
	})
	suite.Require().Nil(err)
	suite.Require().Len(second, 2)

	stored, err := asset.Allocations(models.DB)
	suite.Require().Nil(err)
	suite.Require().Len(stored, 2)

	goals := map[uuid.UUID]models.Allocation{}
	for _, a := range stored {
		goals[a.GoalID] = a
	}

	suite.Assert().Contains(goals, house.ID)
	suite.Assert().Contains(goals, boat.ID)
	suite.Assert().NotContains(goals, car.ID, "allocations not in the new set must be removed")
	suite.Assert().Equal(houseAllocation.ID, goals[house.ID].ID, "unchanged allocations keep their ID")
	suite.Assert().Len(suite.historyOf(houseAllocation.ID), 1, "unchanged allocations do not get a new history entry")
}

func (suite *TestSuiteStandard) TestSetAllocationsInvalid() {
	asset := suite.createTestAsset(models.Asset{Name: "Savings"})
	house := suite.createTestGoal(models.Goal{Name: "House"})
	car := suite.createTestGoal(models.Goal{Name: "Car"})

	_, err := models.SetAllocations(models.DB, asset.ID, map[uuid.UUID]decimal.Decimal{
		house.ID: decimal.NewFromFloat(0.7),
	})
	suite.Require().Nil(err)

	tests := []struct {
		name        string
		percentages map[uuid.UUID]decimal.Decimal
	}{
		{"Sum above 100%", map[uuid.UUID]decimal.Decimal{house.ID: decimal.NewFromFloat(0.7), car.ID: decimal.NewFromFloat(0.4)}},
		{"Negative", map[uuid.UUID]decimal.Decimal{house.ID: decimal.NewFromFloat(-0.1)}},
		{"Above 1", map[uuid.UUID]decimal.Decimal{house.ID: decimal.NewFromFloat(1.5)}},
		{"No goal", map[uuid.UUID]decimal.Decimal{uuid.Nil: decimal.NewFromFloat(0.5)}},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			_, err := models.SetAllocations(models.DB, asset.ID, tt.percentages)
			assert.ErrorIs(t, err, models.ErrInvalidAllocation)

			stored, err := asset.Allocations(models.DB)
			assert.Nil(t, err)
			assert.Len(t, stored, 1, "the previous set must be untouched")
			assert.True(t, decimal.NewFromFloat(0.7).Equal(stored[0].Percentage))
		})
	}
}

func (suite *TestSuiteStandard) TestSetAllocationsWithinEpsilon() {
	asset := suite.createTestAsset(models.Asset{Name: "Savings"})
	a := suite.createTestGoal(models.Goal{Name: "A"})
	b := suite.createTestGoal(models.Goal{Name: "B"})
	c := suite.createTestGoal(models.Goal{Name: "C"})

	third := decimal.RequireFromString("0.33333334")
	_, err := models.SetAllocations(models.DB, asset.ID, map[uuid.UUID]decimal.Decimal{
		a.ID: third,
		b.ID: third,
		c.ID: decimal.RequireFromString("0.33333333"),
	})
	suite.Assert().Nil(err, "sums within epsilon of 100% are accepted")
}

// TestSetAllocationsRoundedSum verifies that percentages are validated after
// rounding them to the stored precision. Unrounded, these add up to exactly
// 100% plus epsilon. Rounded, every small share gains half a unit.
func (suite *TestSuiteStandard) TestSetAllocationsRoundedSum() {
	asset := suite.createTestAsset(models.Asset{Name: "Savings", InitialBalance: decimal.NewFromInt(100)})

	percentages := make(map[uuid.UUID]decimal.Decimal, 41)
	for range 40 {
		g := suite.createTestGoal(models.Goal{Name: uuid.NewString()})
		percentages[g.ID] = decimal.RequireFromString("0.020000005")
	}
	rest := suite.createTestGoal(models.Goal{Name: "Rest"})
	percentages[rest.ID] = decimal.RequireFromString("0.1999999")

	_, err := models.SetAllocations(models.DB, asset.ID, percentages)
	suite.Assert().ErrorIs(err, models.ErrInvalidAllocation)

	stored, err := asset.Allocations(models.DB)
	suite.Require().Nil(err)
	suite.Assert().Empty(stored, "rejected sets are not written")
}

func (suite *TestSuiteStandard) TestSetAllocationsMissingGoal() {
	asset := suite.createTestAsset(models.Asset{Name: "Savings"})

	_, err := models.SetAllocations(models.DB, asset.ID, map[uuid.UUID]decimal.Decimal{
		uuid.New(): decimal.NewFromFloat(0.5),
	})
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)

	stored, err := asset.Allocations(models.DB)
	suite.Require().Nil(err)
	suite.Assert().Len(stored, 0)
}

func (suite *TestSuiteStandard) TestSetAllocationsMissingAsset() {
	goal := suite.createTestGoal(models.Goal{Name: "House"})

	_, err := models.SetAllocations(models.DB, uuid.New(), map[uuid.UUID]decimal.Decimal{
		goal.ID: decimal.NewFromFloat(0.5),
	})
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)
}

// TestSetAllocationsSumInvariant sets random allocation sets and verifies
// that no stored set ever exceeds 100%.
func (suite *TestSuiteStandard) TestSetAllocationsSumInvariant() {
	asset := suite.createTestAsset(models.Asset{Name: "Savings"})

	var goals []models.Goal
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		goals = append(goals, suite.createTestGoal(models.Goal{Name: name}))
	}

	random := rand.New(rand.NewSource(42))
	limit := decimal.NewFromInt(1).Add(models.Epsilon)

	for range 30 {
		percentages := map[uuid.UUID]decimal.Decimal{}
		for _, g := range goals[:1+random.Intn(len(goals))] {
			percentages[g.ID] = decimal.NewFromFloat(random.Float64() * 0.5).Round(8)
		}

		_, _ = models.SetAllocations(models.DB, asset.ID, percentages)

		stored, err := asset.Allocations(models.DB)
		suite.Require().Nil(err)
		suite.Assert().True(models.AllocationSum(stored).LessThanOrEqual(limit), "sum is %s", models.AllocationSum(stored))
	}
}

func (suite *TestSuiteStandard) TestDistributeEvenly() {
	asset := suite.createTestAsset(models.Asset{Name: "Savings", InitialBalance: decimal.NewFromInt(90)})
	a := suite.createTestGoal(models.Goal{Name: "A"})
	b := suite.createTestGoal(models.Goal{Name: "B"})
	c := suite.createTestGoal(models.Goal{Name: "C"})

	allocations, err := models.DistributeEvenly(models.DB, asset.ID, []uuid.UUID{a.ID, b.ID, c.ID, a.ID})
	suite.Require().Nil(err)
	suite.Require().Len(allocations, 3, "duplicate goals are ignored")

	for _, allocation := range allocations {
		suite.Assert().True(decimal.RequireFromString("0.33333333").Equal(allocation.Percentage), allocation.Percentage.String())
	}

	sum := models.AllocationSum(allocations)
	suite.Assert().True(sum.LessThanOrEqual(decimal.NewFromInt(1)))
	suite.Assert().True(decimal.NewFromInt(1).Sub(sum).LessThan(decimal.RequireFromString("0.0000001")))
}

func (suite *TestSuiteStandard) TestDistributeEvenlyEmptyClears() {
	asset := suite.createTestAsset(models.Asset{Name: "Savings"})
	goal := suite.createTestGoal(models.Goal{Name: "House"})

	_, err := models.DistributeEvenly(models.DB, asset.ID, []uuid.UUID{goal.ID})
	suite.Require().Nil(err)

	allocations, err := models.DistributeEvenly(models.DB, asset.ID, nil)
	suite.Require().Nil(err)
	suite.Assert().Len(allocations, 0)

	stored, err := asset.Allocations(models.DB)
	suite.Require().Nil(err)
	suite.Assert().Len(stored, 0)
}

func (suite *TestSuiteStandard) TestActiveAllocations() {
	asset := suite.createTestAsset(models.Asset{Name: "Savings"})
	zebra := suite.createTestGoal(models.Goal{Name: "Zebra"})
	apple := suite.createTestGoal(models.Goal{Name: "Apple"})
	zero := suite.createTestGoal(models.Goal{Name: "Nothing"})
	tiny := suite.createTestGoal(models.Goal{Name: "Tiny"})

	_, err := models.SetAllocations(models.DB, asset.ID, map[uuid.UUID]decimal.Decimal{
		zebra.ID: decimal.NewFromFloat(0.5),
		apple.ID: decimal.NewFromFloat(0.25),
		zero.ID:  decimal.Zero,
		tiny.ID:  decimal.RequireFromString("0.00000001"),
	})
	suite.Require().Nil(err)

	active, err := models.ActiveAllocations(models.DB, asset.ID)
	suite.Require().Nil(err)
	suite.Require().Len(active, 2)
	suite.Assert().Equal(apple.ID, active[0].GoalID)
	suite.Assert().Equal("Apple", active[0].Goal.Name, "goals are preloaded")
	suite.Assert().Equal(zebra.ID, active[1].GoalID)
}

func (suite *TestSuiteStandard) TestClearAllocations() {
	asset := suite.createTestAsset(models.Asset{Name: "Savings"})
	other := suite.createTestAsset(models.Asset{Name: "Other"})
	goal := suite.createTestGoal(models.Goal{Name: "House"})

	for _, id := range []uuid.UUID{asset.ID, other.ID} {
		_, err := models.DistributeEvenly(models.DB, id, []uuid.UUID{goal.ID})
		suite.Require().Nil(err)
	}

	suite.Require().Nil(models.ClearAllocations(models.DB, asset.ID))

	stored, err := asset.Allocations(models.DB)
	suite.Require().Nil(err)
	suite.Assert().Len(stored, 0)

	stored, err = other.Allocations(models.DB)
	suite.Require().Nil(err)
	suite.Assert().Len(stored, 1, "allocations of other assets are kept")
}

func (suite *TestSuiteStandard) TestNormalizeAllocations() {
	asset := suite.createTestAsset(models.Asset{Name: "Savings", InitialBalance: decimal.NewFromInt(200)})
	house := suite.createTestGoal(models.Goal{Name: "House"})
	car := suite.createTestGoal(models.Goal{Name: "Car"})

	_, err := models.SetAllocations(models.DB, asset.ID, map[uuid.UUID]decimal.Decimal{
		house.ID: decimal.NewFromFloat(0.3),
		car.ID:   decimal.NewFromFloat(0.2),
	})
	suite.Require().Nil(err)

	allocations, err := models.NormalizeAllocations(models.DB, asset.ID)
	suite.Require().Nil(err)
	suite.Require().Len(allocations, 2)

	for _, a := range allocations {
		switch a.GoalID {
		case house.ID:
			suite.Assert().True(decimal.NewFromFloat(0.6).Equal(a.Percentage), a.Percentage.String())
			suite.Assert().True(decimal.NewFromInt(120).Equal(a.TargetAmount), a.TargetAmount.String())
		case car.ID:
			suite.Assert().True(decimal.NewFromFloat(0.4).Equal(a.Percentage), a.Percentage.String())
			suite.Assert().Len(suite.historyOf(a.ID), 2)
		}
	}

	suite.Assert().True(models.IsFullyAllocated(models.AllocationSum(allocations)))
}

func (suite *TestSuiteStandard) TestNormalizeAllocationsNoop() {
	asset := suite.createTestAsset(models.Asset{Name: "Savings"})
	goal := suite.createTestGoal(models.Goal{Name: "House"})

	allocations, err := models.NormalizeAllocations(models.DB, asset.ID)
	suite.Require().Nil(err)
	suite.Assert().Len(allocations, 0)

	_, err = models.SetAllocations(models.DB, asset.ID, map[uuid.UUID]decimal.Decimal{goal.ID: decimal.Zero})
	suite.Require().Nil(err)

	allocations, err = models.NormalizeAllocations(models.DB, asset.ID)
	suite.Require().Nil(err)
	suite.Require().Len(allocations, 1)
	suite.Assert().True(allocations[0].Percentage.IsZero(), "all-zero sets are not rescaled")
}

func (suite *TestSuiteStandard) TestIsFullyAllocated() {
	tests := []struct {
		percentage string
		full       bool
	}{
		{"1", true},
		{"0.99999999", true},
		{"1.00000005", true},
		{"0.9999", false},
		{"0", false},
	}

	for _, tt := range tests {
		suite.Assert().Equal(tt.full, models.IsFullyAllocated(decimal.RequireFromString(tt.percentage)), tt.percentage)
	}
}

func (suite *TestSuiteStandard) TestAllocationCascadeOnGoalDelete() {
	asset := suite.createTestAsset(models.Asset{Name: "Savings"})
	goal := suite.createTestGoal(models.Goal{Name: "House"})

	allocations, err := models.DistributeEvenly(models.DB, asset.ID, []uuid.UUID{goal.ID})
	suite.Require().Nil(err)

	suite.Require().Nil(models.DB.Delete(&goal).Error)

	stored, err := asset.Allocations(models.DB)
	suite.Require().Nil(err)
	suite.Assert().Len(stored, 0)
	suite.Assert().Len(suite.historyOf(allocations[0].ID), 0, "history is deleted with the allocation")
}
