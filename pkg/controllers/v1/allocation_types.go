package v1

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stashbox/backend/pkg/models"
)

// AllocationSet is the full allocation set of an asset.
type AllocationSet struct {
	Goals map[uuid.UUID]decimal.Decimal `json:"goals"` // Percentage per goal ID, between 0 and 1
}

// AllocationDistribution lists the goals an asset is distributed to in
// equal parts.
type AllocationDistribution struct {
	GoalIDs []uuid.UUID `json:"goalIds"` // IDs of the goals
}

type AllocationLinks struct {
	Goal string `json:"goal" example:"https://example.com/api/v1/goals/af892e10-7e0a-4fb8-b1bc-4b6d88401ed2"` // The goal the asset is allocated to
}

// Allocation is the API v1 representation of an Allocation.
type Allocation struct {
	models.DefaultModel
	AssetID      uuid.UUID       `json:"assetId" example:"3d4a8f4e-6c1d-4f55-9a1a-43e4bb3b3e2b"` // ID of the asset
	GoalID       uuid.UUID       `json:"goalId" example:"e2d15f63-1e16-4c5c-9d17-83b1d3ab5d88"`  // ID of the goal
	Percentage   decimal.Decimal `json:"percentage" example:"0.6"`                               // Fraction of the asset, between 0 and 1
	TargetAmount decimal.Decimal `json:"targetAmount" example:"0.306"`                           // Amount of the asset dedicated to the goal
	Links        AllocationLinks `json:"links"`
}

func newAllocation(c *gin.Context, model models.Allocation) Allocation {
	url := c.GetString(string(models.DBContextURL))

	return Allocation{
		DefaultModel: model.DefaultModel,
		AssetID:      model.AssetID,
		GoalID:       model.GoalID,
		Percentage:   model.Percentage,
		TargetAmount: model.TargetAmount,
		Links: AllocationLinks{
			Goal: fmt.Sprintf("%s/v1/goals/%s", url, model.GoalID),
		},
	}
}

func newAllocations(c *gin.Context, allocations []models.Allocation) []Allocation {
	// When there are no resources, we want an empty list, not null
	data := make([]Allocation, 0, len(allocations))
	for _, a := range allocations {
		data = append(data, newAllocation(c, a))
	}

	return data
}

type AllocationListResponse struct {
	Data  []Allocation     `json:"data"`                                                          // List of allocations
	Sum   *decimal.Decimal `json:"sum" example:"1"`                                               // Sum of all percentages
	Error *string          `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

func allocationList(c *gin.Context, allocations []models.Allocation) AllocationListResponse {
	sum := models.AllocationSum(allocations)
	return AllocationListResponse{
		Data: newAllocations(c, allocations),
		Sum:  &sum,
	}
}
