package v1

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stashbox/backend/pkg/models"
	"github.com/stashbox/backend/pkg/reconcile"
)

type TransactionEditable struct {
	Amount decimal.Decimal `json:"amount" example:"0.01" minimum:"0.00000001" maximum:"999999999999.99999999" multipleOf:"0.00000001"` // Amount in the currency of the asset
	Date   time.Time       `json:"date" example:"2024-03-12T00:00:00Z"`                                                                  // Date of the deposit. Defaults to now.
	Note   string          `json:"note" example:"Monthly savings" default:""`                                                            // A note for the deposit
}

type TransactionLinks struct {
	Self      string `json:"self" example:"https://example.com/api/v1/transactions/af892e10-7e0a-4fb8-b1bc-4b6d88401ed2"`                // The transaction itself
	Asset     string `json:"asset" example:"https://example.com/api/v1/assets/3d4a8f4e-6c1d-4f55-9a1a-43e4bb3b3e2b"`                     // The asset the deposit was made into
	Reconcile string `json:"reconcile" example:"https://example.com/api/v1/transactions/af892e10-7e0a-4fb8-b1bc-4b6d88401ed2/reconcile"` // Endpoint to re-run the contribution split
}

// Transaction is the API v1 representation of a deposit.
type Transaction struct {
	models.DefaultModel
	TransactionEditable
	AssetID uuid.UUID        `json:"assetId" example:"3d4a8f4e-6c1d-4f55-9a1a-43e4bb3b3e2b"` // ID of the asset
	Links   TransactionLinks `json:"links"`
}

func newTransaction(c *gin.Context, model models.Transaction) Transaction {
	url := c.GetString(string(models.DBContextURL))

	return Transaction{
		DefaultModel: model.DefaultModel,
		TransactionEditable: TransactionEditable{
			Amount: model.Amount,
			Date:   model.Date,
			Note:   model.Note,
		},
		AssetID: model.AssetID,
		Links: TransactionLinks{
			Self:      fmt.Sprintf("%s/v1/transactions/%s", url, model.ID),
			Asset:     fmt.Sprintf("%s/v1/assets/%s", url, model.AssetID),
			Reconcile: fmt.Sprintf("%s/v1/transactions/%s/reconcile", url, model.ID),
		},
	}
}

// Contribution is the API v1 representation of the part of a deposit that
// was attributed to a goal.
type Contribution struct {
	models.DefaultModel
	TransactionID   *uuid.UUID                `json:"transactionId" example:"af892e10-7e0a-4fb8-b1bc-4b6d88401ed2"` // ID of the deposit. Empty if the deposit was deleted.
	GoalID          uuid.UUID                 `json:"goalId" example:"e2d15f63-1e16-4c5c-9d17-83b1d3ab5d88"`        // ID of the goal
	AssetID         uuid.UUID                 `json:"assetId" example:"3d4a8f4e-6c1d-4f55-9a1a-43e4bb3b3e2b"`       // ID of the asset
	MonthlyPlanID   uuid.UUID                 `json:"monthlyPlanId" example:"0b4f31fb-d0d7-4a1f-a1f0-8c6f0c6f7a6b"` // ID of the monthly plan the contribution counts towards
	Amount          decimal.Decimal           `json:"amount" example:"500"`                                         // Amount in the currency of the goal
	AmountFormatted string                    `json:"amountFormatted" example:"$500.00"`                            // The amount, formatted for display
	AssetAmount     decimal.Decimal           `json:"assetAmount" example:"0.01"`                                   // Amount in the currency of the asset
	ExchangeRate    decimal.Decimal           `json:"exchangeRate" example:"50000"`                                 // Rate used for the conversion
	Currency        string                    `json:"currency" example:"USD"`                                       // Currency of the goal
	AssetCurrency   string                    `json:"assetCurrency" example:"BTC"`                                  // Currency of the asset
	Source          models.ContributionSource `json:"source" example:"manual_deposit"`                              // What created the contribution
	Date            time.Time                 `json:"date" example:"2024-03-12T00:00:00Z"`                          // Date of the deposit
}

func newContribution(model models.Contribution) Contribution {
	return Contribution{
		DefaultModel:    model.DefaultModel,
		TransactionID:   model.TransactionID,
		GoalID:          model.GoalID,
		AssetID:         model.AssetID,
		MonthlyPlanID:   model.MonthlyPlanID,
		Amount:          model.Amount,
		AmountFormatted: display(model.Amount, model.Currency),
		AssetAmount:     model.AssetAmount,
		ExchangeRate:    model.ExchangeRate,
		Currency:        model.Currency,
		AssetCurrency:   model.AssetCurrency,
		Source:          model.Source,
		Date:            model.Date,
	}
}

func newContributions(contributions []models.Contribution) []Contribution {
	// When there are no resources, we want an empty list, not null
	data := make([]Contribution, 0, len(contributions))
	for _, c := range contributions {
		data = append(data, newContribution(c))
	}

	return data
}

// Deposit is the outcome of a deposit or a reconciliation.
type Deposit struct {
	Transaction        Transaction      `json:"transaction"`        // The deposit
	Contributions      []Contribution   `json:"contributions"`      // Contributions created by this request
	Skipped            []reconcile.Skip `json:"skipped"`            // Allocations that did not receive a contribution
	AdjustedAllocation *Allocation      `json:"adjustedAllocation"` // Set if the deposit changed the target amount of the allocation
}

func newDeposit(c *gin.Context, result reconcile.Result) Deposit {
	d := Deposit{
		Transaction:   newTransaction(c, result.Transaction),
		Contributions: newContributions(result.Contributions),
		Skipped:       result.Skipped,
	}

	if d.Skipped == nil {
		d.Skipped = make([]reconcile.Skip, 0)
	}

	if result.AdjustedAllocation != nil {
		a := newAllocation(c, *result.AdjustedAllocation)
		d.AdjustedAllocation = &a
	}

	return d
}

type DepositResponse struct {
	Data  *Deposit `json:"data"`                                                           // Data for the deposit
	Error *string  `json:"error" example:"transaction amounts must be larger than zero"` // The error, if any occurred
}

type TransactionListResponse struct {
	Data       []Transaction `json:"data"`                                                          // List of transactions
	Error      *string       `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination   `json:"pagination"`                                                    // Pagination information
}

type TransactionQueryFilter struct {
	Offset uint `form:"offset"` // The offset of the first Transaction returned. Defaults to 0.
	Limit  int  `form:"limit"`  // Maximum number of Transactions to return. Defaults to 50.
}

// TransactionDetail is a transaction with all its contributions.
type TransactionDetail struct {
	Transaction
	Contributions []Contribution `json:"contributions"` // All contributions of the deposit
}

type TransactionResponse struct {
	Data  *TransactionDetail `json:"data"`                                                          // Data for the transaction
	Error *string            `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}
