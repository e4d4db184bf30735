package v1

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stashbox/backend/pkg/models"
	"gorm.io/gorm"
)

type AssetEditable struct {
	Name           string          `json:"name" example:"Bitcoin wallet" default:""`                                                                                   // Name of the asset
	Note           string          `json:"note" example:"Cold storage" default:""`                                                                                     // A longer description for the asset
	Currency       string          `json:"currency" example:"BTC"`                                                                                                     // Currency the asset is held in
	InitialBalance decimal.Decimal `json:"initialBalance" example:"0.5" default:"0" minimum:"0" maximum:"999999999999.99999999" multipleOf:"0.00000001"` // Balance of the asset before any transactions were recorded
}

// model returns the database resource for the editable fields
func (editable AssetEditable) model() models.Asset {
	return models.Asset{
		Name:           editable.Name,
		Note:           editable.Note,
		Currency:       editable.Currency,
		InitialBalance: editable.InitialBalance,
	}
}

type AssetLinks struct {
	Self         string `json:"self" example:"https://example.com/api/v1/assets/af892e10-7e0a-4fb8-b1bc-4b6d88401ed2"`                          // The asset itself
	Allocations  string `json:"allocations" example:"https://example.com/api/v1/assets/af892e10-7e0a-4fb8-b1bc-4b6d88401ed2/allocations"`   // Allocations of the asset to goals
	Transactions string `json:"transactions" example:"https://example.com/api/v1/assets/af892e10-7e0a-4fb8-b1bc-4b6d88401ed2/transactions"` // Deposits into the asset
}

// Asset is the API v1 representation of an Asset.
type Asset struct {
	models.DefaultModel
	AssetEditable
	Balance          decimal.Decimal `json:"balance" example:"0.51"`                  // Initial balance plus all deposits
	BalanceFormatted string          `json:"balanceFormatted" example:"0.51 BTC"` // The balance, formatted for display
	Links            AssetLinks      `json:"links"`
}

func newAsset(c *gin.Context, db *gorm.DB, model models.Asset) (Asset, error) {
	url := c.GetString(string(models.DBContextURL))

	balance, err := model.Balance(db)
	if err != nil {
		return Asset{}, err
	}

	return Asset{
		DefaultModel: model.DefaultModel,
		AssetEditable: AssetEditable{
			Name:           model.Name,
			Note:           model.Note,
			Currency:       model.Currency,
			InitialBalance: model.InitialBalance,
		},
		Balance:          balance,
		BalanceFormatted: display(balance, model.Currency),
		Links: AssetLinks{
			Self:         fmt.Sprintf("%s/v1/assets/%s", url, model.ID),
			Allocations:  fmt.Sprintf("%s/v1/assets/%s/allocations", url, model.ID),
			Transactions: fmt.Sprintf("%s/v1/assets/%s/transactions", url, model.ID),
		},
	}, nil
}

type AssetListResponse struct {
	Data  []Asset `json:"data"`                                                          // List of assets
	Error *string `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type AssetCreateResponse struct {
	Error *string         `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  []AssetResponse `json:"data"`                                                          // List of created Assets
}

func (a *AssetCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	a.Data = append(a.Data, AssetResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type AssetResponse struct {
	Data  *Asset  `json:"data"`                                                          // Data for the asset
	Error *string `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred for this asset
}
