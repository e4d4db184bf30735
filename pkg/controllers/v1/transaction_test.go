package v1_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	v1 "github.com/stashbox/backend/pkg/controllers/v1"
	"github.com/stashbox/backend/pkg/models"
	"github.com/stashbox/backend/pkg/rates"
	"github.com/stashbox/backend/pkg/reconcile"
	"github.com/stashbox/backend/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func depositsURL(assetID uuid.UUID) string {
	return fmt.Sprintf("http://example.com/v1/assets/%s/transactions", assetID)
}

func deposit(t *testing.T, co v1.Controller, assetID uuid.UUID, amount string, date time.Time, expectedStatus ...int) v1.DepositResponse {
	if len(expectedStatus) == 0 {
		expectedStatus = append(expectedStatus, http.StatusCreated)
	}

	r := test.Request(t, co, http.MethodPost, depositsURL(assetID), v1.TransactionEditable{
		Amount: decimal.RequireFromString(amount),
		Date:   date,
	})
	test.AssertHTTPStatus(t, &r, expectedStatus...)

	var response v1.DepositResponse
	test.DecodeResponse(t, &r, &response)

	return response
}

func (suite *TestSuiteStandard) TestTransactionsDeposit() {
	asset := createTestAsset(suite.T(), suite.co, v1.AssetEditable{Currency: "BTC"})
	goal := createTestGoal(suite.T(), suite.co, v1.GoalEditable{Currency: "USD"})
	setAllocations(suite.T(), suite.co, asset.Data.ID, map[uuid.UUID]decimal.Decimal{goal.Data.ID: decimal.NewFromInt(1)})

	response := deposit(suite.T(), suite.co, asset.Data.ID, "0.01", time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC))

	require.Nil(suite.T(), response.Error)
	d := response.Data
	assert.True(suite.T(), d.Transaction.Amount.Equal(decimal.RequireFromString("0.01")))
	assert.Equal(suite.T(), asset.Data.ID, d.Transaction.AssetID)
	assert.Empty(suite.T(), d.Skipped)

	require.Len(suite.T(), d.Contributions, 1)
	c := d.Contributions[0]
	assert.Equal(suite.T(), goal.Data.ID, c.GoalID)
	assert.True(suite.T(), c.Amount.Equal(decimal.NewFromInt(500)), "Amount is %s", c.Amount)
	assert.Equal(suite.T(), "$500.00", c.AmountFormatted)
	assert.True(suite.T(), c.ExchangeRate.Equal(decimal.NewFromInt(50000)))
	assert.True(suite.T(), c.AssetAmount.Equal(decimal.RequireFromString("0.01")))
	assert.Equal(suite.T(), "USD", c.Currency)
	assert.Equal(suite.T(), "BTC", c.AssetCurrency)

	// The only allocation covers the full asset, so its target follows the balance
	require.NotNil(suite.T(), d.AdjustedAllocation)
	assert.True(suite.T(), d.AdjustedAllocation.TargetAmount.Equal(decimal.RequireFromString("0.01")))

	// The balance includes the deposit
	r := test.Request(suite.T(), suite.co, http.MethodGet, asset.Data.Links.Self, "")
	var a v1.AssetResponse
	test.DecodeResponse(suite.T(), &r, &a)
	assert.Equal(suite.T(), "0.01 BTC", a.Data.BalanceFormatted)
}

func (suite *TestSuiteStandard) TestTransactionsDepositWithoutAllocations() {
	asset := createTestAsset(suite.T(), suite.co, v1.AssetEditable{})

	response := deposit(suite.T(), suite.co, asset.Data.ID, "1", time.Time{})
	assert.Len(suite.T(), response.Data.Contributions, 0)
	assert.NotNil(suite.T(), response.Data.Skipped)
	assert.Nil(suite.T(), response.Data.AdjustedAllocation)
	assert.False(suite.T(), response.Data.Transaction.Date.IsZero(), "Date defaults to now")
}

func (suite *TestSuiteStandard) TestTransactionsDepositFails() {
	asset := createTestAsset(suite.T(), suite.co, v1.AssetEditable{})

	tests := []struct {
		name   string
		path   string
		body   any
		status int
	}{
		{"Zero amount", depositsURL(asset.Data.ID), `{"amount": "0"}`, http.StatusBadRequest},
		{"Negative amount", depositsURL(asset.Data.ID), `{"amount": "-1"}`, http.StatusBadRequest},
		{"Invalid body", depositsURL(asset.Data.ID), `{"amount": true}`, http.StatusBadRequest},
		{"Empty body", depositsURL(asset.Data.ID), "", http.StatusBadRequest},
		{"Asset does not exist", depositsURL(uuid.New()), `{"amount": "1"}`, http.StatusNotFound},
		{"Invalid asset ID", "http://example.com/v1/assets/notaUUID/transactions", `{"amount": "1"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, suite.co, http.MethodPost, tt.path, tt.body)
			test.AssertHTTPStatus(t, &r, tt.status)

			var response v1.DepositResponse
			test.DecodeResponse(t, &r, &response)
			assert.NotNil(t, response.Error)
		})
	}
}

func (suite *TestSuiteStandard) TestTransactionsDepositSkips() {
	asset := createTestAsset(suite.T(), suite.co, v1.AssetEditable{Currency: "BTC"})
	usd := createTestGoal(suite.T(), suite.co, v1.GoalEditable{Currency: "USD"})
	eur := createTestGoal(suite.T(), suite.co, v1.GoalEditable{Currency: "EUR"})
	archived := createTestGoal(suite.T(), suite.co, v1.GoalEditable{Currency: "BTC", Archived: true})

	setAllocations(suite.T(), suite.co, asset.Data.ID, map[uuid.UUID]decimal.Decimal{
		usd.Data.ID:      decimal.RequireFromString("0.5"),
		eur.Data.ID:      decimal.RequireFromString("0.25"),
		archived.Data.ID: decimal.RequireFromString("0.25"),
	})

	response := deposit(suite.T(), suite.co, asset.Data.ID, "0.02", time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC))

	require.Len(suite.T(), response.Data.Contributions, 1)
	assert.Equal(suite.T(), usd.Data.ID, response.Data.Contributions[0].GoalID)
	assert.Nil(suite.T(), response.Data.AdjustedAllocation, "Assets allocated to several goals are never adjusted")

	reasons := make(map[uuid.UUID]string)
	for _, s := range response.Data.Skipped {
		reasons[s.GoalID] = s.Reason
	}
	assert.Equal(suite.T(), map[uuid.UUID]string{
		eur.Data.ID:      reconcile.OutcomeRateUnavailable,
		archived.Data.ID: reconcile.OutcomeGoalArchived,
	}, reasons)
}

func (suite *TestSuiteStandard) TestTransactionsReconcile() {
	asset := createTestAsset(suite.T(), suite.co, v1.AssetEditable{Currency: "BTC"})
	usd := createTestGoal(suite.T(), suite.co, v1.GoalEditable{Currency: "USD"})
	eur := createTestGoal(suite.T(), suite.co, v1.GoalEditable{Currency: "EUR"})

	setAllocations(suite.T(), suite.co, asset.Data.ID, map[uuid.UUID]decimal.Decimal{
		usd.Data.ID: decimal.RequireFromString("0.5"),
		eur.Data.ID: decimal.RequireFromString("0.5"),
	})

	response := deposit(suite.T(), suite.co, asset.Data.ID, "0.02", time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC))
	require.Len(suite.T(), response.Data.Contributions, 1)
	reconcileURL := response.Data.Transaction.Links.Reconcile

	// The EUR rate is available now
	co := controller(rates.NewStatic(map[rates.Pair]decimal.Decimal{
		rates.NewPair("BTC", "USD"): decimal.NewFromInt(50000),
		rates.NewPair("BTC", "EUR"): decimal.NewFromInt(46000),
	}))

	r := test.Request(suite.T(), co, http.MethodPost, reconcileURL, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var reconciled v1.DepositResponse
	test.DecodeResponse(suite.T(), &r, &reconciled)

	require.Len(suite.T(), reconciled.Data.Contributions, 1, "Only the missing contribution is created")
	c := reconciled.Data.Contributions[0]
	assert.Equal(suite.T(), eur.Data.ID, c.GoalID)
	assert.True(suite.T(), c.Amount.Equal(decimal.NewFromInt(460)), "Amount is %s", c.Amount)
	assert.Nil(suite.T(), reconciled.Data.AdjustedAllocation)

	// A second run has nothing left to do
	r = test.Request(suite.T(), co, http.MethodPost, reconcileURL, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &reconciled)
	assert.Len(suite.T(), reconciled.Data.Contributions, 0)

	// The transaction lists both contributions
	r = test.Request(suite.T(), co, http.MethodGet, response.Data.Transaction.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var detail v1.TransactionResponse
	test.DecodeResponse(suite.T(), &r, &detail)
	assert.Len(suite.T(), detail.Data.Contributions, 2)
}

func (suite *TestSuiteStandard) TestTransactionsReconcileNotFound() {
	tests := []struct {
		name   string
		id     string
		status int
	}{
		{"No transaction with this ID", uuid.New().String(), http.StatusNotFound},
		{"Invalid ID", "notaUUID", http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, suite.co, http.MethodPost, fmt.Sprintf("http://example.com/v1/transactions/%s/reconcile", tt.id), "")
			test.AssertHTTPStatus(t, &r, tt.status)

			r = test.Request(t, suite.co, http.MethodGet, fmt.Sprintf("http://example.com/v1/transactions/%s", tt.id), "")
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestTransactionsList() {
	asset := createTestAsset(suite.T(), suite.co, v1.AssetEditable{})

	deposit(suite.T(), suite.co, asset.Data.ID, "1", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	deposit(suite.T(), suite.co, asset.Data.ID, "2", time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC))
	deposit(suite.T(), suite.co, asset.Data.ID, "3", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))

	tests := []struct {
		name   string
		query  string
		first  string
		len    int
		limit  int
		offset uint
	}{
		{"All", "", "3", 3, 50, 0},
		{"Limit", "limit=2", "3", 2, 2, 0},
		{"Offset", "offset=1", "2", 2, 50, 1},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, suite.co, http.MethodGet, fmt.Sprintf("%s?%s", depositsURL(asset.Data.ID), tt.query), "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)

			var response v1.TransactionListResponse
			test.DecodeResponse(t, &r, &response)

			require.Len(t, response.Data, tt.len)
			assert.True(t, response.Data[0].Amount.Equal(decimal.RequireFromString(tt.first)), "Newest deposits come first")
			assert.Equal(t, int64(3), response.Pagination.Total)
			assert.Equal(t, tt.limit, response.Pagination.Limit)
			assert.Equal(t, tt.offset, response.Pagination.Offset)
		})
	}
}

func (suite *TestSuiteStandard) TestTransactionsDBClosed() {
	asset := createTestAsset(suite.T(), suite.co, v1.AssetEditable{})
	suite.CloseDB()

	response := deposit(suite.T(), suite.co, asset.Data.ID, "1", time.Time{}, http.StatusInternalServerError)
	assert.Contains(suite.T(), *response.Error, models.ErrGeneral.Error())
}
