package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// swagger:enum ContributionSource
type ContributionSource string

const (
	ContributionSourceManualDeposit ContributionSource = "manual_deposit"
	ContributionSourceCorrection    ContributionSource = "correction"
)

// Contribution is the part of a deposit that is attributed to one goal.
//
// Contributions are immutable. A wrong contribution is corrected by
// recording an offsetting one with the correction source.
type Contribution struct {
	DefaultModel
	MonthlyPlanID     uuid.UUID          `gorm:"index"`
	ExecutionRecordID uuid.UUID          `gorm:"index"`
	TransactionID     *uuid.UUID         `gorm:"uniqueIndex:contribution_transaction_goal"`
	Transaction       *Transaction       `json:"-" gorm:"constraint:OnDelete:SET NULL"`
	GoalID            uuid.UUID          `gorm:"uniqueIndex:contribution_transaction_goal"`
	AssetID           uuid.UUID          `gorm:"index"`
	Amount            decimal.Decimal    `gorm:"type:DECIMAL(20,8)"` // Amount in the currency of the goal
	AssetAmount       decimal.Decimal    `gorm:"type:DECIMAL(20,8)"` // Amount in the currency of the asset
	ExchangeRate      decimal.Decimal    `gorm:"type:DECIMAL(20,8)"` // Rate used to convert from the asset to the goal currency
	Currency          string             // Currency of the goal
	AssetCurrency     string             // Currency of the asset
	Source            ContributionSource // What created the contribution
	Date              time.Time          // Date of the transaction
	Note              string
}

// AfterFind enforces UTC for the contribution date.
func (c *Contribution) AfterFind(tx *gorm.DB) (err error) {
	err = c.DefaultModel.AfterFind(tx)
	if err != nil {
		return err
	}

	c.Date = c.Date.In(time.UTC)
	return
}

func (c *Contribution) BeforeSave(_ *gorm.DB) error {
	c.Note = strings.TrimSpace(c.Note)
	c.Currency = NormalizeCurrency(c.Currency)
	c.AssetCurrency = NormalizeCurrency(c.AssetCurrency)
	c.Date = c.Date.In(time.UTC)

	if c.Source == "" {
		c.Source = ContributionSourceManualDeposit
	}

	if c.Amount.IsZero() {
		return ErrContributionAmountZero
	}

	if c.Amount.IsNegative() && c.Source != ContributionSourceCorrection {
		return ErrContributionNegative
	}

	return nil
}

// BeforeUpdate rejects all updates.
func (c *Contribution) BeforeUpdate(_ *gorm.DB) error {
	return ErrContributionImmutable
}
