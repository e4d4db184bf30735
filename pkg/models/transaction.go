package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction is a deposit into an Asset.
//
// Transactions are immutable: once recorded, they are never changed.
type Transaction struct {
	DefaultModel
	AssetID uuid.UUID       `gorm:"index"`
	Asset   Asset           `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Amount  decimal.Decimal `gorm:"type:DECIMAL(20,8)"` // Amount in the currency of the asset
	Date    time.Time       // Time of the deposit
	Note    string
}

// AfterFind updates the timestamps to use UTC as
// timezone, not +0000. Yes, this is different.
//
// We already store them in UTC, but somehow reading
// them from the database returns them as +0000.
func (t *Transaction) AfterFind(tx *gorm.DB) (err error) {
	err = t.DefaultModel.AfterFind(tx)
	if err != nil {
		return err
	}

	// Enforce dates to be in UTC
	t.Date = t.Date.In(time.UTC)
	return
}

// BeforeSave
//   - trims whitespace from the note
//   - sets the timezone for the Date to UTC, defaulting to now
//   - ensures the amount is positive
func (t *Transaction) BeforeSave(_ *gorm.DB) error {
	t.Note = strings.TrimSpace(t.Note)

	if t.Date.IsZero() {
		t.Date = time.Now().In(time.UTC)
	} else {
		t.Date = t.Date.In(time.UTC)
	}

	if !t.Amount.IsPositive() {
		return ErrTransactionAmount
	}

	return nil
}

// BeforeUpdate rejects all updates.
func (t *Transaction) BeforeUpdate(_ *gorm.DB) error {
	return ErrTransactionImmutable
}
