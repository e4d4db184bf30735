package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Asset is a currency-denominated holding, e.g. a savings account or a
// crypto wallet. Its balance is derived from its deposit transactions.
type Asset struct {
	DefaultModel
	Name           string          `gorm:"uniqueIndex"`
	Note           string
	Currency       string          // ISO 4217 code or a ticker like BTC
	InitialBalance decimal.Decimal `gorm:"type:DECIMAL(20,8)"` // Balance before the first recorded transaction
}

func (a *Asset) BeforeSave(_ *gorm.DB) error {
	a.Name = strings.TrimSpace(a.Name)
	a.Note = strings.TrimSpace(a.Note)
	a.Currency = NormalizeCurrency(a.Currency)

	if a.Currency == "" {
		return ErrCurrencyEmpty
	}

	return nil
}

// Balance returns the running balance of the asset: the initial balance
// plus all deposits.
func (a Asset) Balance(db *gorm.DB) (decimal.Decimal, error) {
	var amounts []decimal.Decimal

	err := db.
		Model(&Transaction{}).
		Where(&Transaction{AssetID: a.ID}).
		Pluck("amount", &amounts).Error
	if err != nil {
		return decimal.Zero, err
	}

	balance := a.InitialBalance
	for _, amount := range amounts {
		balance = balance.Add(amount)
	}

	return balance, nil
}

// Allocations returns all allocations of the asset, including those with
// a zero percentage.
func (a Asset) Allocations(db *gorm.DB) ([]Allocation, error) {
	var allocations []Allocation
	err := db.
		Preload("Goal").
		Where(&Allocation{AssetID: a.ID}).
		Find(&allocations).Error

	return allocations, err
}

// NormalizeCurrency trims and upper-cases a currency code.
func NormalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// assetByID loads an asset.
func assetByID(db *gorm.DB, id uuid.UUID) (Asset, error) {
	var asset Asset
	err := db.First(&asset, "id = ?", id).Error
	return asset, err
}
