package models

import (
	"errors"
)

var (
	ErrGeneral          = errors.New("an error occurred on the server during your request")
	ErrResourceNotFound = errors.New("there is no")
)

// Validation errors for entities.
var (
	ErrCurrencyEmpty          = errors.New("a currency code must be set")
	ErrGoalAmountNotPositive  = errors.New("goal target amounts must be larger than zero")
	ErrGoalNameNotUnique      = errors.New("the goal name must be unique")
	ErrAssetNameNotUnique     = errors.New("the asset name must be unique")
	ErrTransactionAmount      = errors.New("transaction amounts must be larger than zero")
	ErrTransactionImmutable   = errors.New("transactions can not be changed once they are recorded")
	ErrContributionImmutable  = errors.New("contributions can not be changed once they are recorded")
	ErrContributionAmountZero = errors.New("contribution amounts must be non-zero")
	ErrContributionNegative   = errors.New("only corrections can have negative amounts")
	ErrContributionDuplicate  = errors.New("the transaction already has a contribution for this goal")
)

// ErrInvalidAllocation is returned when an allocation set is rejected, e.g.
// because its percentages add up to more than 100%.
var ErrInvalidAllocation = errors.New("invalid allocation")
