package v1

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// display formats an amount in the currency for humans, e.g. "$1,234.50".
//
// Currencies that go-money does not know, e.g. crypto currencies, are
// formatted as the plain amount followed by the code.
func display(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return fmt.Sprintf("%s %s", amount.String(), currency)
	}

	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return money.New(minor.IntPart(), cur.Code).Display()
}
