package services

import "github.com/shopspring/decimal"

func parseDecimal(raw string) (decimal.Decimal, error) {
	return decimal.NewFromString(raw)
}
