package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate tasa de cambio Base->Quote vigente a una fecha. El origen de
// las tasas es externo; aquí solo se consumen.
type ExchangeRate struct {
	Base  string
	Quote string
	Rate  decimal.Decimal
	Date  time.Time
}
