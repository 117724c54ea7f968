package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaveExchangeRateRequest body para PUT /api/exchange-rates.
type SaveExchangeRateRequest struct {
	Base  string          `json:"base" validate:"required,len=3"`
	Quote string          `json:"quote" validate:"required,len=3"`
	Rate  decimal.Decimal `json:"rate"`
	Date  time.Time       `json:"date"`
}

// ExchangeRateResponse tasa vigente de un par de monedas.
type ExchangeRateResponse struct {
	Base  string          `json:"base"`
	Quote string          `json:"quote"`
	Rate  decimal.Decimal `json:"rate"`
	Date  string          `json:"date"`
}
