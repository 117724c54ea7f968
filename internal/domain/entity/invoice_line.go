package entity

import "github.com/shopspring/decimal"

// InvoiceLine línea de una factura o nota crédito, referida a una línea de
// venta concreta.
type InvoiceLine struct {
	ID         string
	InvoiceID  string
	SaleItemID string
	Quantity   decimal.Decimal
}
