package entity

import "github.com/shopspring/decimal"

// Shipment cargo de envío de una venta. Se calcula como una pseudo-línea:
// bruto = base (los descuentos de la venta no aplican al envío) más sus
// propios impuestos.
type Shipment struct {
	ID          string
	SaleID      string
	Designation string
	Amount      decimal.Decimal   // cargo neto de envío facturado al cliente
	Cost        decimal.Decimal   // costo del transportador para el vendedor
	TaxRates    []decimal.Decimal // impuestos del envío, si está gravado
}
