package entity

import "github.com/shopspring/decimal"

// AdjustmentType tipo de un ajuste a nivel de venta.
type AdjustmentType string

// AdjustmentMode modo de aplicación de un ajuste.
type AdjustmentMode string

const (
	AdjustmentTypeDiscount AdjustmentType = "discount"
	AdjustmentTypeTaxation AdjustmentType = "taxation"

	AdjustmentModePercent AdjustmentMode = "percent" // Amount es una tasa %
	AdjustmentModeFlat    AdjustmentMode = "flat"    // Amount es un monto fijo
)

// SaleAdjustment ajuste global de la venta (descuento comercial, impuesto o
// recargo aplicado sobre el agregado de los ítems, no sobre una línea).
type SaleAdjustment struct {
	ID          string
	SaleID      string
	Designation string
	Type        AdjustmentType
	Mode        AdjustmentMode
	Amount      decimal.Decimal // tasa en modo percent, monto fijo en modo flat
	Position    int
}
