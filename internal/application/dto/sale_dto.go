package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItemRequest línea de venta en una solicitud. Children anida el
// subárbol completo; las tasas llegan ya resueltas en porcentaje.
type SaleItemRequest struct {
	ProductID     string            `json:"product_id" validate:"omitempty,uuid"`
	Designation   string            `json:"designation" validate:"required,max=300"`
	UnitPrice     decimal.Decimal   `json:"unit_price"`
	Quantity      decimal.Decimal   `json:"quantity"`
	DiscountRates []decimal.Decimal `json:"discount_rates"`
	TaxRates      []decimal.Decimal `json:"tax_rates"`
	TaxGroupID    string            `json:"tax_group_id" validate:"omitempty"`
	Private       bool              `json:"private"`
	Compound      bool              `json:"compound"`
	Children      []SaleItemRequest `json:"children" validate:"dive"`
}

// SaleAdjustmentRequest ajuste global de la venta.
type SaleAdjustmentRequest struct {
	Designation string          `json:"designation" validate:"max=300"`
	Type        string          `json:"type" validate:"required,oneof=discount taxation"`
	Mode        string          `json:"mode" validate:"required,oneof=percent flat"`
	Amount      decimal.Decimal `json:"amount"`
}

// ShipmentRequest cargo de envío de la venta.
type ShipmentRequest struct {
	Designation string            `json:"designation" validate:"max=300"`
	Amount      decimal.Decimal   `json:"amount"`
	Cost        decimal.Decimal   `json:"cost"`
	TaxRates    []decimal.Decimal `json:"tax_rates"`
}

// CalculateQuoteRequest venta efímera para cotizar: se calcula sin persistir.
type CalculateQuoteRequest struct {
	Currency    string                  `json:"currency" validate:"required,len=3"`
	Items       []SaleItemRequest       `json:"items" validate:"required,min=1,dive"`
	Adjustments []SaleAdjustmentRequest `json:"adjustments" validate:"dive"`
	Shipment    *ShipmentRequest        `json:"shipment"`
}

// CreateSaleRequest entrada para crear una venta persistida.
type CreateSaleRequest struct {
	CustomerID  string                  `json:"customer_id" validate:"required,uuid"`
	Number      string                  `json:"number" validate:"omitempty,max=50"`
	Currency    string                  `json:"currency" validate:"required,len=3"`
	Date        time.Time               `json:"date"`
	Items       []SaleItemRequest       `json:"items" validate:"required,min=1,dive"`
	Adjustments []SaleAdjustmentRequest `json:"adjustments" validate:"dive"`
	Shipment    *ShipmentRequest        `json:"shipment"`
}

// UpdateSaleStatusRequest cambio de estado de una venta.
type UpdateSaleStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=quote accepted invoiced cancelled"`
}

// AdjustmentResponse tramo de descuento o impuesto en un resultado.
type AdjustmentResponse struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Rate   decimal.Decimal `json:"rate"`
}

// AmountResponse desglose de un monto finalizado.
type AmountResponse struct {
	Currency  string               `json:"currency"`
	Unit      decimal.Decimal      `json:"unit"`
	Gross     decimal.Decimal      `json:"gross"`
	Discount  decimal.Decimal      `json:"discount"`
	Base      decimal.Decimal      `json:"base"`
	Tax       decimal.Decimal      `json:"tax"`
	Total     decimal.Decimal      `json:"total"`
	Discounts []AdjustmentResponse `json:"discounts,omitempty"`
	Taxes     []AdjustmentResponse `json:"taxes,omitempty"`
}

// SaleAmountsResponse resultado completo del cálculo de una venta.
type SaleAmountsResponse struct {
	Gross    AmountResponse            `json:"gross"`
	Final    AmountResponse            `json:"final"`
	Shipment AmountResponse            `json:"shipment"`
	Items    map[string]AmountResponse `json:"items"`
}

// MarginResponse rentabilidad calculada. Average indica que alguna cifra de
// costo proviene de un promedio o una estimación.
type MarginResponse struct {
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
	Percent  decimal.Decimal `json:"percent"`
	Average  bool            `json:"average"`
}

// SaleItemResponse línea de venta persistida, con su subárbol.
type SaleItemResponse struct {
	ID            string             `json:"id"`
	ProductID     string             `json:"product_id,omitempty"`
	Designation   string             `json:"designation"`
	UnitPrice     decimal.Decimal    `json:"unit_price"`
	Quantity      decimal.Decimal    `json:"quantity"`
	DiscountRates []decimal.Decimal  `json:"discount_rates,omitempty"`
	TaxRates      []decimal.Decimal  `json:"tax_rates,omitempty"`
	TaxGroupID    string             `json:"tax_group_id,omitempty"`
	Private       bool               `json:"private"`
	Compound      bool               `json:"compound"`
	Children      []SaleItemResponse `json:"children,omitempty"`
}

// SaleResponse venta persistida.
type SaleResponse struct {
	ID         string             `json:"id"`
	CompanyID  string             `json:"company_id"`
	CustomerID string             `json:"customer_id"`
	Number     string             `json:"number"`
	Status     string             `json:"status"`
	Currency   string             `json:"currency"`
	Date       string             `json:"date"`
	Items      []SaleItemResponse `json:"items"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}
