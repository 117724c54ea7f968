package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceLineRequest línea a facturar o acreditar, referida a una línea de
// venta.
type InvoiceLineRequest struct {
	SaleItemID string          `json:"sale_item_id" validate:"required,uuid"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// EmitInvoiceRequest body para POST /api/sales/:id/invoices. Sin líneas se
// factura la cantidad pendiente de todos los ítems públicos de primer nivel.
type EmitInvoiceRequest struct {
	Number string               `json:"number" validate:"omitempty,max=50"`
	Date   time.Time            `json:"date"`
	Lines  []InvoiceLineRequest `json:"lines" validate:"dive"`
}

// EmitCreditNoteRequest body para POST /api/sales/:id/credit-notes.
type EmitCreditNoteRequest struct {
	Number string               `json:"number" validate:"omitempty,max=50"`
	Date   time.Time            `json:"date"`
	Lines  []InvoiceLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// InvoiceLineResponse línea emitida.
type InvoiceLineResponse struct {
	ID         string          `json:"id"`
	SaleItemID string          `json:"sale_item_id"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// InvoiceResponse factura o nota crédito emitida sobre una venta.
type InvoiceResponse struct {
	ID         string                `json:"id"`
	SaleID     string                `json:"sale_id"`
	Number     string                `json:"number"`
	Type       string                `json:"type"`
	Currency   string                `json:"currency"`
	Date       string                `json:"date"`
	GrandTotal decimal.Decimal       `json:"grand_total"`
	Lines      []InvoiceLineResponse `json:"lines"`
}
