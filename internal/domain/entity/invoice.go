package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de documento de facturación sobre una venta.
const (
	InvoiceTypeInvoice = "invoice" // factura
	InvoiceTypeCredit  = "credit"  // nota crédito
)

// Invoice documento de facturación emitido sobre una venta. El calculador
// de márgenes lo usa para restringir los montos a la cantidad realmente
// facturada o acreditada.
type Invoice struct {
	ID         string
	SaleID     string
	Number     string
	Type       string // InvoiceTypeInvoice | InvoiceTypeCredit
	Currency   string
	Date       time.Time
	GrandTotal decimal.Decimal
	CreatedAt  time.Time
}
