package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-pro/internal/domain/entity"
)

// InvoiceRepository define el puerto de persistencia para facturas y notas
// crédito emitidas sobre una venta.
type InvoiceRepository interface {
	Create(invoice *entity.Invoice) error
	CreateLine(line *entity.InvoiceLine) error
	GetByID(id string) (*entity.Invoice, error)
	ListBySale(saleID string) ([]*entity.Invoice, error)
	GetLinesByInvoiceID(invoiceID string) ([]*entity.InvoiceLine, error)
	// InvoicedQuantity suma las cantidades de la línea de venta en facturas;
	// CreditedQuantity hace lo propio en notas crédito.
	InvoicedQuantity(item *entity.SaleItem) (decimal.Decimal, error)
	CreditedQuantity(item *entity.SaleItem) (decimal.Decimal, error)
}
