package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SupplierOrder pedido de compra a un proveedor. Alimenta el estimador de
// costo cuando una línea de venta no tiene lotes asignados.
type SupplierOrder struct {
	ID           string
	SupplierID   string
	Currency     string
	ShippingCost decimal.Decimal // flete total del pedido
	Date         time.Time
}

// SupplierOrderItem línea de un pedido a proveedor.
type SupplierOrderItem struct {
	ID              string
	SupplierOrderID string
	ProductID       string
	NetPrice        decimal.Decimal // costo unitario neto pactado
	Quantity        decimal.Decimal
}
