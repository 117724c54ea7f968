package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockUnit lote de stock recibido de un pedido a proveedor, con su costo
// unitario de compra y el flete prorrateado por unidad.
type StockUnit struct {
	ID               string
	ProductID        string
	SupplierOrderID  string
	NetPrice         decimal.Decimal // costo unitario neto de compra
	ShippingPrice    decimal.Decimal // flete unitario prorrateado del pedido
	ReceivedQuantity decimal.Decimal
	CreatedAt        time.Time
}

// StockAssignment asigna una cantidad de un lote a una línea de venta.
// Es la fuente primaria de costo del calculador de costos.
type StockAssignment struct {
	ID          string
	SaleItemID  string
	StockUnitID string
	Quantity    decimal.Decimal // cantidad vendida tomada de este lote
	Unit        *StockUnit      // lote cargado junto con la asignación
}
