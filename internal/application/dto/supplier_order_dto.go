package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SupplierOrderItemRequest línea de un pedido a proveedor.
type SupplierOrderItemRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	NetPrice  decimal.Decimal `json:"net_price"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// CreateSupplierOrderRequest body para POST /api/supplier-orders.
type CreateSupplierOrderRequest struct {
	SupplierID   string                     `json:"supplier_id"`
	Currency     string                     `json:"currency" validate:"required,len=3"`
	ShippingCost decimal.Decimal            `json:"shipping_cost"`
	Date         time.Time                  `json:"date"`
	Items        []SupplierOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// SupplierOrderItemResponse línea de pedido en respuestas.
type SupplierOrderItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	NetPrice  decimal.Decimal `json:"net_price"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// SupplierOrderResponse pedido a proveedor.
type SupplierOrderResponse struct {
	ID           string                      `json:"id"`
	SupplierID   string                      `json:"supplier_id,omitempty"`
	Currency     string                      `json:"currency"`
	ShippingCost decimal.Decimal             `json:"shipping_cost"`
	Date         string                      `json:"date"`
	Items        []SupplierOrderItemResponse `json:"items"`
}

// StockUnitResponse lote de stock generado al recibir un pedido.
type StockUnitResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	SupplierOrderID  string          `json:"supplier_order_id,omitempty"`
	NetPrice         decimal.Decimal `json:"net_price"`
	ShippingPrice    decimal.Decimal `json:"shipping_price"`
	ReceivedQuantity decimal.Decimal `json:"received_quantity"`
}

// AssignStockRequest body para POST /api/sales/:id/stock-assignments: liga
// una cantidad de un lote a una línea de la venta.
type AssignStockRequest struct {
	SaleItemID  string          `json:"sale_item_id" validate:"required,uuid"`
	StockUnitID string          `json:"stock_unit_id" validate:"required,uuid"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// StockAssignmentResponse asignación persistida.
type StockAssignmentResponse struct {
	ID          string          `json:"id"`
	SaleItemID  string          `json:"sale_item_id"`
	StockUnitID string          `json:"stock_unit_id"`
	Quantity    decimal.Decimal `json:"quantity"`
}
