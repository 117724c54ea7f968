package repository

import "github.com/jhoicas/ventas-pro/internal/domain/entity"

// SupplierOrderRepository define el puerto de persistencia para pedidos a
// proveedor y los lotes de stock que generan al recibirse.
type SupplierOrderRepository interface {
	// Create persiste el pedido con sus líneas en una sola transacción.
	Create(order *entity.SupplierOrder, items []entity.SupplierOrderItem) error
	// GetByID devuelve el pedido con sus líneas. nil sin error si no existe.
	GetByID(id string) (*entity.SupplierOrder, []entity.SupplierOrderItem, error)
	CreateStockUnit(unit *entity.StockUnit) error
}
