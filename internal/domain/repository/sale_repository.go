package repository

import "github.com/jhoicas/ventas-pro/internal/domain/entity"

// SaleRepository define el puerto de persistencia para Sale y su árbol de
// ítems (DIP).
type SaleRepository interface {
	// Create persiste la venta completa: cabecera, árbol de ítems, ajustes
	// globales y envío, en una sola transacción.
	Create(sale *entity.Sale) error
	// GetByID devuelve la venta con su árbol de ítems recompuesto (hijos
	// colgados de su padre, en orden de posición). nil sin error si no existe.
	GetByID(id string) (*entity.Sale, error)
	ListByCompany(companyID string, limit, offset int) ([]*entity.Sale, error)
	UpdateStatus(id, status string) error
}

// SaleStatusWriter puerto mínimo para cambiar el estado de una venta dentro
// de una transacción de facturación.
type SaleStatusWriter interface {
	UpdateStatus(id, status string) error
}
