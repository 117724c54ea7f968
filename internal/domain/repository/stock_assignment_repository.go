package repository

import "github.com/jhoicas/ventas-pro/internal/domain/entity"

// StockAssignmentRepository define el puerto de persistencia para las
// asignaciones de lotes de stock a líneas de venta.
type StockAssignmentRepository interface {
	// ForSaleItem devuelve las asignaciones de la línea con su lote cargado.
	ForSaleItem(item *entity.SaleItem) ([]entity.StockAssignment, error)
	ListBySale(saleID string) ([]entity.StockAssignment, error)
	Create(assignment *entity.StockAssignment) error
}
