package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/ventas-pro/internal/domain/entity"
	"github.com/jhoicas/ventas-pro/internal/domain/pricing"
	"github.com/jhoicas/ventas-pro/internal/domain/repository"
)

var _ repository.StockAssignmentRepository = (*StockAssignmentRepo)(nil)
var _ pricing.StockAssignmentProvider = (*StockAssignmentRepo)(nil)

// StockAssignmentRepo implementación del puerto de asignaciones de stock
// (usable con pool o tx). Es el proveedor de costo exacto del calculador de
// costos: cada fila liga una línea de venta con un lote y su cantidad.
type StockAssignmentRepo struct {
	q Querier
}

// NewStockAssignmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockAssignmentRepository(q Querier) *StockAssignmentRepo {
	return &StockAssignmentRepo{q: q}
}

// ForSaleItem devuelve las asignaciones de la línea con su lote cargado en
// la misma consulta.
func (r *StockAssignmentRepo) ForSaleItem(item *entity.SaleItem) ([]entity.StockAssignment, error) {
	query := `
		SELECT a.id, a.sale_item_id, a.stock_unit_id, a.quantity,
		       u.id, u.product_id, u.supplier_order_id, u.net_price, u.shipping_price, u.received_quantity, u.created_at
		FROM stock_assignments a
		JOIN stock_units u ON u.id = a.stock_unit_id
		WHERE a.sale_item_id = $1
		ORDER BY u.created_at`
	rows, err := r.q.Query(context.Background(), query, item.ID)
	if err != nil {
		return nil, fmt.Errorf("list stock assignments: %w", err)
	}
	defer rows.Close()

	var list []entity.StockAssignment
	for rows.Next() {
		var a entity.StockAssignment
		var u entity.StockUnit
		if err := rows.Scan(&a.ID, &a.SaleItemID, &a.StockUnitID, &a.Quantity,
			&u.ID, &u.ProductID, &u.SupplierOrderID, &u.NetPrice, &u.ShippingPrice,
			&u.ReceivedQuantity, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock assignment: %w", err)
		}
		a.Unit = &u
		list = append(list, a)
	}
	return list, rows.Err()
}

// ListBySale devuelve todas las asignaciones de las líneas de la venta.
func (r *StockAssignmentRepo) ListBySale(saleID string) ([]entity.StockAssignment, error) {
	query := `
		SELECT a.id, a.sale_item_id, a.stock_unit_id, a.quantity,
		       u.id, u.product_id, u.supplier_order_id, u.net_price, u.shipping_price, u.received_quantity, u.created_at
		FROM stock_assignments a
		JOIN stock_units u ON u.id = a.stock_unit_id
		JOIN sale_items i ON i.id = a.sale_item_id
		WHERE i.sale_id = $1
		ORDER BY i.position, u.created_at`
	rows, err := r.q.Query(context.Background(), query, saleID)
	if err != nil {
		return nil, fmt.Errorf("list sale stock assignments: %w", err)
	}
	defer rows.Close()

	var list []entity.StockAssignment
	for rows.Next() {
		var a entity.StockAssignment
		var u entity.StockUnit
		if err := rows.Scan(&a.ID, &a.SaleItemID, &a.StockUnitID, &a.Quantity,
			&u.ID, &u.ProductID, &u.SupplierOrderID, &u.NetPrice, &u.ShippingPrice,
			&u.ReceivedQuantity, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock assignment: %w", err)
		}
		a.Unit = &u
		list = append(list, a)
	}
	return list, rows.Err()
}

// Create persiste una asignación.
func (r *StockAssignmentRepo) Create(assignment *entity.StockAssignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.New().String()
	}
	_, err := r.q.Exec(context.Background(), `
		INSERT INTO stock_assignments (id, sale_item_id, stock_unit_id, quantity)
		VALUES ($1, $2, $3, $4)`,
		assignment.ID, assignment.SaleItemID, assignment.StockUnitID, assignment.Quantity,
	)
	if err != nil {
		return fmt.Errorf("insert stock assignment: %w", err)
	}
	return nil
}
