package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/ventas-pro/internal/domain/entity"
	"github.com/jhoicas/ventas-pro/internal/domain/repository"
)

var _ repository.SupplierOrderRepository = (*SupplierOrderRepo)(nil)

// SupplierOrderRepo implementación del puerto SupplierOrderRepository sobre
// PostgreSQL.
type SupplierOrderRepo struct {
	pool *pgxpool.Pool
}

// NewSupplierOrderRepository construye el adaptador.
func NewSupplierOrderRepository(pool *pgxpool.Pool) *SupplierOrderRepo {
	return &SupplierOrderRepo{pool: pool}
}

// Create persiste el pedido con sus líneas en una transacción.
func (r *SupplierOrderRepo) Create(order *entity.SupplierOrder, items []entity.SupplierOrderItem) error {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO supplier_orders (id, supplier_id, currency, shipping_cost, date)
		VALUES ($1, $2, $3, $4, $5)`,
		order.ID, nullIfEmpty(order.SupplierID), order.Currency, order.ShippingCost, order.Date,
	)
	if err != nil {
		return fmt.Errorf("insert supplier order: %w", err)
	}
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.New().String()
		}
		items[i].SupplierOrderID = order.ID
		_, err = tx.Exec(ctx, `
			INSERT INTO supplier_order_items (id, supplier_order_id, product_id, net_price, quantity)
			VALUES ($1, $2, $3, $4, $5)`,
			items[i].ID, order.ID, items[i].ProductID, items[i].NetPrice, items[i].Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert supplier order item: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetByID devuelve el pedido con sus líneas.
func (r *SupplierOrderRepo) GetByID(id string) (*entity.SupplierOrder, []entity.SupplierOrderItem, error) {
	ctx := context.Background()
	var o entity.SupplierOrder
	err := r.pool.QueryRow(ctx, `
		SELECT id, COALESCE(supplier_id, ''), currency, shipping_cost, date
		FROM supplier_orders WHERE id = $1`, id).Scan(
		&o.ID, &o.SupplierID, &o.Currency, &o.ShippingCost, &o.Date,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("get supplier order: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, supplier_order_id, product_id, net_price, quantity
		FROM supplier_order_items WHERE supplier_order_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("list supplier order items: %w", err)
	}
	defer rows.Close()
	var items []entity.SupplierOrderItem
	for rows.Next() {
		var it entity.SupplierOrderItem
		if err := rows.Scan(&it.ID, &it.SupplierOrderID, &it.ProductID, &it.NetPrice, &it.Quantity); err != nil {
			return nil, nil, fmt.Errorf("scan supplier order item: %w", err)
		}
		items = append(items, it)
	}
	return &o, items, rows.Err()
}

// CreateStockUnit persiste un lote de stock recibido.
func (r *SupplierOrderRepo) CreateStockUnit(unit *entity.StockUnit) error {
	if unit.ID == "" {
		unit.ID = uuid.New().String()
	}
	_, err := r.pool.Exec(context.Background(), `
		INSERT INTO stock_units (id, product_id, supplier_order_id, net_price, shipping_price, received_quantity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		unit.ID, unit.ProductID, nullIfEmpty(unit.SupplierOrderID),
		unit.NetPrice, unit.ShippingPrice, unit.ReceivedQuantity, unit.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock unit: %w", err)
	}
	return nil
}
