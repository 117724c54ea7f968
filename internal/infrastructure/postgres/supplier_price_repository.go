package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-pro/internal/domain/entity"
	"github.com/jhoicas/ventas-pro/internal/domain/pricing"
)

var _ pricing.PurchaseCostGuesser = (*SupplierPriceRepo)(nil)

// SupplierPriceRepo estima el costo unitario de compra de un producto desde
// el pedido a proveedor más reciente, cuando la línea de venta no tiene
// lotes asignados. El flete se prorratea entre las unidades del pedido.
type SupplierPriceRepo struct {
	q Querier
}

// NewSupplierPriceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSupplierPriceRepository(q Querier) *SupplierPriceRepo {
	return &SupplierPriceRepo{q: q}
}

// Guess devuelve el costo unitario (neto o de flete, según shipping) del
// último pedido en la moneda dada. ok=false cuando no hay pedidos de los que
// estimar.
func (r *SupplierPriceRepo) Guess(product *entity.Product, currency string, shipping bool) (decimal.Decimal, bool, error) {
	query := `
		SELECT i.net_price, o.shipping_cost, totals.qty
		FROM supplier_order_items i
		JOIN supplier_orders o ON o.id = i.supplier_order_id
		JOIN LATERAL (
			SELECT SUM(quantity) AS qty
			FROM supplier_order_items
			WHERE supplier_order_id = o.id
		) totals ON true
		WHERE i.product_id = $1 AND o.currency = $2
		ORDER BY o.date DESC
		LIMIT 1`
	var netPrice, shippingCost, orderQty decimal.Decimal
	err := r.q.QueryRow(context.Background(), query, product.ID, currency).Scan(
		&netPrice, &shippingCost, &orderQty,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, fmt.Errorf("guess purchase cost: %w", err)
	}

	if !shipping {
		return netPrice, true, nil
	}
	if !orderQty.IsPositive() {
		return decimal.Zero, false, nil
	}
	return shippingCost.Div(orderQty), true, nil
}
