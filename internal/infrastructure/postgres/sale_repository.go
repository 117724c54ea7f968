package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/ventas-pro/internal/domain"
	"github.com/jhoicas/ventas-pro/internal/domain/entity"
	"github.com/jhoicas/ventas-pro/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación del puerto SaleRepository sobre PostgreSQL.
// Escribe y recompone el árbol de ítems completo: las filas de sale_items
// guardan parent_id y position, la jerarquía se reconstruye en memoria.
type SaleRepo struct {
	pool *pgxpool.Pool
}

// NewSaleRepository construye el adaptador de persistencia para ventas.
func NewSaleRepository(pool *pgxpool.Pool) *SaleRepo {
	return &SaleRepo{pool: pool}
}

// Create persiste la venta completa en una transacción: cabecera, árbol de
// ítems, ajustes globales y envío.
func (r *SaleRepo) Create(sale *entity.Sale) error {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if sale.ID == "" {
		sale.ID = uuid.New().String()
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO sales (id, company_id, customer_id, number, status, currency, date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		sale.ID, sale.CompanyID, sale.CustomerID, sale.Number, sale.Status,
		sale.Currency, sale.Date, sale.CreatedAt, sale.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert sale: %w", err)
	}

	for _, item := range sale.Items {
		if err := insertItemTree(ctx, tx, sale.ID, "", item); err != nil {
			return err
		}
	}
	for i, adj := range sale.Adjustments {
		if adj.ID == "" {
			adj.ID = uuid.New().String()
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO sale_adjustments (id, sale_id, designation, type, mode, amount, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			adj.ID, sale.ID, adj.Designation, adj.Type, adj.Mode, adj.Amount, i,
		)
		if err != nil {
			return fmt.Errorf("insert sale adjustment: %w", err)
		}
		sale.Adjustments[i].ID = adj.ID
		sale.Adjustments[i].Position = i
	}
	if sale.Shipment != nil {
		_, err = tx.Exec(ctx, `
			INSERT INTO sale_shipments (sale_id, designation, amount, cost, tax_rates)
			VALUES ($1, $2, $3, $4, $5)`,
			sale.ID, sale.Shipment.Designation, sale.Shipment.Amount,
			sale.Shipment.Cost, sale.Shipment.TaxRates,
		)
		if err != nil {
			return fmt.Errorf("insert sale shipment: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// insertItemTree inserta un ítem y recursivamente sus hijos.
func insertItemTree(ctx context.Context, tx pgx.Tx, saleID, parentID string, item *entity.SaleItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	item.SaleID = saleID
	item.ParentID = parentID
	_, err := tx.Exec(ctx, `
		INSERT INTO sale_items (id, sale_id, parent_id, product_id, designation, unit_price, quantity, discount_rates, tax_rates, tax_group_id, private, compound, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		item.ID, saleID, nullIfEmpty(parentID), nullIfEmpty(item.ProductID),
		item.Designation, item.UnitPrice, item.Quantity,
		item.DiscountRates, item.TaxRates, nullIfEmpty(item.TaxGroupID),
		item.Private, item.Compound, item.Position,
	)
	if err != nil {
		return fmt.Errorf("insert sale item: %w", err)
	}
	for _, child := range item.Children {
		if err := insertItemTree(ctx, tx, saleID, item.ID, child); err != nil {
			return err
		}
	}
	return nil
}

// GetByID obtiene la venta con el árbol de ítems recompuesto.
func (r *SaleRepo) GetByID(id string) (*entity.Sale, error) {
	ctx := context.Background()
	query := `
		SELECT id, company_id, customer_id, number, status, currency, date, created_at, updated_at
		FROM sales WHERE id = $1`
	var s entity.Sale
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.CompanyID, &s.CustomerID, &s.Number, &s.Status,
		&s.Currency, &s.Date, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}

	items, err := r.loadItems(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	s.Items = items

	adjustments, err := r.loadAdjustments(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	s.Adjustments = adjustments

	shipment, err := r.loadShipment(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	s.Shipment = shipment

	return &s, nil
}

// loadItems lee las filas planas y recompone la jerarquía por parent_id,
// ordenando cada nivel por position.
func (r *SaleRepo) loadItems(ctx context.Context, saleID string) ([]*entity.SaleItem, error) {
	query := `
		SELECT id, sale_id, COALESCE(parent_id, ''), COALESCE(product_id, ''), designation,
		       unit_price, quantity, discount_rates, tax_rates, COALESCE(tax_group_id, ''),
		       private, compound, position
		FROM sale_items WHERE sale_id = $1`
	rows, err := r.pool.Query(ctx, query, saleID)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*entity.SaleItem)
	var all []*entity.SaleItem
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ParentID, &it.ProductID, &it.Designation,
			&it.UnitPrice, &it.Quantity, &it.DiscountRates, &it.TaxRates, &it.TaxGroupID,
			&it.Private, &it.Compound, &it.Position); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		byID[it.ID] = &it
		all = append(all, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var roots []*entity.SaleItem
	for _, it := range all {
		if it.ParentID == "" {
			roots = append(roots, it)
			continue
		}
		parent, ok := byID[it.ParentID]
		if !ok {
			return nil, fmt.Errorf("sale item %s: parent %s not found: %w", it.ID, it.ParentID, domain.ErrInvalidInput)
		}
		parent.Children = append(parent.Children, it)
	}
	sortItems(roots)
	for _, it := range all {
		sortItems(it.Children)
	}
	return roots, nil
}

func sortItems(items []*entity.SaleItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Position < items[j].Position
	})
}

func (r *SaleRepo) loadAdjustments(ctx context.Context, saleID string) ([]entity.SaleAdjustment, error) {
	query := `
		SELECT id, sale_id, designation, type, mode, amount, position
		FROM sale_adjustments WHERE sale_id = $1 ORDER BY position`
	rows, err := r.pool.Query(ctx, query, saleID)
	if err != nil {
		return nil, fmt.Errorf("list sale adjustments: %w", err)
	}
	defer rows.Close()
	var list []entity.SaleAdjustment
	for rows.Next() {
		var a entity.SaleAdjustment
		if err := rows.Scan(&a.ID, &a.SaleID, &a.Designation, &a.Type, &a.Mode, &a.Amount, &a.Position); err != nil {
			return nil, fmt.Errorf("scan sale adjustment: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func (r *SaleRepo) loadShipment(ctx context.Context, saleID string) (*entity.Shipment, error) {
	query := `
		SELECT sale_id, designation, amount, cost, tax_rates
		FROM sale_shipments WHERE sale_id = $1`
	var sh entity.Shipment
	err := r.pool.QueryRow(ctx, query, saleID).Scan(
		&sh.SaleID, &sh.Designation, &sh.Amount, &sh.Cost, &sh.TaxRates,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale shipment: %w", err)
	}
	return &sh, nil
}

// ListByCompany lista ventas por empresa con paginación (solo cabeceras).
func (r *SaleRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Sale, error) {
	query := `
		SELECT id, company_id, customer_id, number, status, currency, date, created_at, updated_at
		FROM sales WHERE company_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(context.Background(), query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	var list []*entity.Sale
	for rows.Next() {
		var s entity.Sale
		if err := rows.Scan(&s.ID, &s.CompanyID, &s.CustomerID, &s.Number, &s.Status,
			&s.Currency, &s.Date, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// UpdateStatus cambia el estado de la venta.
func (r *SaleRepo) UpdateStatus(id, status string) error {
	cmd, err := r.pool.Exec(context.Background(),
		`UPDATE sales SET status = $2, updated_at = now() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("update sale status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
