package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-pro/internal/domain/entity"
	"github.com/jhoicas/ventas-pro/internal/domain/pricing"
	"github.com/jhoicas/ventas-pro/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)
var _ pricing.InvoiceQuantityCalculator = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
// También sirve de calculador de cantidades facturadas para el calculador de
// márgenes: agrega las líneas por tipo de documento.
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Create persiste la cabecera de la factura o nota crédito.
func (r *InvoiceRepo) Create(invoice *entity.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoices (id, sale_id, number, type, currency, date, grand_total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		invoice.ID, invoice.SaleID, invoice.Number, invoice.Type, invoice.Currency,
		invoice.Date, invoice.GrandTotal, invoice.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invoice number already exists: %w", err)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// CreateLine persiste una línea referida a una línea de venta.
func (r *InvoiceRepo) CreateLine(line *entity.InvoiceLine) error {
	if line.ID == "" {
		line.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoice_lines (id, invoice_id, sale_item_id, quantity)
		VALUES ($1, $2, $3, $4)`
	_, err := r.q.Exec(context.Background(), query,
		line.ID, line.InvoiceID, line.SaleItemID, line.Quantity,
	)
	if err != nil {
		return fmt.Errorf("insert invoice line: %w", err)
	}
	return nil
}

// GetByID obtiene una factura por ID.
func (r *InvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	query := `
		SELECT id, sale_id, number, type, currency, date, grand_total, created_at
		FROM invoices WHERE id = $1`
	var inv entity.Invoice
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&inv.ID, &inv.SaleID, &inv.Number, &inv.Type, &inv.Currency,
		&inv.Date, &inv.GrandTotal, &inv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return &inv, nil
}

// ListBySale obtiene las facturas y notas crédito de una venta, en orden de
// emisión.
func (r *InvoiceRepo) ListBySale(saleID string) ([]*entity.Invoice, error) {
	query := `
		SELECT id, sale_id, number, type, currency, date, grand_total, created_at
		FROM invoices WHERE sale_id = $1 ORDER BY date, number`
	rows, err := r.q.Query(context.Background(), query, saleID)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		var inv entity.Invoice
		if err := rows.Scan(&inv.ID, &inv.SaleID, &inv.Number, &inv.Type, &inv.Currency,
			&inv.Date, &inv.GrandTotal, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, &inv)
	}
	return list, rows.Err()
}

// GetLinesByInvoiceID obtiene todas las líneas de una factura.
func (r *InvoiceRepo) GetLinesByInvoiceID(invoiceID string) ([]*entity.InvoiceLine, error) {
	query := `
		SELECT id, invoice_id, sale_item_id, quantity
		FROM invoice_lines WHERE invoice_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice lines: %w", err)
	}
	defer rows.Close()
	var list []*entity.InvoiceLine
	for rows.Next() {
		var l entity.InvoiceLine
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.SaleItemID, &l.Quantity); err != nil {
			return nil, fmt.Errorf("scan invoice line: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// InvoicedQuantity cantidad de la línea de venta sumada en facturas.
func (r *InvoiceRepo) InvoicedQuantity(item *entity.SaleItem) (decimal.Decimal, error) {
	return r.quantityByType(item.ID, entity.InvoiceTypeInvoice)
}

// CreditedQuantity cantidad de la línea de venta sumada en notas crédito.
func (r *InvoiceRepo) CreditedQuantity(item *entity.SaleItem) (decimal.Decimal, error) {
	return r.quantityByType(item.ID, entity.InvoiceTypeCredit)
}

func (r *InvoiceRepo) quantityByType(saleItemID, invoiceType string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(l.quantity), 0)
		FROM invoice_lines l
		JOIN invoices i ON i.id = l.invoice_id
		WHERE l.sale_item_id = $1 AND i.type = $2`
	var qty decimal.Decimal
	err := r.q.QueryRow(context.Background(), query, saleItemID, invoiceType).Scan(&qty)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum invoiced quantity: %w", err)
	}
	return qty, nil
}
