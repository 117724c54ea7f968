package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-pro/internal/application/dto"
	"github.com/jhoicas/ventas-pro/internal/domain"
	"github.com/jhoicas/ventas-pro/internal/domain/entity"
	"github.com/jhoicas/ventas-pro/internal/domain/pricing"
	"github.com/jhoicas/ventas-pro/internal/domain/repository"
	"github.com/jhoicas/ventas-pro/pkg/money"
)

// InvoicingTxRunner ejecuta la emisión (cabecera, líneas y eventual cambio de
// estado de la venta) dentro de una transacción.
type InvoicingTxRunner interface {
	RunInvoicing(ctx context.Context, fn func(
		invoices repository.InvoiceRepository,
		sales repository.SaleStatusWriter,
	) error) error
}

// InvoiceUseCase emite facturas y notas crédito sobre una venta aceptada.
// La facturación puede ser parcial: cada línea referencia una línea de venta
// y una cantidad. Cuando todos los ítems públicos de primer nivel quedan
// cubiertos, la venta pasa a "invoiced".
type InvoiceUseCase struct {
	saleRepo    repository.SaleRepository
	invoiceRepo repository.InvoiceRepository
	txRunner    InvoicingTxRunner
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(
	saleRepo repository.SaleRepository,
	invoiceRepo repository.InvoiceRepository,
	txRunner InvoicingTxRunner,
) *InvoiceUseCase {
	return &InvoiceUseCase{
		saleRepo:    saleRepo,
		invoiceRepo: invoiceRepo,
		txRunner:    txRunner,
	}
}

// EmitInvoice emite una factura sobre la venta. Sin líneas explícitas factura
// la cantidad pendiente de todos los ítems públicos de primer nivel. El total
// de la factura se deriva del cálculo de la venta, a prorrata de la cantidad
// facturada; el envío se carga completo en la primera factura.
func (uc *InvoiceUseCase) EmitInvoice(ctx context.Context, companyID, saleID string, in dto.EmitInvoiceRequest) (*dto.InvoiceResponse, error) {
	sale, err := uc.loadSale(companyID, saleID)
	if err != nil {
		return nil, err
	}
	if sale.Status != entity.SaleStatusAccepted && sale.Status != entity.SaleStatusInvoiced {
		return nil, domain.ErrConflict
	}

	roots := publicRootItems(sale)
	if len(roots) == 0 {
		return nil, domain.ErrInvalidInput
	}

	lines, err := uc.resolveInvoiceLines(roots, in.Lines)
	if err != nil {
		return nil, err
	}

	amounts, err := pricing.NewAmountCalculator().CalculateSale(sale)
	if err != nil {
		return nil, err
	}

	prior, err := uc.invoiceRepo.ListBySale(sale.ID)
	if err != nil {
		return nil, err
	}

	grandTotal := decimal.Zero
	for _, l := range lines {
		a, ok := amounts.Items[l.item.ID]
		if !ok || l.item.Quantity.IsZero() {
			continue
		}
		grandTotal = grandTotal.Add(a.Total.Mul(l.quantity).Div(l.item.Quantity))
	}
	if len(prior) == 0 {
		grandTotal = grandTotal.Add(amounts.Shipment.Total)
	}
	grandTotal = money.Round(grandTotal, sale.Currency)

	invoice, lineEntities := uc.buildDocument(sale, entity.InvoiceTypeInvoice, in.Number, in.Date, lines, grandTotal)

	fullyCovered, err := uc.coversRemaining(roots, lines)
	if err != nil {
		return nil, err
	}

	err = uc.txRunner.RunInvoicing(ctx, func(invoices repository.InvoiceRepository, sales repository.SaleStatusWriter) error {
		if err := invoices.Create(invoice); err != nil {
			return err
		}
		for _, l := range lineEntities {
			if err := invoices.CreateLine(l); err != nil {
				return err
			}
		}
		if fullyCovered && sale.Status == entity.SaleStatusAccepted {
			return sales.UpdateStatus(sale.ID, entity.SaleStatusInvoiced)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice, lineEntities), nil
}

// EmitCreditNote emite una nota crédito. Cada línea no puede exceder la
// cantidad facturada menos la ya acreditada.
func (uc *InvoiceUseCase) EmitCreditNote(ctx context.Context, companyID, saleID string, in dto.EmitCreditNoteRequest) (*dto.InvoiceResponse, error) {
	sale, err := uc.loadSale(companyID, saleID)
	if err != nil {
		return nil, err
	}
	if len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}

	byID := indexItems(sale.Items)
	amounts, err := pricing.NewAmountCalculator().CalculateSale(sale)
	if err != nil {
		return nil, err
	}

	var lines []resolvedLine
	grandTotal := decimal.Zero
	for _, l := range in.Lines {
		item, ok := byID[l.SaleItemID]
		if !ok {
			return nil, fmt.Errorf("línea de venta %s: %w", l.SaleItemID, domain.ErrNotFound)
		}
		if !l.Quantity.IsPositive() {
			return nil, domain.ErrInvalidInput
		}
		invoiced, err := uc.invoiceRepo.InvoicedQuantity(item)
		if err != nil {
			return nil, err
		}
		credited, err := uc.invoiceRepo.CreditedQuantity(item)
		if err != nil {
			return nil, err
		}
		if l.Quantity.GreaterThan(invoiced.Sub(credited)) {
			return nil, domain.ErrConflict
		}
		lines = append(lines, resolvedLine{item: item, quantity: l.Quantity})
		if a, ok := amounts.Items[item.ID]; ok && !item.Quantity.IsZero() {
			grandTotal = grandTotal.Add(a.Total.Mul(l.Quantity).Div(item.Quantity))
		}
	}
	grandTotal = money.Round(grandTotal, sale.Currency)

	invoice, lineEntities := uc.buildDocument(sale, entity.InvoiceTypeCredit, in.Number, in.Date, lines, grandTotal)

	err = uc.txRunner.RunInvoicing(ctx, func(invoices repository.InvoiceRepository, _ repository.SaleStatusWriter) error {
		if err := invoices.Create(invoice); err != nil {
			return err
		}
		for _, l := range lineEntities {
			if err := invoices.CreateLine(l); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice, lineEntities), nil
}

// GetInvoice devuelve la factura con sus líneas.
func (uc *InvoiceUseCase) GetInvoice(ctx context.Context, companyID, invoiceID string) (*dto.InvoiceResponse, error) {
	invoice, err := uc.invoiceRepo.GetByID(invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrNotFound
	}
	if _, err := uc.loadSale(companyID, invoice.SaleID); err != nil {
		return nil, err
	}
	lines, err := uc.invoiceRepo.GetLinesByInvoiceID(invoice.ID)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice, lines), nil
}

// ListBySale lista las facturas y notas crédito de una venta.
func (uc *InvoiceUseCase) ListBySale(ctx context.Context, companyID, saleID string) ([]*dto.InvoiceResponse, error) {
	if _, err := uc.loadSale(companyID, saleID); err != nil {
		return nil, err
	}
	invoices, err := uc.invoiceRepo.ListBySale(saleID)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		lines, err := uc.invoiceRepo.GetLinesByInvoiceID(inv.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, toInvoiceResponse(inv, lines))
	}
	return out, nil
}

// ── internos ──────────────────────────────────────────────────────────────────

type resolvedLine struct {
	item     *entity.SaleItem
	quantity decimal.Decimal
}

func (uc *InvoiceUseCase) loadSale(companyID, saleID string) (*entity.Sale, error) {
	sale, err := uc.saleRepo.GetByID(saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	if sale.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return sale, nil
}

// resolveInvoiceLines valida las líneas pedidas contra la cantidad pendiente,
// o factura todo lo pendiente si no se pidió ninguna.
func (uc *InvoiceUseCase) resolveInvoiceLines(roots []*entity.SaleItem, requested []dto.InvoiceLineRequest) ([]resolvedLine, error) {
	if len(requested) == 0 {
		var lines []resolvedLine
		for _, item := range roots {
			remaining, err := uc.remainingQuantity(item)
			if err != nil {
				return nil, err
			}
			if remaining.IsPositive() {
				lines = append(lines, resolvedLine{item: item, quantity: remaining})
			}
		}
		if len(lines) == 0 {
			return nil, domain.ErrConflict
		}
		return lines, nil
	}

	byID := make(map[string]*entity.SaleItem, len(roots))
	for _, item := range roots {
		byID[item.ID] = item
	}
	var lines []resolvedLine
	for _, l := range requested {
		item, ok := byID[l.SaleItemID]
		if !ok {
			return nil, fmt.Errorf("línea de venta %s: %w", l.SaleItemID, domain.ErrNotFound)
		}
		if !l.Quantity.IsPositive() {
			return nil, domain.ErrInvalidInput
		}
		remaining, err := uc.remainingQuantity(item)
		if err != nil {
			return nil, err
		}
		if l.Quantity.GreaterThan(remaining) {
			return nil, domain.ErrConflict
		}
		lines = append(lines, resolvedLine{item: item, quantity: l.Quantity})
	}
	return lines, nil
}

// remainingQuantity cantidad de la línea aún sin facturar (las notas crédito
// reabren cantidad).
func (uc *InvoiceUseCase) remainingQuantity(item *entity.SaleItem) (decimal.Decimal, error) {
	invoiced, err := uc.invoiceRepo.InvoicedQuantity(item)
	if err != nil {
		return decimal.Zero, err
	}
	credited, err := uc.invoiceRepo.CreditedQuantity(item)
	if err != nil {
		return decimal.Zero, err
	}
	return item.Quantity.Sub(invoiced.Sub(credited)), nil
}

// coversRemaining indica si tras emitir estas líneas todos los ítems públicos
// de primer nivel quedan completamente facturados.
func (uc *InvoiceUseCase) coversRemaining(roots []*entity.SaleItem, lines []resolvedLine) (bool, error) {
	emitted := make(map[string]decimal.Decimal, len(lines))
	for _, l := range lines {
		emitted[l.item.ID] = emitted[l.item.ID].Add(l.quantity)
	}
	for _, item := range roots {
		remaining, err := uc.remainingQuantity(item)
		if err != nil {
			return false, err
		}
		if remaining.Sub(emitted[item.ID]).IsPositive() {
			return false, nil
		}
	}
	return true, nil
}

func (uc *InvoiceUseCase) buildDocument(sale *entity.Sale, docType, number string, date time.Time, lines []resolvedLine, grandTotal decimal.Decimal) (*entity.Invoice, []*entity.InvoiceLine) {
	now := time.Now()
	if date.IsZero() {
		date = now
	}
	invoice := &entity.Invoice{
		ID:         uuid.New().String(),
		SaleID:     sale.ID,
		Number:     number,
		Type:       docType,
		Currency:   sale.Currency,
		Date:       date,
		GrandTotal: grandTotal,
		CreatedAt:  now,
	}
	out := make([]*entity.InvoiceLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, &entity.InvoiceLine{
			ID:         uuid.New().String(),
			InvoiceID:  invoice.ID,
			SaleItemID: l.item.ID,
			Quantity:   l.quantity,
		})
	}
	return invoice, out
}

func publicRootItems(sale *entity.Sale) []*entity.SaleItem {
	var out []*entity.SaleItem
	for _, item := range sale.Items {
		if !item.Private {
			out = append(out, item)
		}
	}
	return out
}

func indexItems(items []*entity.SaleItem) map[string]*entity.SaleItem {
	out := make(map[string]*entity.SaleItem)
	var walk func([]*entity.SaleItem)
	walk = func(list []*entity.SaleItem) {
		for _, it := range list {
			out[it.ID] = it
			walk(it.Children)
		}
	}
	walk(items)
	return out
}

func toInvoiceResponse(invoice *entity.Invoice, lines []*entity.InvoiceLine) *dto.InvoiceResponse {
	lineOut := make([]dto.InvoiceLineResponse, 0, len(lines))
	for _, l := range lines {
		lineOut = append(lineOut, dto.InvoiceLineResponse{
			ID:         l.ID,
			SaleItemID: l.SaleItemID,
			Quantity:   l.Quantity,
		})
	}
	return &dto.InvoiceResponse{
		ID:         invoice.ID,
		SaleID:     invoice.SaleID,
		Number:     invoice.Number,
		Type:       invoice.Type,
		Currency:   invoice.Currency,
		Date:       invoice.Date.Format("2006-01-02"),
		GrandTotal: invoice.GrandTotal,
		Lines:      lineOut,
	}
}
