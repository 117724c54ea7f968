package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-pro/internal/application/dto"
	"github.com/jhoicas/ventas-pro/internal/application/usecase"
	"github.com/jhoicas/ventas-pro/internal/domain"
	"github.com/jhoicas/ventas-pro/internal/domain/entity"
	"github.com/jhoicas/ventas-pro/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Colaboradores falsos
// ──────────────────────────────────────────────────────────────────────────────

type fakeSaleStore struct {
	sales map[string]*entity.Sale
}

func (f *fakeSaleStore) Create(sale *entity.Sale) error {
	f.sales[sale.ID] = sale
	return nil
}

func (f *fakeSaleStore) GetByID(id string) (*entity.Sale, error) {
	return f.sales[id], nil
}

func (f *fakeSaleStore) ListByCompany(companyID string, limit, offset int) ([]*entity.Sale, error) {
	return nil, nil
}

func (f *fakeSaleStore) UpdateStatus(id, status string) error {
	sale, ok := f.sales[id]
	if !ok {
		return domain.ErrNotFound
	}
	sale.Status = status
	return nil
}

type fakeInvoiceStore struct {
	invoices []*entity.Invoice
	lines    []*entity.InvoiceLine
}

func (f *fakeInvoiceStore) Create(invoice *entity.Invoice) error {
	f.invoices = append(f.invoices, invoice)
	return nil
}

func (f *fakeInvoiceStore) CreateLine(line *entity.InvoiceLine) error {
	f.lines = append(f.lines, line)
	return nil
}

func (f *fakeInvoiceStore) GetByID(id string) (*entity.Invoice, error) {
	for _, inv := range f.invoices {
		if inv.ID == id {
			return inv, nil
		}
	}
	return nil, nil
}

func (f *fakeInvoiceStore) ListBySale(saleID string) ([]*entity.Invoice, error) {
	var out []*entity.Invoice
	for _, inv := range f.invoices {
		if inv.SaleID == saleID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (f *fakeInvoiceStore) GetLinesByInvoiceID(invoiceID string) ([]*entity.InvoiceLine, error) {
	var out []*entity.InvoiceLine
	for _, l := range f.lines {
		if l.InvoiceID == invoiceID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeInvoiceStore) InvoicedQuantity(item *entity.SaleItem) (decimal.Decimal, error) {
	return f.sumQuantity(item.ID, entity.InvoiceTypeInvoice), nil
}

func (f *fakeInvoiceStore) CreditedQuantity(item *entity.SaleItem) (decimal.Decimal, error) {
	return f.sumQuantity(item.ID, entity.InvoiceTypeCredit), nil
}

func (f *fakeInvoiceStore) sumQuantity(saleItemID, docType string) decimal.Decimal {
	types := make(map[string]string, len(f.invoices))
	for _, inv := range f.invoices {
		types[inv.ID] = inv.Type
	}
	total := decimal.Zero
	for _, l := range f.lines {
		if l.SaleItemID == saleItemID && types[l.InvoiceID] == docType {
			total = total.Add(l.Quantity)
		}
	}
	return total
}

type fakeTxRunner struct {
	invoices *fakeInvoiceStore
	sales    *fakeSaleStore
}

func (f *fakeTxRunner) RunInvoicing(ctx context.Context, fn func(
	invoices repository.InvoiceRepository,
	sales repository.SaleStatusWriter,
) error) error {
	return fn(f.invoices, f.sales)
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenario base: 32.59 × 3 con IVA 20% (total 117.32) y envío 15.50 al 19%
// (total 18.45).
// ──────────────────────────────────────────────────────────────────────────────

func ventaAceptada() *entity.Sale {
	return &entity.Sale{
		ID:        "sale-1",
		CompanyID: "co-1",
		Number:    "V-0001",
		Status:    entity.SaleStatusAccepted,
		Currency:  "EUR",
		Items: []*entity.SaleItem{
			{
				ID:          "it-1",
				Designation: "Servicio",
				UnitPrice:   decimal.RequireFromString("32.59"),
				Quantity:    decimal.NewFromInt(3),
				TaxRates:    []decimal.Decimal{decimal.NewFromInt(20)},
			},
		},
		Shipment: &entity.Shipment{
			Amount:   decimal.RequireFromString("15.50"),
			TaxRates: []decimal.Decimal{decimal.NewFromInt(19)},
		},
	}
}

func invoicingFixture(sale *entity.Sale) (*usecase.InvoiceUseCase, *fakeSaleStore, *fakeInvoiceStore) {
	sales := &fakeSaleStore{sales: map[string]*entity.Sale{sale.ID: sale}}
	invoices := &fakeInvoiceStore{}
	uc := usecase.NewInvoiceUseCase(sales, invoices, &fakeTxRunner{invoices: invoices, sales: sales})
	return uc, sales, invoices
}

// ──────────────────────────────────────────────────────────────────────────────
// Emisión de facturas
// ──────────────────────────────────────────────────────────────────────────────

func TestEmitInvoice_SinLineasFacturaTodoYCierraLaVenta(t *testing.T) {
	sale := ventaAceptada()
	uc, sales, _ := invoicingFixture(sale)

	out, err := uc.EmitInvoice(context.Background(), "co-1", "sale-1", dto.EmitInvoiceRequest{Number: "F-001"})
	require.NoError(t, err)

	// 117.32 de los ítems más 18.45 del envío, cargado completo en la primera.
	assert.Equal(t, "135.77", out.GrandTotal.StringFixed(2))
	require.Len(t, out.Lines, 1)
	assert.Equal(t, "3", out.Lines[0].Quantity.String())
	assert.Equal(t, entity.SaleStatusInvoiced, sales.sales["sale-1"].Status,
		"cubrir todo lo pendiente pasa la venta a facturada")
}

func TestEmitInvoice_ParcialDejaLaVentaAceptada(t *testing.T) {
	sale := ventaAceptada()
	uc, sales, _ := invoicingFixture(sale)

	out, err := uc.EmitInvoice(context.Background(), "co-1", "sale-1", dto.EmitInvoiceRequest{
		Lines: []dto.InvoiceLineRequest{{SaleItemID: "it-1", Quantity: decimal.NewFromInt(1)}},
	})
	require.NoError(t, err)

	// Un tercio de 117.32 más el envío completo: 39.1067 + 18.45 → 57.56.
	assert.Equal(t, "57.56", out.GrandTotal.StringFixed(2))
	assert.Equal(t, entity.SaleStatusAccepted, sales.sales["sale-1"].Status)
}

func TestEmitInvoice_LaSegundaFacturaNoRepiteElEnvio(t *testing.T) {
	sale := ventaAceptada()
	uc, sales, _ := invoicingFixture(sale)

	_, err := uc.EmitInvoice(context.Background(), "co-1", "sale-1", dto.EmitInvoiceRequest{
		Lines: []dto.InvoiceLineRequest{{SaleItemID: "it-1", Quantity: decimal.NewFromInt(1)}},
	})
	require.NoError(t, err)

	out, err := uc.EmitInvoice(context.Background(), "co-1", "sale-1", dto.EmitInvoiceRequest{})
	require.NoError(t, err)

	// Los dos tercios restantes sin envío: 78.21. Entre ambas suman 135.77.
	assert.Equal(t, "78.21", out.GrandTotal.StringFixed(2))
	assert.Equal(t, "2", out.Lines[0].Quantity.String())
	assert.Equal(t, entity.SaleStatusInvoiced, sales.sales["sale-1"].Status)
}

func TestEmitInvoice_CantidadMayorALaPendienteEsConflicto(t *testing.T) {
	uc, _, _ := invoicingFixture(ventaAceptada())

	_, err := uc.EmitInvoice(context.Background(), "co-1", "sale-1", dto.EmitInvoiceRequest{
		Lines: []dto.InvoiceLineRequest{{SaleItemID: "it-1", Quantity: decimal.NewFromInt(4)}},
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestEmitInvoice_CotizacionNoSePuedeFacturar(t *testing.T) {
	sale := ventaAceptada()
	sale.Status = entity.SaleStatusQuote
	uc, _, _ := invoicingFixture(sale)

	_, err := uc.EmitInvoice(context.Background(), "co-1", "sale-1", dto.EmitInvoiceRequest{})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestEmitInvoice_OtraEmpresaNoPuedeEmitir(t *testing.T) {
	uc, _, _ := invoicingFixture(ventaAceptada())

	_, err := uc.EmitInvoice(context.Background(), "co-ajena", "sale-1", dto.EmitInvoiceRequest{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestEmitInvoice_SinCantidadPendienteEsConflicto(t *testing.T) {
	uc, _, _ := invoicingFixture(ventaAceptada())

	_, err := uc.EmitInvoice(context.Background(), "co-1", "sale-1", dto.EmitInvoiceRequest{})
	require.NoError(t, err)

	_, err = uc.EmitInvoice(context.Background(), "co-1", "sale-1", dto.EmitInvoiceRequest{})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// ──────────────────────────────────────────────────────────────────────────────
// Notas crédito
// ──────────────────────────────────────────────────────────────────────────────

func TestEmitCreditNote_AcreditaAProrrata(t *testing.T) {
	uc, _, _ := invoicingFixture(ventaAceptada())

	_, err := uc.EmitInvoice(context.Background(), "co-1", "sale-1", dto.EmitInvoiceRequest{})
	require.NoError(t, err)

	out, err := uc.EmitCreditNote(context.Background(), "co-1", "sale-1", dto.EmitCreditNoteRequest{
		Number: "NC-001",
		Lines:  []dto.InvoiceLineRequest{{SaleItemID: "it-1", Quantity: decimal.NewFromInt(1)}},
	})
	require.NoError(t, err)

	assert.Equal(t, entity.InvoiceTypeCredit, out.Type)
	// Un tercio de 117.32; la nota crédito nunca acredita el envío.
	assert.Equal(t, "39.11", out.GrandTotal.StringFixed(2))
}

func TestEmitCreditNote_NoPuedeExcederLoFacturado(t *testing.T) {
	uc, _, _ := invoicingFixture(ventaAceptada())

	_, err := uc.EmitInvoice(context.Background(), "co-1", "sale-1", dto.EmitInvoiceRequest{
		Lines: []dto.InvoiceLineRequest{{SaleItemID: "it-1", Quantity: decimal.NewFromInt(1)}},
	})
	require.NoError(t, err)

	_, err = uc.EmitCreditNote(context.Background(), "co-1", "sale-1", dto.EmitCreditNoteRequest{
		Lines: []dto.InvoiceLineRequest{{SaleItemID: "it-1", Quantity: decimal.NewFromInt(2)}},
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestEmitCreditNote_ReabreCantidadParaFacturar(t *testing.T) {
	sale := ventaAceptada()
	uc, _, _ := invoicingFixture(sale)

	_, err := uc.EmitInvoice(context.Background(), "co-1", "sale-1", dto.EmitInvoiceRequest{})
	require.NoError(t, err)

	_, err = uc.EmitCreditNote(context.Background(), "co-1", "sale-1", dto.EmitCreditNoteRequest{
		Lines: []dto.InvoiceLineRequest{{SaleItemID: "it-1", Quantity: decimal.NewFromInt(1)}},
	})
	require.NoError(t, err)

	out, err := uc.EmitInvoice(context.Background(), "co-1", "sale-1", dto.EmitInvoiceRequest{})
	require.NoError(t, err)
	assert.Equal(t, "1", out.Lines[0].Quantity.String(), "la cantidad acreditada vuelve a estar pendiente")
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestListBySale_DevuelveFacturasYNotas(t *testing.T) {
	uc, _, _ := invoicingFixture(ventaAceptada())

	_, err := uc.EmitInvoice(context.Background(), "co-1", "sale-1", dto.EmitInvoiceRequest{})
	require.NoError(t, err)
	_, err = uc.EmitCreditNote(context.Background(), "co-1", "sale-1", dto.EmitCreditNoteRequest{
		Lines: []dto.InvoiceLineRequest{{SaleItemID: "it-1", Quantity: decimal.NewFromInt(1)}},
	})
	require.NoError(t, err)

	list, err := uc.ListBySale(context.Background(), "co-1", "sale-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, entity.InvoiceTypeInvoice, list[0].Type)
	assert.Equal(t, entity.InvoiceTypeCredit, list[1].Type)
}

func TestGetInvoice_Inexistente(t *testing.T) {
	uc, _, _ := invoicingFixture(ventaAceptada())

	_, err := uc.GetInvoice(context.Background(), "co-1", "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
