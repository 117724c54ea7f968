package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-pro/internal/domain"
	"github.com/jhoicas/ventas-pro/internal/domain/entity"
	"github.com/jhoicas/ventas-pro/internal/domain/pricing"
)

// ──────────────────────────────────────────────────────────────────────────────
// Colaboradores falsos
// ──────────────────────────────────────────────────────────────────────────────

type fakeInvoices struct {
	invoiced map[string]decimal.Decimal
	credited map[string]decimal.Decimal
}

func (f *fakeInvoices) InvoicedQuantity(item *entity.SaleItem) (decimal.Decimal, error) {
	return f.invoiced[item.ID], nil
}

func (f *fakeInvoices) CreditedQuantity(item *entity.SaleItem) (decimal.Decimal, error) {
	return f.credited[item.ID], nil
}

type fakeConverter struct {
	rate decimal.Decimal
}

func (f *fakeConverter) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	return amount.Mul(f.rate), nil
}

func marginCalculator(assignments *fakeAssignments, invoices pricing.InvoiceQuantityCalculator, converter pricing.CurrencyConverter) *pricing.MarginCalculator {
	var provider pricing.StockAssignmentProvider
	if assignments != nil {
		provider = assignments
	}
	amounts := pricing.NewAmountCalculator()
	costs := pricing.NewCostCalculator(provider, nil, nil)
	return pricing.NewMarginCalculator(amounts, costs, invoices, converter)
}

// ──────────────────────────────────────────────────────────────────────────────
// Margen por ítem
// ──────────────────────────────────────────────────────────────────────────────

func TestMarginCalculator_ItemSimple(t *testing.T) {
	it := item("it-1", "Línea", "100", "1")
	assignments := &fakeAssignments{byItem: map[string][]entity.StockAssignment{
		"it-1": {assignment("1", "60", "0")},
	}}

	calc := marginCalculator(assignments, nil, nil)
	margin, err := calc.CalculateSaleItem(it, "EUR")
	require.NoError(t, err)

	assertDecimal(t, "40", margin.Amount)
	assertDecimal(t, "40", margin.Percent, "porcentaje sobre el ingreso, no sobre el costo")
	assert.False(t, margin.Average)
}

func TestMarginCalculator_ElMargenUsaLaBaseSinImpuestos(t *testing.T) {
	it := item("it-1", "Línea", "100", "1")
	it.TaxRates = rates("19")
	assignments := &fakeAssignments{byItem: map[string][]entity.StockAssignment{
		"it-1": {assignment("1", "60", "0")},
	}}

	calc := marginCalculator(assignments, nil, nil)
	margin, err := calc.CalculateSaleItem(it, "EUR")
	require.NoError(t, err)

	// El IVA no es ingreso del vendedor: el margen se calcula sobre 100.
	assertDecimal(t, "40", margin.Amount)
}

func TestMarginCalculator_CostoEstimadoMarcaElMargen(t *testing.T) {
	it := item("it-1", "Línea", "100", "2")
	it.ProductID = "prod-1"
	resolver := &fakeResolver{byItem: map[string]*entity.Product{
		"it-1": {ID: "prod-1", SKU: "SKU-1"},
	}}
	guesser := &fakeGuesser{unit: dec("30"), ok: true}

	amounts := pricing.NewAmountCalculator()
	costs := pricing.NewCostCalculator(&fakeAssignments{}, resolver, guesser)
	calc := pricing.NewMarginCalculator(amounts, costs, nil, nil)

	margin, err := calc.CalculateSaleItem(it, "EUR")
	require.NoError(t, err)
	assertDecimal(t, "140", margin.Amount)
	assert.True(t, margin.Average, "un costo estimado produce un margen estimado")
}

func TestMarginCalculator_IngresoCeroDaPorcentajeCero(t *testing.T) {
	it := item("it-1", "Regalo", "0", "1")
	assignments := &fakeAssignments{byItem: map[string][]entity.StockAssignment{
		"it-1": {assignment("1", "5", "0")},
	}}

	calc := marginCalculator(assignments, nil, nil)
	margin, err := calc.CalculateSaleItem(it, "EUR")
	require.NoError(t, err)
	assertDecimal(t, "-5", margin.Amount)
	assert.True(t, margin.Percent.IsZero(), "sin ingreso el porcentaje no se define, se deja en cero")
}

// ──────────────────────────────────────────────────────────────────────────────
// Restricción a lo facturado
// ──────────────────────────────────────────────────────────────────────────────

func TestMarginCalculator_RestringeALaCantidadFacturada(t *testing.T) {
	it := item("it-1", "Línea", "100", "2")
	assignments := &fakeAssignments{byItem: map[string][]entity.StockAssignment{
		"it-1": {assignment("2", "60", "0")},
	}}
	invoices := &fakeInvoices{
		invoiced: map[string]decimal.Decimal{"it-1": dec("1")},
		credited: map[string]decimal.Decimal{},
	}

	calc := marginCalculator(assignments, invoices, nil)
	margin, err := calc.CalculateSaleItem(it, "EUR")
	require.NoError(t, err)

	// Solo la mitad facturada: ingreso 100, costo 60, margen 40.
	assertDecimal(t, "40", margin.Amount)
	assertDecimal(t, "40", margin.Percent)
}

func TestMarginCalculator_LoAcreditadoDescuentaDeLoFacturado(t *testing.T) {
	it := item("it-1", "Línea", "100", "2")
	assignments := &fakeAssignments{byItem: map[string][]entity.StockAssignment{
		"it-1": {assignment("2", "60", "0")},
	}}
	invoices := &fakeInvoices{
		invoiced: map[string]decimal.Decimal{"it-1": dec("2")},
		credited: map[string]decimal.Decimal{"it-1": dec("2")},
	}

	calc := marginCalculator(assignments, invoices, nil)
	margin, err := calc.CalculateSaleItem(it, "EUR")
	require.NoError(t, err)
	assert.True(t, margin.Amount.IsZero(), "todo acreditado: no hay margen que reportar")
}

func TestMarginCalculator_LaProporcionFacturadaSeAcotaAUno(t *testing.T) {
	it := item("it-1", "Línea", "100", "2")
	assignments := &fakeAssignments{byItem: map[string][]entity.StockAssignment{
		"it-1": {assignment("2", "60", "0")},
	}}
	invoices := &fakeInvoices{
		// Sobre-facturado por correcciones; nunca se amplifica el margen.
		invoiced: map[string]decimal.Decimal{"it-1": dec("5")},
		credited: map[string]decimal.Decimal{},
	}

	calc := marginCalculator(assignments, invoices, nil)
	margin, err := calc.CalculateSaleItem(it, "EUR")
	require.NoError(t, err)
	assertDecimal(t, "80", margin.Amount, "como máximo la venta completa: 200 - 120")
}

// ──────────────────────────────────────────────────────────────────────────────
// Margen de la venta y del envío
// ──────────────────────────────────────────────────────────────────────────────

func TestMarginCalculator_DescuentoGlobalReduceElIngreso(t *testing.T) {
	it := item("it-1", "Línea", "100", "1")
	sale := saleWith(it)
	sale.Adjustments = []entity.SaleAdjustment{{
		Designation: "Descuento comercial",
		Type:        entity.AdjustmentTypeDiscount,
		Mode:        entity.AdjustmentModePercent,
		Amount:      dec("10"),
	}}
	assignments := &fakeAssignments{byItem: map[string][]entity.StockAssignment{
		"it-1": {assignment("1", "60", "0")},
	}}

	calc := marginCalculator(assignments, nil, nil)
	margin, err := calc.CalculateSale(sale)
	require.NoError(t, err)

	// Ingreso 90 tras el descuento global, costo 60.
	assertDecimal(t, "30", margin.Amount)
	assertDecimal(t, "33.33", margin.Percent)
}

func TestMarginCalculator_EnvioConCostoDeTransportador(t *testing.T) {
	it := item("it-1", "Línea", "100", "1")
	sale := saleWith(it)
	sale.Shipment = &entity.Shipment{
		Designation: "Envío estándar",
		Amount:      dec("15.50"),
		Cost:        dec("10"),
		TaxRates:    rates("19"),
	}

	calc := marginCalculator(nil, nil, nil)
	margin, err := calc.CalculateSaleShipment(sale)
	require.NoError(t, err)
	require.NotNil(t, margin)

	assertDecimal(t, "5.5", margin.Amount)
	assertDecimal(t, "35.48", margin.Percent)
}

func TestMarginCalculator_SinEnvioElMargenDeEnvioEsNil(t *testing.T) {
	sale := saleWith(item("it-1", "Línea", "100", "1"))

	calc := marginCalculator(nil, nil, nil)
	margin, err := calc.CalculateSaleShipment(sale)
	require.NoError(t, err)
	assert.Nil(t, margin, "sin envío no aplica, que no es lo mismo que margen cero")
}

// ──────────────────────────────────────────────────────────────────────────────
// Conversión de moneda
// ──────────────────────────────────────────────────────────────────────────────

func TestMarginCalculator_ConvertMargin(t *testing.T) {
	converter := &fakeConverter{rate: dec("4000")}
	calc := marginCalculator(nil, nil, converter)

	margin := pricing.Margin{Amount: dec("40"), Percent: dec("40")}
	converted, err := calc.ConvertMargin(margin, "USD", "COP")
	require.NoError(t, err)
	assertDecimal(t, "160000", converted.Amount)
	assertDecimal(t, "40", converted.Percent, "el porcentaje es adimensional y no se convierte")
}

func TestMarginCalculator_ConvertMargin_MismaMonedaNoConvierte(t *testing.T) {
	calc := marginCalculator(nil, nil, nil)

	margin := pricing.Margin{Amount: dec("40"), Percent: dec("40")}
	same, err := calc.ConvertMargin(margin, "EUR", "EUR")
	require.NoError(t, err)
	assertDecimal(t, "40", same.Amount)
}

func TestMarginCalculator_ConvertMargin_SinConvertidorFalla(t *testing.T) {
	calc := marginCalculator(nil, nil, nil)

	_, err := calc.ConvertMargin(pricing.Margin{Amount: dec("40")}, "USD", "COP")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
