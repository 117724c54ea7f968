package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-pro/internal/domain/entity"
	"github.com/jhoicas/ventas-pro/internal/domain/pricing"
)

// ──────────────────────────────────────────────────────────────────────────────
// Colaboradores falsos
// ──────────────────────────────────────────────────────────────────────────────

type fakeAssignments struct {
	byItem map[string][]entity.StockAssignment
}

func (f *fakeAssignments) ForSaleItem(item *entity.SaleItem) ([]entity.StockAssignment, error) {
	return f.byItem[item.ID], nil
}

type fakeResolver struct {
	byItem map[string]*entity.Product
}

func (f *fakeResolver) Resolve(item *entity.SaleItem) (*entity.Product, error) {
	return f.byItem[item.ID], nil
}

type fakeGuesser struct {
	unit     decimal.Decimal
	shipping decimal.Decimal
	ok       bool
}

func (f *fakeGuesser) Guess(product *entity.Product, currency string, shipping bool) (decimal.Decimal, bool, error) {
	if shipping {
		return f.shipping, f.ok, nil
	}
	return f.unit, f.ok, nil
}

func assignment(qty, netPrice, shippingPrice string) entity.StockAssignment {
	return entity.StockAssignment{
		Quantity: dec(qty),
		Unit: &entity.StockUnit{
			NetPrice:      dec(netPrice),
			ShippingPrice: dec(shippingPrice),
		},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Costo desde lotes asignados
// ──────────────────────────────────────────────────────────────────────────────

func TestCostCalculator_UnSoloLoteEsCostoExacto(t *testing.T) {
	it := item("it-1", "Línea", "100", "2")
	assignments := &fakeAssignments{byItem: map[string][]entity.StockAssignment{
		"it-1": {assignment("2", "8", "0.50")},
	}}

	calc := pricing.NewCostCalculator(assignments, nil, nil)
	cost, err := calc.CalculateSaleItem(it, "EUR")
	require.NoError(t, err)

	assertDecimal(t, "16", cost.Product)
	assertDecimal(t, "1", cost.Supply)
	assert.False(t, cost.Average, "un solo lote produce un costo exacto, no promediado")
	assertDecimal(t, "17", cost.Total())
}

func TestCostCalculator_VariosLotesPromedianPonderado(t *testing.T) {
	it := item("it-1", "Línea", "100", "3")
	assignments := &fakeAssignments{byItem: map[string][]entity.StockAssignment{
		"it-1": {
			assignment("2", "10", "1"),
			assignment("1", "13", "1"),
		},
	}}

	calc := pricing.NewCostCalculator(assignments, nil, nil)
	cost, err := calc.CalculateSaleItem(it, "EUR")
	require.NoError(t, err)

	// (2×10 + 1×13) / 3 = 11 por unidad, × 3 vendidas = 33.
	assertDecimal(t, "33", cost.Product)
	assertDecimal(t, "3", cost.Supply)
	assert.True(t, cost.Average, "lotes con costos unitarios distintos marcan el promedio")
}

func TestCostCalculator_LotesConMismoCostoNoMarcanPromedio(t *testing.T) {
	it := item("it-1", "Línea", "100", "4")
	assignments := &fakeAssignments{byItem: map[string][]entity.StockAssignment{
		"it-1": {
			assignment("2", "10", "1"),
			assignment("2", "10", "1"),
		},
	}}

	calc := pricing.NewCostCalculator(assignments, nil, nil)
	cost, err := calc.CalculateSaleItem(it, "EUR")
	require.NoError(t, err)
	assertDecimal(t, "40", cost.Product)
	assert.False(t, cost.Average)
}

// ──────────────────────────────────────────────────────────────────────────────
// Estimación sin lotes
// ──────────────────────────────────────────────────────────────────────────────

func TestCostCalculator_SinLotesEstimaPorSujeto(t *testing.T) {
	it := item("it-1", "Línea", "100", "4")
	it.ProductID = "prod-1"

	resolver := &fakeResolver{byItem: map[string]*entity.Product{
		"it-1": {ID: "prod-1", SKU: "SKU-1"},
	}}
	guesser := &fakeGuesser{unit: dec("5"), shipping: dec("0.5"), ok: true}

	calc := pricing.NewCostCalculator(&fakeAssignments{}, resolver, guesser)
	cost, err := calc.CalculateSaleItem(it, "EUR")
	require.NoError(t, err)

	assertDecimal(t, "20", cost.Product)
	assertDecimal(t, "2", cost.Supply)
	assert.True(t, cost.Average, "toda estimación queda marcada como promedio")
}

func TestCostCalculator_SinColaboradoresElCostoEsCero(t *testing.T) {
	it := item("it-1", "Línea", "100", "4")

	calc := pricing.NewCostCalculator(nil, nil, nil)
	cost, err := calc.CalculateSaleItem(it, "EUR")
	require.NoError(t, err)
	assert.True(t, cost.Total().IsZero())
	assert.False(t, cost.Average)
}

func TestCostCalculator_EstimadorSinDatosProduceCero(t *testing.T) {
	it := item("it-1", "Línea", "100", "4")
	resolver := &fakeResolver{byItem: map[string]*entity.Product{
		"it-1": {ID: "prod-1", SKU: "SKU-1"},
	}}
	guesser := &fakeGuesser{ok: false}

	calc := pricing.NewCostCalculator(&fakeAssignments{}, resolver, guesser)
	cost, err := calc.CalculateSaleItem(it, "EUR")
	require.NoError(t, err)
	assert.True(t, cost.Total().IsZero())
	assert.False(t, cost.Average, "sin estimación no hay nada que marcar")
}

// ──────────────────────────────────────────────────────────────────────────────
// Agregación por árbol y venta
// ──────────────────────────────────────────────────────────────────────────────

func TestCostCalculator_CompuestoSoloSumaHijos(t *testing.T) {
	child := item("hijo", "Componente", "10", "1")
	compound := item("padre", "Paquete", "0", "1")
	compound.Compound = true
	compound.Children = []*entity.SaleItem{child}

	assignments := &fakeAssignments{byItem: map[string][]entity.StockAssignment{
		"hijo": {assignment("1", "6", "0")},
		// Aunque el compuesto tuviera lotes propios, no cuentan.
		"padre": {assignment("1", "99", "0")},
	}}

	calc := pricing.NewCostCalculator(assignments, nil, nil)
	cost, err := calc.CalculateSaleItem(compound, "EUR")
	require.NoError(t, err)
	assertDecimal(t, "6", cost.Product, "el compuesto es exclusivamente sus hijos")
}

func TestCostCalculator_PadreSumaLoPropioYLosHijos(t *testing.T) {
	child := item("hijo", "Accesorio", "10", "1")
	parent := item("padre", "Equipo", "50", "1")
	parent.Children = []*entity.SaleItem{child}

	assignments := &fakeAssignments{byItem: map[string][]entity.StockAssignment{
		"hijo":  {assignment("1", "6", "0")},
		"padre": {assignment("1", "30", "0")},
	}}

	calc := pricing.NewCostCalculator(assignments, nil, nil)
	cost, err := calc.CalculateSaleItem(parent, "EUR")
	require.NoError(t, err)
	assertDecimal(t, "36", cost.Product)
}

func TestCostCalculator_PromedioDeUnHijoContaminaAlPadre(t *testing.T) {
	child := item("hijo", "Accesorio", "10", "1")
	parent := item("padre", "Equipo", "50", "1")
	parent.Children = []*entity.SaleItem{child}

	assignments := &fakeAssignments{byItem: map[string][]entity.StockAssignment{
		"hijo": {
			assignment("1", "6", "0"),
			assignment("1", "8", "0"),
		},
		"padre": {assignment("1", "30", "0")},
	}}

	calc := pricing.NewCostCalculator(assignments, nil, nil)
	cost, err := calc.CalculateSaleItem(parent.Children[0], "EUR")
	require.NoError(t, err)
	require.True(t, cost.Average)

	parentCost, err := calc.CalculateSaleItem(parent, "EUR")
	require.NoError(t, err)
	assert.True(t, parentCost.Average, "la marca sube con OR y nunca se limpia")
}

func TestCostCalculator_VentaConEnvioSumaCostoDelTransportador(t *testing.T) {
	it := item("it-1", "Línea", "100", "1")
	sale := saleWith(it)
	sale.Shipment = &entity.Shipment{
		Amount:   dec("15.50"),
		Cost:     dec("10"),
		TaxRates: rates("19"),
	}

	assignments := &fakeAssignments{byItem: map[string][]entity.StockAssignment{
		"it-1": {assignment("1", "60", "0")},
	}}

	calc := pricing.NewCostCalculator(assignments, nil, nil)
	cost, err := calc.CalculateSale(sale, sale.Currency)
	require.NoError(t, err)
	assertDecimal(t, "60", cost.Product)
	assertDecimal(t, "10", cost.Shipment)
	assertDecimal(t, "70", cost.Total())

	shipmentCost := calc.CalculateSaleShipment(sale)
	assertDecimal(t, "10", shipmentCost.Shipment)
}

func TestCostCalculator_SinEnvioElCostoDeEnvioEsCero(t *testing.T) {
	sale := saleWith(item("it-1", "Línea", "100", "1"))

	calc := pricing.NewCostCalculator(nil, nil, nil)
	assert.True(t, calc.CalculateSaleShipment(sale).Total().IsZero())
}
