package pricing_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-pro/internal/domain"
	"github.com/jhoicas/ventas-pro/internal/domain/entity"
	"github.com/jhoicas/ventas-pro/internal/domain/pricing"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de construcción de árboles de venta
// ──────────────────────────────────────────────────────────────────────────────

func rates(ss ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(ss))
	for _, s := range ss {
		out = append(out, dec(s))
	}
	return out
}

func item(id, designation, unitPrice, quantity string) *entity.SaleItem {
	return &entity.SaleItem{
		ID:          id,
		Designation: designation,
		UnitPrice:   dec(unitPrice),
		Quantity:    dec(quantity),
	}
}

func saleWith(items ...*entity.SaleItem) *entity.Sale {
	return &entity.Sale{ID: "venta-1", Currency: "EUR", Items: items}
}

func sumOf(adjs []pricing.Adjustment) decimal.Decimal {
	sum := decimal.Zero
	for _, a := range adjs {
		sum = sum.Add(a.Amount)
	}
	return sum
}

// ──────────────────────────────────────────────────────────────────────────────
// Línea simple: cascada de descuentos e impuestos en paralelo
// ──────────────────────────────────────────────────────────────────────────────

// Vector de referencia: unitario 32.59 × 3, descuento 7%, IVA 20% →
// bruto 97.77, descuento 6.84, base 90.93, impuesto 18.19, total 109.12.
func TestCalculateSaleItem_VectorReferencia(t *testing.T) {
	it := item("it-1", "Línea 1", "32.59", "3")
	it.DiscountRates = rates("7")
	it.TaxRates = rates("20")

	calc := pricing.NewAmountCalculator()
	amount, err := calc.CalculateSaleItem(it, "EUR")
	require.NoError(t, err)

	assertDecimal(t, "32.59", amount.Unit)
	assertDecimal(t, "97.77", amount.Gross)
	assertDecimal(t, "6.84", amount.Discount)
	assertDecimal(t, "90.93", amount.Base)
	assertDecimal(t, "18.19", amount.Tax)
	assertDecimal(t, "109.12", amount.Total)

	require.Len(t, amount.Discounts, 1)
	assertDecimal(t, "6.84", amount.Discounts[0].Amount)
	require.Len(t, amount.Taxes, 1)
	assertDecimal(t, "18.19", amount.Taxes[0].Amount)
}

// La cascada aplica cada tasa a la base restante, no a la base original.
func TestCalculateSaleItem_DescuentosEnCascada(t *testing.T) {
	it := item("it-1", "Cascada", "100", "1")
	it.DiscountRates = rates("10", "10")

	calc := pricing.NewAmountCalculator()
	amount, err := calc.CalculateSaleItem(it, "EUR")
	require.NoError(t, err)

	// 100 → -10% = 90 → -10% = 81, no 80.
	assertDecimal(t, "81", amount.Base)
	assertDecimal(t, "19", amount.Discount)
	require.Len(t, amount.Discounts, 1, "tramos con el mismo nombre y tasa se fusionan")
	assertDecimal(t, "19", amount.Discounts[0].Amount)
}

func TestCalculateSaleItem_VariosImpuestosSumanExacto(t *testing.T) {
	it := item("it-1", "Multi-IVA", "33.33", "3")
	it.TaxRates = rates("5", "19")

	calc := pricing.NewAmountCalculator()
	amount, err := calc.CalculateSaleItem(it, "EUR")
	require.NoError(t, err)

	assert.True(t, sumOf(amount.Taxes).Equal(amount.Tax),
		"la suma de tramos de impuesto debe igualar el agregado exactamente")
	assert.True(t, amount.Total.Equal(amount.Base.Add(amount.Tax)),
		"total = base + tax tras finalizar")
}

func TestCalculateSaleItem_CantidadCero_ProduceCeros(t *testing.T) {
	it := item("it-1", "Sin cantidad", "99.99", "0")
	it.TaxRates = rates("19")

	calc := pricing.NewAmountCalculator()
	amount, err := calc.CalculateSaleItem(it, "EUR")
	require.NoError(t, err)
	assert.True(t, amount.Gross.IsZero())
	assert.True(t, amount.Total.IsZero())
}

// ──────────────────────────────────────────────────────────────────────────────
// Ítems compuestos
// ──────────────────────────────────────────────────────────────────────────────

func TestCalculateSale_CompuestoEsSoloSusHijos(t *testing.T) {
	childA := item("hijo-a", "Componente A", "10", "1")
	childA.TaxRates = rates("20")
	childB := item("hijo-b", "Componente B", "5", "2")
	childB.TaxRates = rates("20")

	compound := item("padre", "Paquete", "0", "1")
	compound.Compound = true
	compound.Children = []*entity.SaleItem{childA, childB}

	calc := pricing.NewAmountCalculator()
	result, err := calc.CalculateSale(saleWith(compound))
	require.NoError(t, err)

	parent := result.Items["padre"]
	assertDecimal(t, "20", parent.Gross)
	assertDecimal(t, "20", parent.Unit, "el unitario del compuesto se copia del bruto de sus hijos")
	assertDecimal(t, "4", parent.Tax)
	assertDecimal(t, "24", parent.Total)

	a := result.Items["hijo-a"]
	b := result.Items["hijo-b"]
	assertDecimal(t, "12", a.Total, "cada hijo conserva su monto propio")
	assertDecimal(t, "12", b.Total)

	assertDecimal(t, "24", result.Gross.Total, "los hijos suben íntegros al agregado de la venta")
}

func TestCalculateSale_CompuestoConTasasMixtasSinGrupoFalla(t *testing.T) {
	childA := item("hijo-a", "A", "10", "1")
	childA.TaxRates = rates("19")
	childB := item("hijo-b", "B", "10", "1")
	childB.TaxRates = rates("5")

	compound := item("padre", "Paquete", "0", "1")
	compound.Compound = true
	compound.Children = []*entity.SaleItem{childA, childB}

	calc := pricing.NewAmountCalculator()
	_, err := calc.CalculateSale(saleWith(compound))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTaxGroupMismatch))
}

func TestCalculateSale_CompuestoConGrupoDeclaradoAceptaTasasMixtas(t *testing.T) {
	childA := item("hijo-a", "A", "10", "1")
	childA.TaxRates = rates("19")
	childB := item("hijo-b", "B", "10", "1")
	childB.TaxRates = rates("5")

	compound := item("padre", "Paquete", "0", "1")
	compound.Compound = true
	compound.TaxGroupID = "grupo-mixto"
	compound.Children = []*entity.SaleItem{childA, childB}

	calc := pricing.NewAmountCalculator()
	_, err := calc.CalculateSale(saleWith(compound))
	require.NoError(t, err, "el grupo declarado del compuesto da contexto a la mezcla")
}

// ──────────────────────────────────────────────────────────────────────────────
// Ítems privados
// ──────────────────────────────────────────────────────────────────────────────

func TestCalculateSale_HijoPrivadoSePliegaEnElPadre(t *testing.T) {
	public := item("hijo-pub", "Opción visible", "12.34", "5")
	public.DiscountRates = rates("5")
	public.TaxRates = rates("5.5")

	private := item("hijo-priv", "Componente interno", "7", "2")
	private.TaxRates = rates("5.5")

	parent := item("padre", "Equipo", "50", "1")
	parent.TaxRates = rates("5.5")
	parent.Children = []*entity.SaleItem{public, private}

	calc := pricing.NewAmountCalculator()
	private.Private = true
	result, err := calc.CalculateSale(saleWith(parent))
	require.NoError(t, err)

	_, privadoListado := result.Items["hijo-priv"]
	assert.False(t, privadoListado, "un ítem privado no se expone a granularidad de venta")

	pub, ok := result.Items["hijo-pub"]
	require.True(t, ok, "el hijo público sí es un nodo consultable")
	assertDecimal(t, "61.70", pub.Gross)
	assertDecimal(t, "3.09", pub.Discount)
	assertDecimal(t, "58.61", pub.Base)
	assertDecimal(t, "61.83", pub.Total)

	// El agregado del padre incluye lo propio (50) + privado (14) + público (58.61).
	padre := result.Items["padre"]
	assertDecimal(t, "122.61", padre.Base)

	// El privado sigue siendo consultable de forma directa.
	directo, err := calc.CalculateSaleItem(private, "EUR")
	require.NoError(t, err)
	assertDecimal(t, "14", directo.Gross)
}

func TestCalculateSale_RaizPrivadaEsErrorLogico(t *testing.T) {
	root := item("raiz", "Interno", "10", "1")
	root.Private = true

	calc := pricing.NewAmountCalculator()
	_, err := calc.CalculateSale(saleWith(root))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRootItemPrivate))

	// El mismo ítem consultado directamente (no como raíz de venta) es válido.
	amount, err := calc.CalculateSaleItem(root, "EUR")
	require.NoError(t, err)
	assertDecimal(t, "10", amount.Gross)
}

func TestCalculateSale_PrivadoConTasaDistintaSinGrupoFalla(t *testing.T) {
	private := item("hijo-priv", "Interno", "7", "1")
	private.Private = true
	private.TaxRates = rates("19")

	parent := item("padre", "Equipo", "50", "1")
	parent.TaxRates = rates("5")
	parent.Children = []*entity.SaleItem{private}

	calc := pricing.NewAmountCalculator()
	_, err := calc.CalculateSale(saleWith(parent))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTaxGroupMismatch))
}

// ──────────────────────────────────────────────────────────────────────────────
// Acumulación hacia arriba
// ──────────────────────────────────────────────────────────────────────────────

func TestCalculateSale_AncestrosReflejanTodoElSubarbol(t *testing.T) {
	grandchild := item("nieto", "Nieto", "10", "1")
	grandchild.TaxRates = rates("19")
	child := item("hijo", "Hijo", "20", "1")
	child.TaxRates = rates("19")
	child.Children = []*entity.SaleItem{grandchild}
	root := item("raiz", "Raíz", "30", "1")
	root.TaxRates = rates("19")
	root.Children = []*entity.SaleItem{child}

	calc := pricing.NewAmountCalculator()
	result, err := calc.CalculateSale(saleWith(root))
	require.NoError(t, err)

	assertDecimal(t, "10", result.Items["nieto"].Base)
	assertDecimal(t, "30", result.Items["hijo"].Base, "el hijo suma su subárbol")
	assertDecimal(t, "60", result.Items["raiz"].Base, "la raíz suma todo el subárbol")
	assertDecimal(t, "60", result.Gross.Base, "la venta suma solo las raíces (sin doble conteo)")
}

// ──────────────────────────────────────────────────────────────────────────────
// Ajustes globales de la venta
// ──────────────────────────────────────────────────────────────────────────────

func TestCalculateSale_DescuentoGlobalPorcentual(t *testing.T) {
	it := item("it-1", "Línea", "100", "1")
	it.TaxRates = rates("19")

	sale := saleWith(it)
	sale.Adjustments = []entity.SaleAdjustment{{
		Designation: "Descuento comercial",
		Type:        entity.AdjustmentTypeDiscount,
		Mode:        entity.AdjustmentModePercent,
		Amount:      dec("10"),
	}}

	calc := pricing.NewAmountCalculator()
	result, err := calc.CalculateSale(sale)
	require.NoError(t, err)

	assertDecimal(t, "100", result.Gross.Base, "el bruto no incluye ajustes globales")
	assertDecimal(t, "119", result.Gross.Total)

	assertDecimal(t, "10", result.Final.Discount)
	assertDecimal(t, "90", result.Final.Base)
	assertDecimal(t, "17.10", result.Final.Tax, "los impuestos se escalan con la base descontada")
	assertDecimal(t, "107.10", result.Final.Total)
	assert.True(t, sumOf(result.Final.Taxes).Equal(result.Final.Tax))
}

func TestCalculateSale_DescuentoGlobalMontoFijo(t *testing.T) {
	it := item("it-1", "Línea", "200", "1")
	it.TaxRates = rates("19")

	sale := saleWith(it)
	sale.Adjustments = []entity.SaleAdjustment{{
		Designation: "Cupón",
		Type:        entity.AdjustmentTypeDiscount,
		Mode:        entity.AdjustmentModeFlat,
		Amount:      dec("20"),
	}}

	calc := pricing.NewAmountCalculator()
	result, err := calc.CalculateSale(sale)
	require.NoError(t, err)

	assertDecimal(t, "180", result.Final.Base)
	assertDecimal(t, "34.20", result.Final.Tax)
	assertDecimal(t, "214.20", result.Final.Total)
}

func TestCalculateSale_ImpuestoGlobalSobreBaseDescontada(t *testing.T) {
	it := item("it-1", "Línea", "100", "1")

	sale := saleWith(it)
	sale.Adjustments = []entity.SaleAdjustment{
		{
			Designation: "Descuento",
			Type:        entity.AdjustmentTypeDiscount,
			Mode:        entity.AdjustmentModePercent,
			Amount:      dec("10"),
		},
		{
			Designation: "Estampilla",
			Type:        entity.AdjustmentTypeTaxation,
			Mode:        entity.AdjustmentModePercent,
			Amount:      dec("2"),
		},
	}

	calc := pricing.NewAmountCalculator()
	result, err := calc.CalculateSale(sale)
	require.NoError(t, err)

	assertDecimal(t, "90", result.Final.Base)
	assertDecimal(t, "1.80", result.Final.Tax, "2% sobre la base ya descontada")
	assertDecimal(t, "91.80", result.Final.Total)
}

func TestCalculateSale_ModoDeAjusteDesconocidoFalla(t *testing.T) {
	it := item("it-1", "Línea", "100", "1")

	sale := saleWith(it)
	sale.Adjustments = []entity.SaleAdjustment{{
		Designation: "Raro",
		Type:        entity.AdjustmentTypeDiscount,
		Mode:        "por-unidad",
		Amount:      dec("1"),
	}}

	calc := pricing.NewAmountCalculator()
	_, err := calc.CalculateSale(sale)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAdjustmentMode))
}

func TestCalculateSale_TipoDeAjusteDesconocidoFalla(t *testing.T) {
	it := item("it-1", "Línea", "100", "1")

	sale := saleWith(it)
	sale.Adjustments = []entity.SaleAdjustment{{
		Designation: "Raro",
		Type:        "propina",
		Mode:        entity.AdjustmentModePercent,
		Amount:      dec("1"),
	}}

	calc := pricing.NewAmountCalculator()
	_, err := calc.CalculateSale(sale)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAdjustmentType))
}

// ──────────────────────────────────────────────────────────────────────────────
// Envío y casos borde
// ──────────────────────────────────────────────────────────────────────────────

func TestCalculateSaleShipment_PseudoLineaConImpuesto(t *testing.T) {
	it := item("it-1", "Línea", "100", "1")
	sale := saleWith(it)
	sale.Shipment = &entity.Shipment{
		Designation: "Envío estándar",
		Amount:      dec("15.50"),
		TaxRates:    rates("19"),
	}

	calc := pricing.NewAmountCalculator()
	result, err := calc.CalculateSale(sale)
	require.NoError(t, err)

	assertDecimal(t, "15.50", result.Shipment.Gross)
	assertDecimal(t, "15.50", result.Shipment.Base, "el descuento no aplica al envío")
	assertDecimal(t, "2.95", result.Shipment.Tax)
	assertDecimal(t, "18.45", result.Shipment.Total)
	assert.True(t, result.Shipment.Discount.IsZero())
}

func TestCalculateSale_SinEnvioProduceCero(t *testing.T) {
	sale := saleWith(item("it-1", "Línea", "10", "1"))

	calc := pricing.NewAmountCalculator()
	result, err := calc.CalculateSale(sale)
	require.NoError(t, err)
	assert.True(t, result.Shipment.IsZero())
}

func TestCalculateSale_VentaVaciaProduceCeros(t *testing.T) {
	sale := saleWith()

	calc := pricing.NewAmountCalculator()
	result, err := calc.CalculateSale(sale)
	require.NoError(t, err)
	assert.True(t, result.Gross.IsZero())
	assert.True(t, result.Final.IsZero())
	assert.Empty(t, result.Items)
}

// La memoización por identidad devuelve el mismo resultado en consultas
// repetidas dentro de la misma corrida.
func TestCalculateSaleItem_MemoizaPorIdentidad(t *testing.T) {
	it := item("it-1", "Línea", "32.59", "3")
	it.DiscountRates = rates("7")
	it.TaxRates = rates("20")

	calc := pricing.NewAmountCalculator()
	primera, err := calc.CalculateSaleItem(it, "EUR")
	require.NoError(t, err)
	segunda, err := calc.CalculateSaleItem(it, "EUR")
	require.NoError(t, err)

	assert.True(t, primera.Total.Equal(segunda.Total))

	// Tras Reset, un árbol modificado produce el resultado nuevo.
	it.Quantity = dec("6")
	calc.Reset()
	tercera, err := calc.CalculateSaleItem(it, "EUR")
	require.NoError(t, err)
	assertDecimal(t, "195.54", tercera.Gross)
}

// El mismo ítem consultado en monedas distintas no comparte memoización:
// cada moneda redondea con su propia precisión.
func TestCalculateSaleItem_MonedaDistintaNoReusaCache(t *testing.T) {
	it := item("it-1", "Línea", "10.555", "1")

	calc := pricing.NewAmountCalculator()
	eur, err := calc.CalculateSaleItem(it, "EUR")
	require.NoError(t, err)
	assert.Equal(t, "EUR", eur.Currency)
	assertDecimal(t, "10.56", eur.Gross)

	jpy, err := calc.CalculateSaleItem(it, "JPY")
	require.NoError(t, err)
	assert.Equal(t, "JPY", jpy.Currency, "la segunda consulta debe salir en la moneda pedida")
	assertDecimal(t, "11", jpy.Gross, "el yen redondea a unidad entera")
}
