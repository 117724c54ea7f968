package pricing_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-pro/internal/domain"
	"github.com/jhoicas/ventas-pro/internal/domain/pricing"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// assertDecimal compara decimales con mensaje legible (Equal, no ==).
func assertDecimal(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, dec(expected).Equal(actual),
		"esperado %s, obtenido %s — %v", expected, actual.String(), msgAndArgs)
}

// ──────────────────────────────────────────────────────────────────────────────
// Adjustment
// ──────────────────────────────────────────────────────────────────────────────

func TestAdjustment_IsSameAs(t *testing.T) {
	a := pricing.Adjustment{Name: "IVA 19%", Amount: dec("10"), Rate: dec("19")}
	b := pricing.Adjustment{Name: "IVA 19%", Amount: dec("5"), Rate: dec("19")}
	c := pricing.Adjustment{Name: "IVA 19%", Amount: dec("10"), Rate: dec("5")}
	d := pricing.Adjustment{Name: "IVA 5%", Amount: dec("10"), Rate: dec("19")}

	assert.True(t, a.IsSameAs(b), "mismo nombre y tasa son el mismo tramo, sin importar el monto")
	assert.False(t, a.IsSameAs(c), "tasa distinta no es el mismo tramo")
	assert.False(t, a.IsSameAs(d), "nombre distinto no es el mismo tramo")
}

// ──────────────────────────────────────────────────────────────────────────────
// Amount.Merge
// ──────────────────────────────────────────────────────────────────────────────

func amountFixture(currency string, base, tax string) pricing.Amount {
	return pricing.Amount{
		Currency: currency,
		Unit:     dec(base),
		Gross:    dec(base),
		Base:     dec(base),
		Tax:      dec(tax),
		Total:    dec(base).Add(dec(tax)),
		Taxes: []pricing.Adjustment{
			{Name: "IVA 19%", Amount: dec(tax), Rate: dec("19")},
		},
	}
}

func TestAmount_Merge_SumaEscalaresYFusionaTramos(t *testing.T) {
	a := amountFixture("EUR", "100", "19")
	b := amountFixture("EUR", "50", "9.5")

	merged, err := a.Merge(b)
	require.NoError(t, err)

	assertDecimal(t, "150", merged.Base)
	assertDecimal(t, "28.5", merged.Tax)
	assertDecimal(t, "178.5", merged.Total)
	require.Len(t, merged.Taxes, 1, "tramos con mismo nombre y tasa deben fusionarse")
	assertDecimal(t, "28.5", merged.Taxes[0].Amount)
}

func TestAmount_Merge_MonedaDistintaFalla(t *testing.T) {
	a := amountFixture("EUR", "100", "19")
	b := amountFixture("USD", "100", "19")

	_, err := a.Merge(b)
	require.Error(t, err, "mezclar monedas nunca convierte en silencio")
	assert.True(t, errors.Is(err, domain.ErrCurrencyMismatch))
}

func TestAmount_Merge_Asociativo(t *testing.T) {
	a := amountFixture("EUR", "100", "19")
	b := amountFixture("EUR", "50", "9.5")
	c := amountFixture("EUR", "25", "4.75")

	bc, err := b.Merge(c)
	require.NoError(t, err)
	left, err := a.Merge(bc)
	require.NoError(t, err)

	ab, err := a.Merge(b)
	require.NoError(t, err)
	right, err := ab.Merge(c)
	require.NoError(t, err)

	assert.True(t, left.Base.Equal(right.Base))
	assert.True(t, left.Tax.Equal(right.Tax))
	assert.True(t, left.Total.Equal(right.Total))
	require.Equal(t, len(left.Taxes), len(right.Taxes))
	for i := range left.Taxes {
		assert.True(t, left.Taxes[i].Amount.Equal(right.Taxes[i].Amount))
	}
}

func TestAmount_Merge_NoMutaLosOperandos(t *testing.T) {
	a := amountFixture("EUR", "100", "19")
	b := amountFixture("EUR", "50", "9.5")
	antesA := a.Taxes[0].Amount

	_, err := a.Merge(b)
	require.NoError(t, err)

	assert.True(t, a.Taxes[0].Amount.Equal(antesA),
		"la fusión debe construir valores nuevos, no mutar los operandos")
	assertDecimal(t, "100", a.Base)
}

// ──────────────────────────────────────────────────────────────────────────────
// Round / Finalize
// ──────────────────────────────────────────────────────────────────────────────

func TestAmount_Round_DerivaTaxDeTotalMenosBase(t *testing.T) {
	a := pricing.Amount{
		Currency: "EUR",
		Gross:    dec("97.77"),
		Discount: dec("6.84"),
		Base:     dec("90.93"),
		Tax:      dec("18.186"),
		Total:    dec("109.116"),
	}

	r := a.Round()
	assertDecimal(t, "90.93", r.Base)
	assertDecimal(t, "109.12", r.Total)
	assertDecimal(t, "18.19", r.Tax, "tax = total - base exacto tras redondear")
	assert.True(t, r.Total.Equal(r.Base.Add(r.Tax)))
}

func TestAmount_Round_Idempotente(t *testing.T) {
	a := pricing.Amount{
		Currency: "EUR",
		Unit:     dec("32.599"),
		Gross:    dec("97.797"),
		Base:     dec("90.934"),
		Tax:      dec("18.186"),
		Total:    dec("109.12"),
	}

	una := a.Round()
	dos := una.Round()
	assert.True(t, una.Unit.Equal(dos.Unit))
	assert.True(t, una.Gross.Equal(dos.Gross))
	assert.True(t, una.Base.Equal(dos.Base))
	assert.True(t, una.Tax.Equal(dos.Tax))
	assert.True(t, una.Total.Equal(dos.Total))
}

// Caso de deriva por exceso: dos tramos que redondeados de forma
// independiente suman un centavo más que el agregado autoritativo.
func TestAmount_Finalize_RecortaExceso(t *testing.T) {
	a := pricing.Amount{
		Currency: "EUR",
		Base:     dec("100"),
		Tax:      dec("20.01"),
		Total:    dec("120.01"),
		Taxes: []pricing.Adjustment{
			{Name: "IVA 10%", Amount: dec("10.005"), Rate: dec("10")},
			{Name: "IVA 11%", Amount: dec("10.005"), Rate: dec("11")},
		},
	}

	f := a.Finalize()
	assertDecimal(t, "20.01", f.Tax)

	sum := decimal.Zero
	for _, adj := range f.Taxes {
		sum = sum.Add(adj.Amount)
	}
	assert.True(t, sum.Equal(f.Tax),
		"la suma de los tramos finalizados debe igualar el agregado exactamente")
	assert.False(t, f.Taxes[0].Amount.IsNegative())
	assert.False(t, f.Taxes[1].Amount.IsNegative())
}

// Caso de deriva por defecto: el residuo se asigna al tramo mayor.
func TestAmount_Finalize_ResiduoAlTramoMayor(t *testing.T) {
	a := pricing.Amount{
		Currency: "EUR",
		Base:     dec("100"),
		Tax:      dec("20.008"),
		Total:    dec("120.008"),
		Taxes: []pricing.Adjustment{
			{Name: "IVA 10%", Amount: dec("10.004"), Rate: dec("10")},
			{Name: "IVA 11%", Amount: dec("10.004"), Rate: dec("11")},
		},
	}

	f := a.Finalize()
	assertDecimal(t, "20.01", f.Tax)

	sum := decimal.Zero
	for _, adj := range f.Taxes {
		sum = sum.Add(adj.Amount)
	}
	assert.True(t, sum.Equal(f.Tax))
	// Tramos ordenados por tasa ascendente; el residuo cayó en el último.
	assertDecimal(t, "10.00", f.Taxes[0].Amount)
	assertDecimal(t, "10.01", f.Taxes[1].Amount)
}

func TestAmount_Finalize_OrdenaPorTasaAscendente(t *testing.T) {
	a := pricing.Amount{
		Currency: "EUR",
		Base:     dec("100"),
		Tax:      dec("24"),
		Total:    dec("124"),
		Taxes: []pricing.Adjustment{
			{Name: "IVA 19%", Amount: dec("19"), Rate: dec("19")},
			{Name: "IVA 5%", Amount: dec("5"), Rate: dec("5")},
		},
	}

	f := a.Finalize()
	require.Len(t, f.Taxes, 2)
	assert.True(t, f.Taxes[0].Rate.LessThan(f.Taxes[1].Rate),
		"presentación determinista: tasa menor primero")
}

func TestAmount_FinalFromGross_AplanaDescuento(t *testing.T) {
	gross := pricing.Amount{
		Currency: "EUR",
		Unit:     dec("32.59"),
		Gross:    dec("97.77"),
		Discount: dec("6.84"),
		Base:     dec("90.93"),
		Tax:      dec("18.186"),
		Total:    dec("109.116"),
		Discounts: []pricing.Adjustment{
			{Name: "Descuento 7%", Amount: dec("6.84"), Rate: dec("7")},
		},
		Taxes: []pricing.Adjustment{
			{Name: "IVA 20%", Amount: dec("18.186"), Rate: dec("20")},
		},
	}

	final := pricing.FinalFromGross(gross)
	assertDecimal(t, "0", final.Discount, "el descuento de línea ya quedó plegado en la base")
	assertDecimal(t, "90.93", final.Base)
	assertDecimal(t, "90.93", final.Gross)
	assertDecimal(t, "90.93", final.Unit)
	assert.Empty(t, final.Discounts)
	require.Len(t, final.Taxes, 1, "los impuestos se conservan")
	assert.True(t, final.Total.Equal(final.Base.Add(final.Tax)))
}

func TestAmount_WithUnitFromGross(t *testing.T) {
	a := amountFixture("EUR", "100", "19")
	a.Unit = decimal.Zero

	r := a.WithUnitFromGross()
	assert.True(t, r.Unit.Equal(r.Gross))
	assert.True(t, a.Unit.IsZero(), "el original no se modifica")
}
