package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/ventas-pro/pkg/money"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestPrecision_MonedasConocidas(t *testing.T) {
	assert.EqualValues(t, 2, money.Precision("EUR"))
	assert.EqualValues(t, 2, money.Precision("USD"))
	assert.EqualValues(t, 2, money.Precision("COP"), "el peso colombiano tiene centavos contables")
	assert.EqualValues(t, 0, money.Precision("JPY"), "el yen no tiene unidad menor")
	assert.EqualValues(t, 0, money.Precision("CLP"))
	assert.EqualValues(t, 3, money.Precision("TND"), "el dinar tunecino usa milésimas")
}

func TestPrecision_MonedaDesconocida_UsaDosDecimales(t *testing.T) {
	assert.EqualValues(t, 2, money.Precision("XXX_NO_EXISTE"))
}

func TestRound_HalfUp(t *testing.T) {
	assert.True(t, money.Round(dec("6.8439"), "EUR").Equal(dec("6.84")))
	assert.True(t, money.Round(dec("18.186"), "EUR").Equal(dec("18.19")))
	assert.True(t, money.Round(dec("1.005"), "EUR").Equal(dec("1.01")),
		"el medio centavo debe redondear hacia arriba")
	assert.True(t, money.Round(dec("1234.4"), "JPY").Equal(dec("1234")))
	assert.True(t, money.Round(dec("1234.5"), "JPY").Equal(dec("1235")))
	assert.True(t, money.Round(dec("1234.567"), "COP").Equal(dec("1234.57")),
		"COP redondea a centavos, no a pesos enteros")
}

// Redondear dos veces produce lo mismo que redondear una vez.
func TestRound_Idempotente(t *testing.T) {
	una := money.Round(dec("97.7701"), "EUR")
	dos := money.Round(una, "EUR")
	assert.True(t, una.Equal(dos))
}

func TestEqual_ToleranciaDeMoneda(t *testing.T) {
	assert.True(t, money.Equal(dec("10.001"), dec("10.002"), "EUR"))
	assert.False(t, money.Equal(dec("10.00"), dec("10.01"), "EUR"))
}
