// Package money centraliza el redondeo monetario a la precisión de la moneda.
// Todo el motor de cálculo redondea únicamente a través de este paquete para
// evitar acumulación de error de representación antes de la reconciliación.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// defaultPrecision decimales por defecto cuando la moneda no es ISO 4217.
const defaultPrecision = 2

// minorUnits excepciones a los 2 decimales de ISO 4217. Se mantiene una
// tabla propia porque los datos CLDR de x/text reportan la precisión de
// efectivo para algunas monedas (COP -> 0), no la unidad menor contable.
var minorUnits = map[string]int32{
	"BIF": 0, "CLP": 0, "DJF": 0, "GNF": 0, "ISK": 0, "JPY": 0,
	"KMF": 0, "KRW": 0, "PYG": 0, "RWF": 0, "UGX": 0, "UYI": 0,
	"VND": 0, "VUV": 0, "XAF": 0, "XOF": 0, "XPF": 0,
	"BHD": 3, "IQD": 3, "JOD": 3, "KWD": 3, "LYD": 3, "OMR": 3, "TND": 3,
}

// Precision devuelve la cantidad de decimales (unidad menor) de la moneda.
// Ej: EUR/USD/COP -> 2, JPY -> 0, TND -> 3. Moneda desconocida -> 2.
func Precision(code string) int32 {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return defaultPrecision
	}
	if p, ok := minorUnits[unit.String()]; ok {
		return p
	}
	return defaultPrecision
}

// Round redondea el monto a la precisión de la moneda (half-up).
// Función pura y total: no tiene modos de fallo para entradas finitas.
func Round(amount decimal.Decimal, code string) decimal.Decimal {
	return amount.Round(Precision(code))
}

// Equal compara dos montos con tolerancia de medio mínimo de la moneda.
func Equal(a, b decimal.Decimal, code string) bool {
	return Round(a, code).Equal(Round(b, code))
}
