// Package pricing implementa el motor de cálculo de montos de venta:
// descomposición unit/gross/discount/base/tax/total por nodo del árbol de
// ítems, reconciliación de redondeo por tasa de impuesto, y los
// calculadores de costo y margen que comparten la misma disciplina de
// agregación. Toda la aritmética es decimal exacta (shopspring/decimal) y
// el redondeo ocurre solo en los bordes de cada nivel (pkg/money).
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Adjustment un tramo monetario con nombre y tasa: un paso de descuento o
// la contribución de una tasa de impuesto. Valor inmutable: las fusiones
// construyen ajustes nuevos en lugar de mutar.
type Adjustment struct {
	Name   string
	Amount decimal.Decimal
	Rate   decimal.Decimal // porcentaje; cero para ajustes de monto fijo
}

// IsSameAs dos ajustes son el mismo tramo si coinciden nombre y tasa.
func (a Adjustment) IsSameAs(b Adjustment) bool {
	return a.Name == b.Name && a.Rate.Equal(b.Rate)
}

// mergeAdjustment devuelve la lista con adj incorporado: si ya existe un
// tramo igual (nombre y tasa) se suman los montos; si no, se agrega una
// copia. Nunca modifica la lista de entrada.
func mergeAdjustment(list []Adjustment, adj Adjustment) []Adjustment {
	for i, cur := range list {
		if cur.IsSameAs(adj) {
			out := append([]Adjustment(nil), list...)
			out[i].Amount = cur.Amount.Add(adj.Amount)
			return out
		}
	}
	out := make([]Adjustment, 0, len(list)+1)
	out = append(out, list...)
	return append(out, adj)
}

// mergeAdjustments fusiona dos listas de ajustes tramo a tramo.
func mergeAdjustments(a, b []Adjustment) []Adjustment {
	out := append([]Adjustment(nil), a...)
	for _, adj := range b {
		out = mergeAdjustment(out, adj)
	}
	return out
}

// DiscountName nombre canónico del tramo de descuento de una tasa.
func DiscountName(rate decimal.Decimal) string {
	return fmt.Sprintf("Descuento %s%%", rate.String())
}

// TaxName nombre canónico del tramo de impuesto de una tasa.
func TaxName(rate decimal.Decimal) string {
	return fmt.Sprintf("IVA %s%%", rate.String())
}
