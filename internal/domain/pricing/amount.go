package pricing

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-pro/internal/domain"
	"github.com/jhoicas/ventas-pro/pkg/money"
)

// Amount descomposición monetaria de un nodo (ítem, raíz de la venta, envío
// o el sub-resultado de un ajuste global): siete escalares más las listas de
// tramos de descuento e impuesto. Los invariantes base = gross - discount y
// total = base + tax los garantiza el calculador; el tipo solo aporta las
// operaciones de agregación. Valor inmutable: toda operación devuelve un
// Amount nuevo.
type Amount struct {
	Currency string

	Unit     decimal.Decimal
	Gross    decimal.Decimal
	Discount decimal.Decimal
	Base     decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal

	Discounts []Adjustment
	Taxes     []Adjustment
}

// NewAmount monto en cero para la moneda dada.
func NewAmount(currency string) Amount {
	return Amount{Currency: currency}
}

// Merge suma los siete escalares y fusiona las listas de ajustes tramo a
// tramo. La mezcla de monedas distintas es un error fatal, nunca una
// conversión silenciosa.
func (a Amount) Merge(others ...Amount) (Amount, error) {
	out := a.clone()
	for _, o := range others {
		if o.Currency != out.Currency {
			return Amount{}, fmt.Errorf("merge de montos %s y %s: %w",
				out.Currency, o.Currency, domain.ErrCurrencyMismatch)
		}
		out.Unit = out.Unit.Add(o.Unit)
		out.Gross = out.Gross.Add(o.Gross)
		out.Discount = out.Discount.Add(o.Discount)
		out.Base = out.Base.Add(o.Base)
		out.Tax = out.Tax.Add(o.Tax)
		out.Total = out.Total.Add(o.Total)
		out.Discounts = mergeAdjustments(out.Discounts, o.Discounts)
		out.Taxes = mergeAdjustments(out.Taxes, o.Taxes)
	}
	return out, nil
}

// WithUnitFromGross copia el bruto al unitario. Se usa cuando el precio
// unitario del nodo no tiene significado propio (se obtuvo de sus hijos).
func (a Amount) WithUnitFromGross() Amount {
	out := a.clone()
	out.Unit = out.Gross
	return out
}

// Round redondea unit, gross, discount, base y total a la precisión de la
// moneda. Tax no se redondea de forma independiente: se deriva como
// total - base para garantizar total = base + tax exacto tras redondear.
func (a Amount) Round() Amount {
	out := a.clone()
	out.Unit = money.Round(out.Unit, out.Currency)
	out.Gross = money.Round(out.Gross, out.Currency)
	out.Discount = money.Round(out.Discount, out.Currency)
	out.Base = money.Round(out.Base, out.Currency)
	out.Total = money.Round(out.Total, out.Currency)
	out.Tax = out.Total.Sub(out.Base)
	return out
}

// Finalize redondea y reconcilia las listas de ajustes contra los agregados
// autoritativos: la suma de Taxes queda exactamente igual a Tax y la de
// Discounts exactamente igual a Discount. El recorte absorbe la deriva de
// redondeo en los tramos mayores (procesados al final); cualquier residuo
// por defecto se asigna también al tramo mayor. Las listas finales quedan
// ordenadas por tasa ascendente para una presentación determinista.
func (a Amount) Finalize() Amount {
	out := a.Round()
	out.Taxes = reconcile(a.Taxes, out.Tax, out.Currency)
	out.Discounts = reconcile(a.Discounts, out.Discount, out.Currency)
	return out
}

// FinalFromGross construye el resultado "final" de la venta a partir de su
// resultado "gross": el descuento de línea ya quedó plegado en la base, por
// lo que el final parte con descuento cero y base igual a la base bruta
// (ya neta de descuentos de línea). Sobre este monto se aplican después los
// ajustes globales de la venta.
func FinalFromGross(gross Amount) Amount {
	return Amount{
		Currency: gross.Currency,
		Unit:     gross.Base,
		Gross:    gross.Base,
		Discount: decimal.Zero,
		Base:     gross.Base,
		Tax:      gross.Tax,
		Total:    gross.Base.Add(gross.Tax),
		Taxes:    append([]Adjustment(nil), gross.Taxes...),
	}
}

// IsZero indica si los siete escalares son cero.
func (a Amount) IsZero() bool {
	return a.Unit.IsZero() && a.Gross.IsZero() && a.Discount.IsZero() &&
		a.Base.IsZero() && a.Tax.IsZero() && a.Total.IsZero()
}

func (a Amount) clone() Amount {
	out := a
	out.Discounts = append([]Adjustment(nil), a.Discounts...)
	out.Taxes = append([]Adjustment(nil), a.Taxes...)
	return out
}

// reconcile recorta una lista de ajustes redondeados de forma independiente
// para que su suma coincida exactamente con el agregado autoritativo (ya
// redondeado). Recorre los tramos de menor a mayor monto; redondea cada uno
// y, si la suma acumulada excedería el agregado, recorta el tramo al resto
// disponible. El residuo restante (positivo o negativo) se asigna al último
// tramo procesado, el mayor.
func reconcile(list []Adjustment, total decimal.Decimal, currency string) []Adjustment {
	if len(list) == 0 {
		return nil
	}

	sorted := append([]Adjustment(nil), list...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Amount.LessThan(sorted[j].Amount)
	})

	out := make([]Adjustment, 0, len(sorted))
	sum := decimal.Zero
	for _, adj := range sorted {
		amount := money.Round(adj.Amount, currency)
		if sum.Add(amount).GreaterThan(total) {
			amount = total.Sub(sum)
		}
		sum = sum.Add(amount)
		out = append(out, Adjustment{Name: adj.Name, Amount: amount, Rate: adj.Rate})
	}
	if !sum.Equal(total) {
		out[len(out)-1].Amount = out[len(out)-1].Amount.Add(total.Sub(sum))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rate.LessThan(out[j].Rate)
	})
	return out
}
