package pricing

import "github.com/shopspring/decimal"

// Cost agregado del lado de compra de un nodo: costo de producto, de
// aprovisionamiento (flete de compra) y de envío. Average marca que alguna
// cifra es un promedio ponderado o una estimación en lugar de un costo
// exacto de lote; se propaga con OR en cada agregación y nunca se limpia.
type Cost struct {
	Product  decimal.Decimal
	Supply   decimal.Decimal
	Shipment decimal.Decimal
	Average  bool
}

// Add suma componente a componente y propaga Average.
func (c Cost) Add(others ...Cost) Cost {
	out := c
	for _, o := range others {
		out.Product = out.Product.Add(o.Product)
		out.Supply = out.Supply.Add(o.Supply)
		out.Shipment = out.Shipment.Add(o.Shipment)
		out.Average = out.Average || o.Average
	}
	return out
}

// Scale multiplica los componentes por un factor (restricción a cantidad
// facturada). Average se conserva.
func (c Cost) Scale(factor decimal.Decimal) Cost {
	return Cost{
		Product:  c.Product.Mul(factor),
		Supply:   c.Supply.Mul(factor),
		Shipment: c.Shipment.Mul(factor),
		Average:  c.Average,
	}
}

// Total suma de los tres componentes.
func (c Cost) Total() decimal.Decimal {
	return c.Product.Add(c.Supply).Add(c.Shipment)
}

// Revenue lado de ingreso comparable con Cost: base de producto y base de
// envío.
type Revenue struct {
	Product  decimal.Decimal
	Shipment decimal.Decimal
}

// Add suma componente a componente.
func (r Revenue) Add(others ...Revenue) Revenue {
	out := r
	for _, o := range others {
		out.Product = out.Product.Add(o.Product)
		out.Shipment = out.Shipment.Add(o.Shipment)
	}
	return out
}

// Scale multiplica los componentes por un factor.
func (r Revenue) Scale(factor decimal.Decimal) Revenue {
	return Revenue{Product: r.Product.Mul(factor), Shipment: r.Shipment.Mul(factor)}
}

// Total suma de los componentes.
func (r Revenue) Total() decimal.Decimal {
	return r.Product.Add(r.Shipment)
}

// Margin rentabilidad: monto (ingreso - costo), porcentaje sobre el ingreso
// y la marca Average heredada del costo.
type Margin struct {
	Amount  decimal.Decimal
	Percent decimal.Decimal
	Average bool
}

// NewMargin deriva el margen de un ingreso y un costo totales. El
// porcentaje es cero cuando el ingreso no es positivo.
func NewMargin(revenue, cost decimal.Decimal, average bool) Margin {
	amount := revenue.Sub(cost)
	percent := decimal.Zero
	if revenue.IsPositive() {
		percent = amount.Mul(cien).Div(revenue).Round(2)
	}
	return Margin{Amount: amount, Percent: percent, Average: average}
}
