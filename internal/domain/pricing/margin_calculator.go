package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-pro/internal/domain"
	"github.com/jhoicas/ventas-pro/internal/domain/entity"
)

var uno = decimal.NewFromInt(1)

// MarginCalculator combina el lado de ingreso (calculador de montos) y el
// lado de costo (calculador de costos) en un Margin por ítem, venta o
// envío. Con un calculador de cantidades facturadas, los montos se
// restringen a lo realmente facturado menos lo acreditado; sin él se usan
// los montos completos.
type MarginCalculator struct {
	amounts   *AmountCalculator
	costs     *CostCalculator
	invoices  InvoiceQuantityCalculator // nil = montos completos
	converter CurrencyConverter         // nil = solo moneda de la venta
}

// NewMarginCalculator construye el calculador.
func NewMarginCalculator(amounts *AmountCalculator, costs *CostCalculator, invoices InvoiceQuantityCalculator, converter CurrencyConverter) *MarginCalculator {
	return &MarginCalculator{amounts: amounts, costs: costs, invoices: invoices, converter: converter}
}

// CalculateSaleItem margen de un ítem con su subárbol, en la moneda dada.
func (m *MarginCalculator) CalculateSaleItem(item *entity.SaleItem, currency string) (Margin, error) {
	revenue, cost, err := m.itemFigures(item, currency)
	if err != nil {
		return Margin{}, err
	}
	return NewMargin(revenue.Total(), cost.Total(), cost.Average), nil
}

// CalculateSale margen de la venta completa: ítems (con el descuento global
// prorrateado sobre el ingreso) más el envío.
func (m *MarginCalculator) CalculateSale(sale *entity.Sale) (Margin, error) {
	amounts, err := m.amounts.CalculateSale(sale)
	if err != nil {
		return Margin{}, err
	}

	var revenue Revenue
	var cost Cost
	for _, item := range sale.Items {
		itemRevenue, itemCost, err := m.itemFigures(item, sale.Currency)
		if err != nil {
			return Margin{}, err
		}
		revenue = revenue.Add(itemRevenue)
		cost = cost.Add(itemCost)
	}

	// El descuento global de la venta reduce el ingreso de producto en la
	// misma proporción en que reduce la base agregada.
	if amounts.Gross.Base.IsPositive() {
		factor := amounts.Final.Base.Div(amounts.Gross.Base)
		revenue.Product = revenue.Product.Mul(factor)
	}

	if sale.Shipment != nil {
		revenue.Shipment = revenue.Shipment.Add(amounts.Shipment.Base)
		cost = cost.Add(m.costs.CalculateSaleShipment(sale))
	}

	return NewMargin(revenue.Total(), cost.Total(), cost.Average), nil
}

// CalculateSaleShipment margen del envío. Devuelve nil cuando la venta no
// tiene envío: "no aplica" se distingue de un margen en cero.
func (m *MarginCalculator) CalculateSaleShipment(sale *entity.Sale) (*Margin, error) {
	if sale.Shipment == nil {
		return nil, nil
	}
	amount, err := m.amounts.CalculateSaleShipment(sale)
	if err != nil {
		return nil, err
	}
	cost := m.costs.CalculateSaleShipment(sale)
	margin := NewMargin(amount.Base, cost.Total(), cost.Average)
	return &margin, nil
}

// ConvertMargin expresa el monto del margen en otra moneda vía el
// convertidor. El porcentaje no cambia.
func (m *MarginCalculator) ConvertMargin(margin Margin, from, to string) (Margin, error) {
	if from == to || to == "" {
		return margin, nil
	}
	if m.converter == nil {
		return Margin{}, fmt.Errorf("conversión %s->%s sin convertidor: %w", from, to, domain.ErrInvalidInput)
	}
	converted, err := m.converter.Convert(margin.Amount, from, to)
	if err != nil {
		return Margin{}, fmt.Errorf("convertir margen %s->%s: %w", from, to, err)
	}
	margin.Amount = converted
	return margin, nil
}

// itemFigures ingreso y costo de un ítem, restringidos a la cantidad
// facturada cuando hay calculador de facturas.
func (m *MarginCalculator) itemFigures(item *entity.SaleItem, currency string) (Revenue, Cost, error) {
	amount, err := m.amounts.CalculateSaleItem(item, currency)
	if err != nil {
		return Revenue{}, Cost{}, err
	}
	cost, err := m.costs.CalculateSaleItem(item, currency)
	if err != nil {
		return Revenue{}, Cost{}, err
	}
	revenue := Revenue{Product: amount.Base}

	if m.invoices != nil {
		ratio, err := m.invoicedRatio(item)
		if err != nil {
			return Revenue{}, Cost{}, err
		}
		revenue = revenue.Scale(ratio)
		cost = cost.Scale(ratio)
	}
	return revenue, cost, nil
}

// invoicedRatio proporción de la cantidad del ítem realmente facturada
// (facturado menos acreditado), acotada a [0, 1].
func (m *MarginCalculator) invoicedRatio(item *entity.SaleItem) (decimal.Decimal, error) {
	if !item.Quantity.IsPositive() {
		return decimal.Zero, nil
	}
	invoiced, err := m.invoices.InvoicedQuantity(item)
	if err != nil {
		return decimal.Zero, fmt.Errorf("cantidad facturada del ítem %q: %w", item.Designation, err)
	}
	credited, err := m.invoices.CreditedQuantity(item)
	if err != nil {
		return decimal.Zero, fmt.Errorf("cantidad acreditada del ítem %q: %w", item.Designation, err)
	}

	ratio := invoiced.Sub(credited).Div(item.Quantity)
	if ratio.IsNegative() {
		return decimal.Zero, nil
	}
	if ratio.GreaterThan(uno) {
		return uno, nil
	}
	return ratio, nil
}
