package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-pro/internal/domain/entity"
)

// CostCalculator recorre el árbol de ítems en el mismo orden que el
// calculador de montos y produce un Cost por nodo: costo exacto desde los
// lotes asignados o, en su defecto, una estimación vía el colaborador de
// costos de compra. Las reglas de agregación de ítems compuestos y privados
// son idénticas a las de los montos.
type CostCalculator struct {
	assignments StockAssignmentProvider
	resolver    SubjectResolver
	guesser     PurchaseCostGuesser

	cache map[*entity.SaleItem]Cost
}

// NewCostCalculator construye el calculador. Cualquier colaborador puede
// ser nil: sin asignaciones se estima, sin estimador el costo es cero.
func NewCostCalculator(assignments StockAssignmentProvider, resolver SubjectResolver, guesser PurchaseCostGuesser) *CostCalculator {
	return &CostCalculator{
		assignments: assignments,
		resolver:    resolver,
		guesser:     guesser,
		cache:       make(map[*entity.SaleItem]Cost),
	}
}

// Reset descarta la memoización acumulada.
func (c *CostCalculator) Reset() {
	c.cache = make(map[*entity.SaleItem]Cost)
}

// CalculateSale costo agregado de la venta: ítems raíz más el costo del
// transportador cuando hay envío.
func (c *CostCalculator) CalculateSale(sale *entity.Sale, currency string) (Cost, error) {
	var cost Cost
	for _, item := range sale.Items {
		itemCost, err := c.CalculateSaleItem(item, currency)
		if err != nil {
			return Cost{}, err
		}
		cost = cost.Add(itemCost)
	}
	if sale.Shipment != nil {
		cost = cost.Add(Cost{Shipment: sale.Shipment.Cost})
	}
	return cost, nil
}

// CalculateSaleItem costo del ítem con todo su subárbol.
func (c *CostCalculator) CalculateSaleItem(item *entity.SaleItem, currency string) (Cost, error) {
	if cached, ok := c.cache[item]; ok {
		return cached, nil
	}

	var cost Cost
	if item.Kind() != entity.SaleItemCompound {
		own, err := c.ownCost(item, currency)
		if err != nil {
			return Cost{}, err
		}
		cost = own
	}
	for _, child := range item.Children {
		childCost, err := c.CalculateSaleItem(child, currency)
		if err != nil {
			return Cost{}, err
		}
		cost = cost.Add(childCost)
	}

	c.cache[item] = cost
	return cost, nil
}

// CalculateSaleShipment costo del envío de la venta (lo que paga el
// vendedor al transportador). Cero cuando no hay envío.
func (c *CostCalculator) CalculateSaleShipment(sale *entity.Sale) Cost {
	if sale.Shipment == nil {
		return Cost{}
	}
	return Cost{Shipment: sale.Shipment.Cost}
}

// ownCost costo propio de una línea: promedio ponderado de los lotes
// asignados; sin asignaciones, estimación por sujeto; sin datos, cero.
func (c *CostCalculator) ownCost(item *entity.SaleItem, currency string) (Cost, error) {
	if c.assignments != nil {
		asg, err := c.assignments.ForSaleItem(item)
		if err != nil {
			return Cost{}, fmt.Errorf("asignaciones de stock del ítem %q: %w", item.Designation, err)
		}
		if len(asg) > 0 {
			return assignmentCost(item, asg), nil
		}
	}
	return c.guessedCost(item, currency)
}

// assignmentCost promedio ponderado por cantidad de los lotes asignados,
// escalado a la cantidad vendida. Average se marca cuando contribuye más de
// un lote con costos unitarios distintos.
func assignmentCost(item *entity.SaleItem, assignments []entity.StockAssignment) Cost {
	totalQty := decimal.Zero
	sumNet := decimal.Zero
	sumShipping := decimal.Zero
	var prices []decimal.Decimal

	for _, a := range assignments {
		if a.Unit == nil || !a.Quantity.IsPositive() {
			continue
		}
		totalQty = totalQty.Add(a.Quantity)
		sumNet = sumNet.Add(a.Quantity.Mul(a.Unit.NetPrice))
		sumShipping = sumShipping.Add(a.Quantity.Mul(a.Unit.ShippingPrice))
		prices = append(prices, a.Unit.NetPrice)
	}
	if !totalQty.IsPositive() {
		return Cost{}
	}

	average := false
	for _, p := range prices[1:] {
		if !p.Equal(prices[0]) {
			average = true
			break
		}
	}

	avgNet := sumNet.Div(totalQty)
	avgShipping := sumShipping.Div(totalQty)
	return Cost{
		Product: avgNet.Mul(item.Quantity),
		Supply:  avgShipping.Mul(item.Quantity),
		Average: average,
	}
}

// guessedCost estimación por sujeto resuelto. Toda estimación se marca
// Average: no proviene de un lote exacto.
func (c *CostCalculator) guessedCost(item *entity.SaleItem, currency string) (Cost, error) {
	if c.resolver == nil || c.guesser == nil {
		return Cost{}, nil
	}
	product, err := c.resolver.Resolve(item)
	if err != nil {
		return Cost{}, fmt.Errorf("resolver sujeto del ítem %q: %w", item.Designation, err)
	}
	if product == nil {
		return Cost{}, nil
	}

	unitCost, okProduct, err := c.guesser.Guess(product, currency, false)
	if err != nil {
		return Cost{}, fmt.Errorf("estimar costo de %q: %w", product.SKU, err)
	}
	shippingCost, okShipping, err := c.guesser.Guess(product, currency, true)
	if err != nil {
		return Cost{}, fmt.Errorf("estimar flete de %q: %w", product.SKU, err)
	}
	if !okProduct && !okShipping {
		return Cost{}, nil
	}

	cost := Cost{Average: true}
	if okProduct {
		cost.Product = unitCost.Mul(item.Quantity)
	}
	if okShipping {
		cost.Supply = shippingCost.Mul(item.Quantity)
	}
	return cost, nil
}
