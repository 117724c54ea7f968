package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-pro/internal/domain"
	"github.com/jhoicas/ventas-pro/internal/domain/entity"
	"github.com/jhoicas/ventas-pro/pkg/money"
)

var cien = decimal.NewFromInt(100)

// SaleAmounts resultado del cálculo completo de una venta.
type SaleAmounts struct {
	// Gross agregado de los ítems raíz, antes de los ajustes globales.
	Gross Amount
	// Final resultado tras aplicar el descuento global y el impuesto global.
	Final Amount
	// Shipment resultado del cargo de envío, calculado como pseudo-línea.
	Shipment Amount
	// Items monto finalizado por cada ítem no privado del árbol, por ID.
	// Los ítems privados no se exponen a granularidad de venta: sus montos
	// quedan plegados en el total del padre.
	Items map[string]Amount
}

// itemKey clave de memoización: el mismo ítem consultado en monedas
// distintas produce montos distintos.
type itemKey struct {
	item     *entity.SaleItem
	currency string
}

// AmountCalculator recorre el árbol de ítems de una venta de abajo hacia
// arriba y produce un Amount por nodo y los resultados agregados de la
// venta. Memoiza por identidad de ítem y moneda dentro de la vida del
// calculador: crear uno nuevo (o llamar Reset) entre corridas con datos
// distintos.
type AmountCalculator struct {
	cache map[itemKey]Amount
}

// NewAmountCalculator construye el calculador.
func NewAmountCalculator() *AmountCalculator {
	return &AmountCalculator{cache: make(map[itemKey]Amount)}
}

// Reset descarta la memoización acumulada.
func (c *AmountCalculator) Reset() {
	c.cache = make(map[itemKey]Amount)
}

// CalculateSale calcula el resultado bruto, el final y el de envío de la
// venta, más el monto de cada ítem público. Una venta sin ítems produce
// montos en cero, no un error. Un ítem raíz privado sí es un error: un ítem
// privado no tiene significado independiente a granularidad de venta.
func (c *AmountCalculator) CalculateSale(sale *entity.Sale) (*SaleAmounts, error) {
	// Un tipo de ajuste desconocido es un error de configuración: debe
	// rechazarse aquí, antes de que el filtrado por tipo lo descarte.
	for _, adj := range sale.Adjustments {
		switch adj.Type {
		case entity.AdjustmentTypeDiscount, entity.AdjustmentTypeTaxation:
		default:
			return nil, fmt.Errorf("ajuste %q tipo %q: %w",
				adj.Designation, adj.Type, domain.ErrAdjustmentType)
		}
	}

	currency := sale.Currency
	result := &SaleAmounts{
		Gross:    NewAmount(currency),
		Final:    NewAmount(currency),
		Shipment: NewAmount(currency),
		Items:    make(map[string]Amount),
	}

	gross := NewAmount(currency)
	for _, item := range sale.Items {
		if item.Private {
			return nil, fmt.Errorf("ítem %q: %w", item.Designation, domain.ErrRootItemPrivate)
		}
		amount, err := c.calculateItem(item, currency)
		if err != nil {
			return nil, err
		}
		gross, err = gross.Merge(amount)
		if err != nil {
			return nil, err
		}
		if err := c.collectPublicAmounts(item, currency, result.Items); err != nil {
			return nil, err
		}
	}
	result.Gross = gross.Finalize()

	final := FinalFromGross(gross)
	final, err := c.applySaleDiscounts(sale, final)
	if err != nil {
		return nil, err
	}
	final, err = c.applySaleTaxations(sale, final)
	if err != nil {
		return nil, err
	}
	result.Final = final.Finalize()

	shipment, err := c.CalculateSaleShipment(sale)
	if err != nil {
		return nil, err
	}
	result.Shipment = shipment

	return result, nil
}

// CalculateSaleItem calcula el monto de un ítem consultado directamente,
// con todo su subárbol (hijos privados incluidos). A diferencia del cálculo
// de venta, consultar un ítem privado de forma directa es válido.
func (c *AmountCalculator) CalculateSaleItem(item *entity.SaleItem, currency string) (Amount, error) {
	amount, err := c.calculateItem(item, currency)
	if err != nil {
		return Amount{}, err
	}
	return amount.Finalize(), nil
}

// CalculateSaleShipment calcula el cargo de envío como una pseudo-línea:
// bruto = base (sin descuentos) más sus propios impuestos. Una venta sin
// envío produce un monto en cero.
func (c *AmountCalculator) CalculateSaleShipment(sale *entity.Sale) (Amount, error) {
	currency := sale.Currency
	if sale.Shipment == nil || sale.Shipment.Amount.IsZero() {
		return NewAmount(currency), nil
	}

	gross := money.Round(sale.Shipment.Amount, currency)
	amount := Amount{
		Currency: currency,
		Unit:     gross,
		Gross:    gross,
		Base:     gross,
		Total:    gross,
	}
	for _, rate := range sale.Shipment.TaxRates {
		tax := gross.Mul(rate).Div(cien)
		amount.Taxes = mergeAdjustment(amount.Taxes, Adjustment{
			Name: TaxName(rate), Amount: tax, Rate: rate,
		})
		amount.Tax = amount.Tax.Add(tax)
		amount.Total = amount.Total.Add(tax)
	}
	return amount.Finalize(), nil
}

// calculateItem devuelve el monto sin finalizar del ítem, de abajo hacia
// arriba: hijos antes que el padre.
func (c *AmountCalculator) calculateItem(item *entity.SaleItem, currency string) (Amount, error) {
	key := itemKey{item: item, currency: currency}
	if cached, ok := c.cache[key]; ok {
		return cached, nil
	}

	var amount Amount
	var err error
	switch item.Kind() {
	case entity.SaleItemCompound:
		amount, err = c.compoundAmount(item, currency)
	case entity.SaleItemParent:
		amount, err = c.parentAmount(item, currency)
	default:
		amount = leafAmount(item, currency)
	}
	if err != nil {
		return Amount{}, err
	}

	c.cache[key] = amount
	return amount, nil
}

// leafAmount monto propio de una línea: bruto redondeado, descuentos en
// cascada (cada tramo redondeado contra la base restante) e impuestos en
// paralelo sobre la base descontada. Los tramos de impuesto quedan sin
// redondear: la reconciliación de Finalize los ajusta contra el agregado.
func leafAmount(item *entity.SaleItem, currency string) Amount {
	gross := money.Round(item.UnitPrice.Mul(item.Quantity), currency)

	base := gross
	var discounts []Adjustment
	for _, rate := range item.DiscountRates {
		d := money.Round(base.Mul(rate).Div(cien), currency)
		discounts = mergeAdjustment(discounts, Adjustment{
			Name: DiscountName(rate), Amount: d, Rate: rate,
		})
		base = base.Sub(d)
	}

	var taxes []Adjustment
	tax := decimal.Zero
	for _, rate := range item.TaxRates {
		t := base.Mul(rate).Div(cien)
		taxes = mergeAdjustment(taxes, Adjustment{
			Name: TaxName(rate), Amount: t, Rate: rate,
		})
		tax = tax.Add(t)
	}

	return Amount{
		Currency:  currency,
		Unit:      item.UnitPrice,
		Gross:     gross,
		Discount:  gross.Sub(base),
		Base:      base,
		Tax:       tax,
		Total:     base.Add(tax),
		Discounts: discounts,
		Taxes:     taxes,
	}
}

// compoundAmount un ítem compuesto no aporta precio propio: su monto es la
// fusión de todos sus hijos (públicos y privados por igual), con el
// unitario copiado del bruto resultante. Hijos con tasas de impuesto en
// conflicto bajo un compuesto sin grupo declarado son un error de datos.
func (c *AmountCalculator) compoundAmount(item *entity.SaleItem, currency string) (Amount, error) {
	if item.TaxGroupID == "" && mixedTaxRates(item.Children) {
		return Amount{}, fmt.Errorf("ítem compuesto %q: %w", item.Designation, domain.ErrTaxGroupMismatch)
	}

	amount := NewAmount(currency)
	for _, child := range item.Children {
		childAmount, err := c.calculateItem(child, currency)
		if err != nil {
			return Amount{}, err
		}
		amount, err = amount.Merge(childAmount)
		if err != nil {
			return Amount{}, err
		}
	}
	return amount.WithUnitFromGross(), nil
}

// parentAmount un padre no compuesto: su monto propio de línea más los
// hijos privados plegados y los hijos públicos acumulados hacia arriba.
func (c *AmountCalculator) parentAmount(item *entity.SaleItem, currency string) (Amount, error) {
	amount := leafAmount(item, currency)

	for _, child := range item.Children {
		if child.Private && item.TaxGroupID == "" && !sameTaxRates(item.TaxRates, child.TaxRates) {
			return Amount{}, fmt.Errorf("ítem %q, hijo privado %q: %w",
				item.Designation, child.Designation, domain.ErrTaxGroupMismatch)
		}
		childAmount, err := c.calculateItem(child, currency)
		if err != nil {
			return Amount{}, err
		}
		amount, err = amount.Merge(childAmount)
		if err != nil {
			return Amount{}, err
		}
	}
	return amount, nil
}

// collectPublicAmounts registra el monto finalizado de cada nodo público
// del subárbol. Los privados se omiten: solo existen dentro del agregado de
// su padre.
func (c *AmountCalculator) collectPublicAmounts(item *entity.SaleItem, currency string, into map[string]Amount) error {
	amount, err := c.calculateItem(item, currency)
	if err != nil {
		return err
	}
	into[item.ID] = amount.Finalize()
	for _, child := range item.Children {
		if child.Private {
			continue
		}
		if err := c.collectPublicAmounts(child, currency, into); err != nil {
			return err
		}
	}
	return nil
}

// applySaleDiscounts aplica los descuentos globales de la venta en cascada
// sobre la base del resultado final. Cada tramo reduce la base y escala los
// impuestos proporcionalmente, de modo que cada tasa siga gravando la
// porción de base que le corresponde.
func (c *AmountCalculator) applySaleDiscounts(sale *entity.Sale, final Amount) (Amount, error) {
	for _, adj := range sale.DiscountAdjustments() {
		amount, rate, err := adjustmentAmount(adj, final.Base)
		if err != nil {
			return Amount{}, err
		}
		name := adj.Designation
		if name == "" {
			name = DiscountName(rate)
		}

		newBase := final.Base.Sub(amount)
		if final.Base.IsPositive() {
			factor := newBase.Div(final.Base)
			scaled := make([]Adjustment, len(final.Taxes))
			for i, t := range final.Taxes {
				scaled[i] = Adjustment{Name: t.Name, Amount: t.Amount.Mul(factor), Rate: t.Rate}
			}
			final.Taxes = scaled
			final.Tax = final.Tax.Mul(factor)
		}

		final.Discounts = mergeAdjustment(final.Discounts, Adjustment{Name: name, Amount: amount, Rate: rate})
		final.Discount = final.Discount.Add(amount)
		final.Base = newBase
		final.Total = final.Base.Add(final.Tax)
	}
	return final, nil
}

// applySaleTaxations aplica los impuestos globales de la venta sobre la
// base ya descontada.
func (c *AmountCalculator) applySaleTaxations(sale *entity.Sale, final Amount) (Amount, error) {
	for _, adj := range sale.TaxationAdjustments() {
		amount, rate, err := adjustmentAmount(adj, final.Base)
		if err != nil {
			return Amount{}, err
		}
		name := adj.Designation
		if name == "" {
			name = TaxName(rate)
		}
		final.Taxes = mergeAdjustment(final.Taxes, Adjustment{Name: name, Amount: amount, Rate: rate})
		final.Tax = final.Tax.Add(amount)
		final.Total = final.Base.Add(final.Tax)
	}
	return final, nil
}

// adjustmentAmount resuelve el monto de un ajuste global sobre una base.
// El tipo ya viene validado por CalculateSale; un modo desconocido es un
// error de configuración, no se adivina.
func adjustmentAmount(adj entity.SaleAdjustment, base decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	switch adj.Mode {
	case entity.AdjustmentModePercent:
		return base.Mul(adj.Amount).Div(cien), adj.Amount, nil
	case entity.AdjustmentModeFlat:
		return adj.Amount, decimal.Zero, nil
	default:
		return decimal.Zero, decimal.Zero, fmt.Errorf("ajuste %q modo %q: %w",
			adj.Designation, adj.Mode, domain.ErrAdjustmentMode)
	}
}

// mixedTaxRates indica si los ítems tienen firmas de tasas de impuesto
// distintas entre sí.
func mixedTaxRates(items []*entity.SaleItem) bool {
	if len(items) < 2 {
		return false
	}
	first := items[0].TaxRates
	for _, it := range items[1:] {
		if !sameTaxRates(first, it.TaxRates) {
			return true
		}
	}
	return false
}

// sameTaxRates compara dos conjuntos de tasas sin importar el orden.
func sameTaxRates(a, b []decimal.Decimal) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
outer:
	for _, ra := range a {
		for i, rb := range b {
			if !used[i] && ra.Equal(rb) {
				used[i] = true
				continue outer
			}
		}
		return false
	}
	return true
}
