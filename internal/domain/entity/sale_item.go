package entity

import "github.com/shopspring/decimal"

// SaleItemKind clasifica un ítem según su papel en el árbol de la venta.
type SaleItemKind int

const (
	// SaleItemLeaf línea simple: precio propio, sin hijos.
	SaleItemLeaf SaleItemKind = iota
	// SaleItemCompound nodo de paso: sin precio propio, sus totales son la
	// suma de sus hijos.
	SaleItemCompound
	// SaleItemParent línea con precio propio y además hijos.
	SaleItemParent
)

// SaleItem representa una línea de venta. Los descuentos se aplican en
// cascada (cada tasa sobre la base restante) y los impuestos en paralelo
// sobre la base ya descontada. Las tasas llegan ya resueltas: este modelo
// no decide qué impuesto corresponde a qué producto.
type SaleItem struct {
	ID            string
	SaleID        string
	ParentID      string // vacío = ítem raíz
	ProductID     string // sujeto resuelto; vacío para líneas libres
	Designation   string
	UnitPrice     decimal.Decimal   // precio unitario neto
	Quantity      decimal.Decimal
	DiscountRates []decimal.Decimal // cascada, en orden
	TaxRates      []decimal.Decimal // porcentajes aplicados en paralelo
	TaxGroupID    string            // vacío = sin grupo declarado
	Private       bool              // se pliega en los totales del padre
	Compound      bool              // sin contribución de precio propia
	Position      int
	Children      []*SaleItem
}

// Kind devuelve la variante del ítem (hoja, compuesto o padre).
func (i *SaleItem) Kind() SaleItemKind {
	if i.Compound {
		return SaleItemCompound
	}
	if len(i.Children) > 0 {
		return SaleItemParent
	}
	return SaleItemLeaf
}

// HasChildren indica si el ítem tiene hijos.
func (i *SaleItem) HasChildren() bool { return len(i.Children) > 0 }

// PublicChildren devuelve los hijos no privados, en orden.
func (i *SaleItem) PublicChildren() []*SaleItem {
	var out []*SaleItem
	for _, c := range i.Children {
		if !c.Private {
			out = append(out, c)
		}
	}
	return out
}

// PrivateChildren devuelve los hijos privados, en orden.
func (i *SaleItem) PrivateChildren() []*SaleItem {
	var out []*SaleItem
	for _, c := range i.Children {
		if c.Private {
			out = append(out, c)
		}
	}
	return out
}
