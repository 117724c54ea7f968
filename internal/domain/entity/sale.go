package entity

import "time"

// Estados del ciclo de vida de una venta.
const (
	SaleStatusQuote     = "quote"     // cotización, aún editable
	SaleStatusAccepted  = "accepted"  // aceptada por el cliente
	SaleStatusInvoiced  = "invoiced"  // con factura emitida
	SaleStatusCancelled = "cancelled"
)

// Sale representa una venta (cotización, pedido) con su árbol de ítems,
// ajustes globales y envío. Es la entrada del motor de cálculo de montos.
type Sale struct {
	ID          string
	CompanyID   string
	CustomerID  string
	Number      string
	Status      string
	Currency    string // código ISO 4217 (EUR, USD, COP...)
	Date        time.Time
	Items       []*SaleItem      // ítems raíz, en orden de posición
	Adjustments []SaleAdjustment // ajustes a nivel de venta (descuento global, impuesto global)
	Shipment    *Shipment        // nil = la venta no tiene envío
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DiscountAdjustments devuelve los ajustes globales de tipo descuento, en orden.
func (s *Sale) DiscountAdjustments() []SaleAdjustment {
	return s.adjustmentsOfType(AdjustmentTypeDiscount)
}

// TaxationAdjustments devuelve los ajustes globales de tipo impuesto, en orden.
func (s *Sale) TaxationAdjustments() []SaleAdjustment {
	return s.adjustmentsOfType(AdjustmentTypeTaxation)
}

func (s *Sale) adjustmentsOfType(t AdjustmentType) []SaleAdjustment {
	var out []SaleAdjustment
	for _, a := range s.Adjustments {
		if a.Type == t {
			out = append(out, a)
		}
	}
	return out
}
