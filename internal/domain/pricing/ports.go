package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-pro/internal/domain/entity"
)

// Colaboradores externos del motor. Pueden hacer I/O (consultas a base de
// datos) y por tanto bloquear al llamador; sus fallos se propagan sin
// reintentos, la resiliencia es responsabilidad del colaborador o del
// llamador.

// SubjectResolver resuelve el sujeto (producto) de una línea de venta.
// Devuelve nil sin error cuando la línea no tiene sujeto.
type SubjectResolver interface {
	Resolve(item *entity.SaleItem) (*entity.Product, error)
}

// PurchaseCostGuesser estima el costo unitario de compra de un sujeto
// cuando no hay lotes asignados. ok=false cuando no hay datos para estimar.
type PurchaseCostGuesser interface {
	Guess(product *entity.Product, currency string, shipping bool) (decimal.Decimal, bool, error)
}

// StockAssignmentProvider entrega los lotes de stock asignados a una línea
// de venta, con sus unidades cargadas.
type StockAssignmentProvider interface {
	ForSaleItem(item *entity.SaleItem) ([]entity.StockAssignment, error)
}

// InvoiceQuantityCalculator cantidades facturadas y acreditadas de una
// línea de venta, para restringir márgenes a lo realmente facturado.
type InvoiceQuantityCalculator interface {
	InvoicedQuantity(item *entity.SaleItem) (decimal.Decimal, error)
	CreditedQuantity(item *entity.SaleItem) (decimal.Decimal, error)
}

// CurrencyConverter convierte un monto entre monedas. La procedencia de las
// tasas es una caja negra para el motor.
type CurrencyConverter interface {
	Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error)
}
