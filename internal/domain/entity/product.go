package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU vendible (el "sujeto" de una línea
// de venta). Las tasas de impuesto de cada línea llegan ya resueltas; aquí
// solo se conserva el grupo al que pertenece el producto.
type Product struct {
	ID          string
	CompanyID   string
	SKU         string // código único por empresa
	Name        string
	Description string
	Price       decimal.Decimal // precio de venta neto sugerido
	TaxGroupID  string
	UnitMeasure string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
