package entity

import "time"

// Company representa una organización/tenant del sistema (multi-tenant).
// Currency es la moneda por defecto de sus ventas y la moneda de referencia
// del calculador de márgenes.
type Company struct {
	ID        string
	Name      string
	TaxID     string // identificación tributaria en su jurisdicción
	Address   string
	Country   string // código ISO 3166-1 alfa-2 (CO, ES, US...)
	Currency  string // código ISO 4217 (COP, EUR, USD...)
	Phone     string
	Email     string
	Status    string // active, suspended, inactive
	CreatedAt time.Time
	UpdatedAt time.Time
}
