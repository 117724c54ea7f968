package entity

import "time"

// Customer representa un cliente de la empresa. Address y Country alimentan
// los documentos generados (PDF y XML UBL).
type Customer struct {
	ID        string
	CompanyID string
	Name      string
	TaxID     string
	Email     string
	Phone     string
	Address   string
	Country   string // código ISO 3166-1 alfa-2
	CreatedAt time.Time
	UpdatedAt time.Time
}
