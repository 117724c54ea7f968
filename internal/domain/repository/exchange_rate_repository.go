package repository

import "github.com/jhoicas/ventas-pro/internal/domain/entity"

// ExchangeRateRepository define el puerto de persistencia para tasas de
// cambio. Las tasas se cargan desde un origen externo; aquí solo se leen.
type ExchangeRateRepository interface {
	// Latest devuelve la tasa Base->Quote más reciente. nil sin error si no
	// hay tasa registrada para el par.
	Latest(base, quote string) (*entity.ExchangeRate, error)
	Save(rate *entity.ExchangeRate) error
}
