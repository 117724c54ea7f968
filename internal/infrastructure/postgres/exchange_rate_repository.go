package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-pro/internal/domain"
	"github.com/jhoicas/ventas-pro/internal/domain/entity"
	"github.com/jhoicas/ventas-pro/internal/domain/pricing"
	"github.com/jhoicas/ventas-pro/internal/domain/repository"
)

var _ repository.ExchangeRateRepository = (*ExchangeRateRepo)(nil)
var _ pricing.CurrencyConverter = (*ExchangeRateRepo)(nil)

// ExchangeRateRepo implementación del puerto de tasas de cambio (usable con
// pool o tx). También sirve de convertidor de moneda para el calculador de
// márgenes: usa la tasa directa más reciente y, en su defecto, la inversa.
type ExchangeRateRepo struct {
	q Querier
}

// NewExchangeRateRepository construye el adaptador. Pasar pool o tx (Querier).
func NewExchangeRateRepository(q Querier) *ExchangeRateRepo {
	return &ExchangeRateRepo{q: q}
}

// Latest devuelve la tasa Base->Quote más reciente, nil si no hay.
func (r *ExchangeRateRepo) Latest(base, quote string) (*entity.ExchangeRate, error) {
	query := `
		SELECT base, quote, rate, date
		FROM exchange_rates WHERE base = $1 AND quote = $2
		ORDER BY date DESC LIMIT 1`
	var er entity.ExchangeRate
	err := r.q.QueryRow(context.Background(), query, base, quote).Scan(
		&er.Base, &er.Quote, &er.Rate, &er.Date,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get exchange rate: %w", err)
	}
	return &er, nil
}

// Save registra una tasa.
func (r *ExchangeRateRepo) Save(rate *entity.ExchangeRate) error {
	_, err := r.q.Exec(context.Background(), `
		INSERT INTO exchange_rates (base, quote, rate, date)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (base, quote, date) DO UPDATE SET rate = EXCLUDED.rate`,
		rate.Base, rate.Quote, rate.Rate, rate.Date,
	)
	if err != nil {
		return fmt.Errorf("save exchange rate: %w", err)
	}
	return nil
}

// Convert convierte un monto con la tasa directa más reciente; si no existe,
// intenta la inversa. Sin tasa registrada en ningún sentido es un error.
func (r *ExchangeRateRepo) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}
	direct, err := r.Latest(from, to)
	if err != nil {
		return decimal.Zero, err
	}
	if direct != nil {
		return amount.Mul(direct.Rate), nil
	}
	inverse, err := r.Latest(to, from)
	if err != nil {
		return decimal.Zero, err
	}
	if inverse == nil || !inverse.Rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("tasa %s->%s: %w", from, to, domain.ErrNotFound)
	}
	return amount.Div(inverse.Rate), nil
}
