package usecase

import (
	"time"

	"github.com/jhoicas/ventas-pro/internal/application/dto"
	"github.com/jhoicas/ventas-pro/internal/domain"
	"github.com/jhoicas/ventas-pro/internal/domain/entity"
	"github.com/jhoicas/ventas-pro/internal/domain/repository"
)

// ExchangeRateUseCase registro y consulta de tasas de cambio. El conversor
// de márgenes lee estas mismas tasas.
type ExchangeRateUseCase struct {
	repo repository.ExchangeRateRepository
}

// NewExchangeRateUseCase construye el caso de uso.
func NewExchangeRateUseCase(repo repository.ExchangeRateRepository) *ExchangeRateUseCase {
	return &ExchangeRateUseCase{repo: repo}
}

// Save registra (o reemplaza) la tasa Base->Quote a la fecha dada.
func (uc *ExchangeRateUseCase) Save(in dto.SaveExchangeRateRequest) (*dto.ExchangeRateResponse, error) {
	if in.Base == "" || in.Quote == "" || in.Base == in.Quote || !in.Rate.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}
	rate := &entity.ExchangeRate{
		Base:  in.Base,
		Quote: in.Quote,
		Rate:  in.Rate,
		Date:  date,
	}
	if err := uc.repo.Save(rate); err != nil {
		return nil, err
	}
	return toExchangeRateResponse(rate), nil
}

// Latest devuelve la tasa más reciente del par.
func (uc *ExchangeRateUseCase) Latest(base, quote string) (*dto.ExchangeRateResponse, error) {
	if base == "" || quote == "" {
		return nil, domain.ErrInvalidInput
	}
	rate, err := uc.repo.Latest(base, quote)
	if err != nil {
		return nil, err
	}
	if rate == nil {
		return nil, domain.ErrNotFound
	}
	return toExchangeRateResponse(rate), nil
}

func toExchangeRateResponse(r *entity.ExchangeRate) *dto.ExchangeRateResponse {
	return &dto.ExchangeRateResponse{
		Base:  r.Base,
		Quote: r.Quote,
		Rate:  r.Rate,
		Date:  r.Date.Format("2006-01-02"),
	}
}
