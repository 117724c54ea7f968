package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
)

// Errores de configuración del árbol de venta. Indican datos mal construidos
// aguas arriba: el motor de cálculo no intenta recuperarse ni producir
// resultados parciales.
var (
	ErrRootItemPrivate  = errors.New("el ítem raíz de una venta no puede ser privado")
	ErrCurrencyMismatch = errors.New("las monedas de los montos no coinciden")
	ErrTaxGroupMismatch = errors.New("grupo de impuestos ambiguo en la agregación de ítems")
	ErrAdjustmentType   = errors.New("tipo de ajuste desconocido")
	ErrAdjustmentMode   = errors.New("modo de ajuste desconocido")
)
