package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidReference  = errors.New("referencia a entidad inexistente")
	ErrDuplicateSKU      = errors.New("el SKU ya está registrado")
	ErrInvalidQuantity   = errors.New("cantidad inválida")
	ErrInvalidPrice      = errors.New("precio inválido")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrTxConflict        = errors.New("conflicto transaccional, reintentos agotados")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrUserNotFound      = errors.New("usuario no encontrado")
	ErrUsernameTaken     = errors.New("el nombre de usuario ya existe")
)

// InsufficientStockError indica qué producto quedó corto y por cuánto.
// errors.Is(err, ErrInsufficientStock) == true.
type InsufficientStockError struct {
	ProductID string
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para producto %s: solicitado %d, disponible %d",
		e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// LineError señala la línea (índice base cero) de una compra o venta que no pasó
// la validación, envolviendo el error de dominio correspondiente.
type LineError struct {
	Index int
	Err   error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("línea %d: %v", e.Index, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }
