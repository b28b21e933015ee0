package repository

import (
	"context"

	"github.com/jhoicas/smartcompta/internal/domain/entity"
)

// SequenceRepository puerto del contador de numeración. Solo se usa dentro de la transacción
// de numeración: GetForUpdate bloquea la fila hasta el commit.
type SequenceRepository interface {
	// GetForUpdate devuelve nil, nil si la clave todavía no existe.
	GetForUpdate(ctx context.Context, id string) (*entity.Sequence, error)
	Create(ctx context.Context, seq *entity.Sequence) error
	Update(ctx context.Context, seq *entity.Sequence) error
}
