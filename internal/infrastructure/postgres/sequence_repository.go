package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/smartcompta/internal/domain/entity"
	"github.com/jhoicas/smartcompta/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo implementación de SequenceRepository. Pensado para usarse con una pgx.Tx.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador.
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// GetForUpdate lee el contador bloqueando la fila hasta el fin de la transacción.
func (r *SequenceRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sequence, error) {
	query := `SELECT id, dernier_numero, annee FROM sequences WHERE id = $1 FOR UPDATE`
	var s entity.Sequence
	err := r.q.QueryRow(ctx, query, id).Scan(&s.ID, &s.DernierNumero, &s.Annee)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sequence: %w", err)
	}
	return &s, nil
}

// Create inserta el contador. Un alta concurrente de la misma clave se resuelve por el aislamiento de la tx.
func (r *SequenceRepo) Create(ctx context.Context, seq *entity.Sequence) error {
	query := `INSERT INTO sequences (id, dernier_numero, annee) VALUES ($1, $2, $3)`
	if _, err := r.q.Exec(ctx, query, seq.ID, seq.DernierNumero, seq.Annee); err != nil {
		return fmt.Errorf("insert sequence: %w", err)
	}
	return nil
}

// Update persiste último número y año.
func (r *SequenceRepo) Update(ctx context.Context, seq *entity.Sequence) error {
	query := `UPDATE sequences SET dernier_numero = $2, annee = $3 WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, seq.ID, seq.DernierNumero, seq.Annee)
	if err != nil {
		return fmt.Errorf("update sequence: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("update sequence %s: %d filas afectadas", seq.ID, tag.RowsAffected())
	}
	return nil
}
