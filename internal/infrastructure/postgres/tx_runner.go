package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/smartcompta/internal/application/billing"
	"github.com/jhoicas/smartcompta/internal/domain"
	"github.com/jhoicas/smartcompta/internal/domain/repository"
)

// Ensure TxRunner implements billing.SequenceTxRunner.
var _ billing.SequenceTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunSequence inicia una transacción SERIALIZABLE, ejecuta fn con el repo de secuencias atado a la tx
// y hace Commit o Rollback. Si otra transacción gana la carrera, el error envuelve domain.ErrConflict.
//
// FOR UPDATE solo serializa cuando la fila ya existe; la primera emisión la inserta y dos altas
// simultáneas solo se detectan con SERIALIZABLE. El precio es que un segundo llamante concurrente
// recibe 40001 (409 en la API) en lugar de esperar al lock; el cliente reintenta.
func (r *TxRunner) RunSequence(ctx context.Context, fn func(seqRepo repository.SequenceRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewSequenceRepository(tx)); err != nil {
		// 23505: alta simultánea de la fila del contador.
		if isSerializationFailure(err) || isUniqueViolation(err) {
			return fmt.Errorf("%w: %v", domain.ErrConflict, err)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if isSerializationFailure(err) {
			return fmt.Errorf("%w: %v", domain.ErrConflict, err)
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
