package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/smartcompta/internal/application/billing"
	"github.com/jhoicas/smartcompta/internal/domain"
	"github.com/jhoicas/smartcompta/internal/domain/entity"
)

// scriptedRow pgx.Row con valores fijos para string/int.
type scriptedRow struct {
	vals []any
	err  error
}

func (r scriptedRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.vals) {
		return fmt.Errorf("scan: %d destinos, %d valores", len(dest), len(r.vals))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = r.vals[i].(string)
		case *int:
			*p = r.vals[i].(int)
		default:
			return fmt.Errorf("scan: destino %T no soportado", d)
		}
	}
	return nil
}

// recordingQuerier guarda SQL y argumentos de cada llamada.
type recordingQuerier struct {
	sql  []string
	args [][]any
	row  scriptedRow
	tag  pgconn.CommandTag
	err  error
}

func (q *recordingQuerier) record(sql string, args []any) {
	q.sql = append(q.sql, sql)
	q.args = append(q.args, args)
}

func (q *recordingQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.record(sql, args)
	return q.tag, q.err
}

func (q *recordingQuerier) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	q.record(sql, args)
	return nil, errors.New("Query no usado por SequenceRepo")
}

func (q *recordingQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	q.record(sql, args)
	return q.row
}

func TestSequenceRepo_GetForUpdate(t *testing.T) {
	q := &recordingQuerier{row: scriptedRow{vals: []any{entity.SequenceFactures, 41, 2026}}}

	seq, err := NewSequenceRepository(q).GetForUpdate(context.Background(), entity.SequenceFactures)

	require.NoError(t, err)
	assert.Equal(t, &entity.Sequence{ID: entity.SequenceFactures, DernierNumero: 41, Annee: 2026}, seq)
	require.Len(t, q.sql, 1)
	assert.Contains(t, q.sql[0], "FOR UPDATE")
	assert.Equal(t, []any{entity.SequenceFactures}, q.args[0])
}

func TestSequenceRepo_GetForUpdateSinFila(t *testing.T) {
	q := &recordingQuerier{row: scriptedRow{err: pgx.ErrNoRows}}

	seq, err := NewSequenceRepository(q).GetForUpdate(context.Background(), entity.SequenceFactures)

	require.NoError(t, err)
	assert.Nil(t, seq)
}

func TestSequenceRepo_GetForUpdateConservaCausa(t *testing.T) {
	cause := &pgconn.PgError{Code: "40001"}
	q := &recordingQuerier{row: scriptedRow{err: cause}}

	_, err := NewSequenceRepository(q).GetForUpdate(context.Background(), entity.SequenceFactures)

	require.Error(t, err)
	assert.True(t, isSerializationFailure(err))
}

func TestSequenceRepo_CreateYUpdate(t *testing.T) {
	q := &recordingQuerier{tag: pgconn.NewCommandTag("UPDATE 1")}
	repo := NewSequenceRepository(q)
	seq := &entity.Sequence{ID: entity.SequenceFactures, DernierNumero: 3, Annee: 2026}

	require.NoError(t, repo.Create(context.Background(), seq))
	require.NoError(t, repo.Update(context.Background(), seq))

	require.Len(t, q.sql, 2)
	assert.Contains(t, q.sql[0], "INSERT INTO sequences")
	assert.Equal(t, []any{entity.SequenceFactures, 3, 2026}, q.args[0])
	assert.Contains(t, q.sql[1], "UPDATE sequences")
	assert.Equal(t, []any{entity.SequenceFactures, 3, 2026}, q.args[1])
}

func TestSequenceRepo_UpdateSinFilaAfectadaEsError(t *testing.T) {
	q := &recordingQuerier{tag: pgconn.NewCommandTag("UPDATE 0")}

	err := NewSequenceRepository(q).Update(context.Background(), &entity.Sequence{ID: "x", Annee: 2026})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "0 filas")
}

// TestTxRunner_NumeracionConcurrente necesita una base PostgreSQL desechable:
// SMARTCOMPTA_TEST_DATABASE_URL=postgres://... go test ./internal/infrastructure/postgres/
func TestTxRunner_NumeracionConcurrente(t *testing.T) {
	dsn := os.Getenv("SMARTCOMPTA_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("SMARTCOMPTA_TEST_DATABASE_URL no definido")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	require.NoError(t, RunMigrations(dsn))
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()
	_, err = pool.Exec(ctx, `DELETE FROM sequences WHERE id = $1`, entity.SequenceFactures)
	require.NoError(t, err)

	numbering := billing.NewNumberingUseCase(NewTxRunner(pool))
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	const callers = 8
	var (
		mu  sync.Mutex
		got []int
		wg  sync.WaitGroup
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				n, err := numbering.NextInvoiceNumberAt(ctx, now)
				if errors.Is(err, domain.ErrConflict) {
					continue
				}
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				got = append(got, n.SequentialNumber)
				mu.Unlock()
				return
			}
		}()
	}
	wg.Wait()

	sort.Ints(got)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, got)
}
