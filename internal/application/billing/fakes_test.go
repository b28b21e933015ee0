package billing_test

import (
	"context"
	"errors"
	"sync"

	"github.com/jhoicas/smartcompta/internal/application/dto"
	"github.com/jhoicas/smartcompta/internal/domain/entity"
	"github.com/jhoicas/smartcompta/internal/domain/repository"
)

// memSequenceStore simula la fila del contador: RunSequence serializa las transacciones
// (como el bloqueo de fila) y solo publica los cambios si fn no falla.
type memSequenceStore struct {
	mu        sync.Mutex
	rows      map[string]entity.Sequence
	failWith  error // si no es nil, el "commit" falla
	committed int
}

func newMemSequenceStore() *memSequenceStore {
	return &memSequenceStore{rows: map[string]entity.Sequence{}}
}

func (s *memSequenceStore) RunSequence(ctx context.Context, fn func(seqRepo repository.SequenceRepository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := make(map[string]entity.Sequence, len(s.rows))
	for k, v := range s.rows {
		work[k] = v
	}
	if err := fn(&memSequenceTx{rows: work}); err != nil {
		return err
	}
	if s.failWith != nil {
		return s.failWith
	}
	s.rows = work
	s.committed++
	return nil
}

type memSequenceTx struct {
	rows map[string]entity.Sequence
}

func (t *memSequenceTx) GetForUpdate(_ context.Context, id string) (*entity.Sequence, error) {
	seq, ok := t.rows[id]
	if !ok {
		return nil, nil
	}
	return &seq, nil
}

func (t *memSequenceTx) Create(_ context.Context, seq *entity.Sequence) error {
	if _, ok := t.rows[seq.ID]; ok {
		return errors.New("duplicate sequence")
	}
	t.rows[seq.ID] = *seq
	return nil
}

func (t *memSequenceTx) Update(_ context.Context, seq *entity.Sequence) error {
	t.rows[seq.ID] = *seq
	return nil
}

type memClientRepo struct {
	byID map[string]*entity.Client
}

func newMemClientRepo(clients ...*entity.Client) *memClientRepo {
	r := &memClientRepo{byID: map[string]*entity.Client{}}
	for _, c := range clients {
		r.byID[c.ID] = c
	}
	return r
}

func (r *memClientRepo) GetByID(_ context.Context, id string) (*entity.Client, error) {
	return r.byID[id], nil
}

func (r *memClientRepo) GetByNumDossier(_ context.Context, numDossier string) (*entity.Client, error) {
	for _, c := range r.byID {
		if c.NumDossier == numDossier {
			return c, nil
		}
	}
	return nil, nil
}

func (r *memClientRepo) Search(_ context.Context, _ string, limit, _ int) ([]*entity.Client, error) {
	out := make([]*entity.Client, 0, len(r.byID))
	for _, c := range r.byID {
		if len(out) == limit {
			break
		}
		out = append(out, c)
	}
	return out, nil
}

type memFactureRepo struct {
	created []*entity.Facture
	failErr error
}

func (r *memFactureRepo) Create(_ context.Context, f *entity.Facture) error {
	if r.failErr != nil {
		return r.failErr
	}
	r.created = append(r.created, f)
	return nil
}

func (r *memFactureRepo) GetByID(_ context.Context, id string) (*entity.Facture, error) {
	for _, f := range r.created {
		if f.ID == id {
			return f, nil
		}
	}
	return nil, nil
}

type fakePayments struct {
	calls []dto.PaymentLinkRequest
	link  *dto.PaymentLink
	err   error
}

func (p *fakePayments) CreatePaymentLink(_ context.Context, req dto.PaymentLinkRequest) (*dto.PaymentLink, error) {
	p.calls = append(p.calls, req)
	if p.err != nil {
		return nil, p.err
	}
	return p.link, nil
}
