package http_test

import (
	"context"
	"sync"

	"github.com/jhoicas/smartcompta/internal/application/dto"
	"github.com/jhoicas/smartcompta/internal/domain/entity"
	"github.com/jhoicas/smartcompta/internal/domain/repository"
)

type memSequences struct {
	mu  sync.Mutex
	seq map[string]entity.Sequence
}

func (m *memSequences) RunSequence(ctx context.Context, fn func(repository.SequenceRepository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m)
}

func (m *memSequences) GetForUpdate(_ context.Context, id string) (*entity.Sequence, error) {
	s, ok := m.seq[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memSequences) Create(_ context.Context, s *entity.Sequence) error {
	m.seq[s.ID] = *s
	return nil
}

func (m *memSequences) Update(_ context.Context, s *entity.Sequence) error {
	m.seq[s.ID] = *s
	return nil
}

type memClients struct{ list []*entity.Client }

func (m *memClients) GetByID(_ context.Context, id string) (*entity.Client, error) {
	for _, c := range m.list {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (m *memClients) GetByNumDossier(_ context.Context, n string) (*entity.Client, error) {
	for _, c := range m.list {
		if c.NumDossier == n {
			return c, nil
		}
	}
	return nil, nil
}

func (m *memClients) Search(_ context.Context, _ string, limit, offset int) ([]*entity.Client, error) {
	if offset >= len(m.list) {
		return []*entity.Client{}, nil
	}
	end := offset + limit
	if end > len(m.list) {
		end = len(m.list)
	}
	return m.list[offset:end], nil
}

type memFactures struct {
	mu        sync.Mutex
	byID      map[string]*entity.Facture
	createErr error
}

func (m *memFactures) Create(_ context.Context, f *entity.Facture) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.byID[f.ID] = f
	return nil
}

func (m *memFactures) GetByID(_ context.Context, id string) (*entity.Facture, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[id], nil
}

type stubTranscriber struct {
	text string
	err  error
}

func (s *stubTranscriber) Transcribe(context.Context, dto.Audio) (string, error) { return s.text, s.err }

type stubExtractor struct {
	fields *dto.ExtractedFields
	err    error
}

func (s *stubExtractor) ExtractFields(context.Context, string) (*dto.ExtractedFields, error) {
	return s.fields, s.err
}

type stubPayments struct {
	link *dto.PaymentLink
	err  error
}

func (s *stubPayments) CreatePaymentLink(context.Context, dto.PaymentLinkRequest) (*dto.PaymentLink, error) {
	return s.link, s.err
}

type stubPDF struct{}

func (stubPDF) GenerateFacturePDF(_ context.Context, f *entity.Facture) ([]byte, error) {
	return []byte("%PDF-1.3 " + f.NumeroComplet), nil
}
