package workflow

import (
	"context"

	"github.com/jhoicas/smartcompta/internal/application/dto"
)

// Backend las tres llamadas de red del flujo (implementado por apiclient.Client).
type Backend interface {
	Transcribe(ctx context.Context, audio dto.Audio) (*dto.TranscribeResponse, error)
	Extract(ctx context.Context, transcript string) (*dto.ExtractResponse, error)
	CreateFacture(ctx context.Context, req dto.FactureActionRequest) (*dto.FactureResponse, error)
}

// Session ejecuta las llamadas del backend al ritmo de la máquina de estados.
type Session struct {
	m       *Machine
	backend Backend
}

// NewSession crea una sesión en idle.
func NewSession(backend Backend) *Session {
	return &Session{m: NewMachine(), backend: backend}
}

// Machine expone la máquina para lectura de estado y edición del borrador.
func (s *Session) Machine() *Machine { return s.m }

// Dictate transcribe y extrae el audio hasta dejar el borrador en editing.
// Cualquier fallo deja la máquina en idle con el error registrado.
func (s *Session) Dictate(ctx context.Context, audio dto.Audio) error {
	if err := s.m.AudioReady(); err != nil {
		return err
	}

	tr, err := s.backend.Transcribe(ctx, audio)
	if err != nil {
		_ = s.m.Fail(err)
		return err
	}
	if err := s.m.Transcribed(tr.Transcription); err != nil {
		return err
	}

	ex, err := s.backend.Extract(ctx, tr.Transcription)
	if err != nil {
		_ = s.m.Fail(err)
		return err
	}
	return s.m.Extracted(ex.Data, ex.Client)
}

// Submit envía el borrador. Si la creación falla la máquina vuelve a editing con el borrador intacto.
func (s *Session) Submit(ctx context.Context) (*dto.FactureResponse, error) {
	d, err := s.m.Submit()
	if err != nil {
		return nil, err
	}

	f, err := s.backend.CreateFacture(ctx, dto.FactureActionRequest{
		Action:        dto.ActionCreate,
		NumDossier:    d.NumDossier,
		MontantHT:     d.MontantHT,
		Prestation:    d.Prestation,
		GenererStripe: d.GenererStripe,
	})
	if err != nil {
		_ = s.m.Fail(err)
		return nil, err
	}
	if err := s.m.Created(f); err != nil {
		return nil, err
	}
	return f, nil
}
