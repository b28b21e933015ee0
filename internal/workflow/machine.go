// Package workflow secuencia el dictado de una factura en el cliente: grabación, transcripción,
// extracción, edición del borrador y creación. Un único flujo a la vez, sin peticiones en paralelo.
package workflow

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/smartcompta/internal/application/dto"
)

// State paso actual del flujo.
type State string

const (
	StateIdle         State = "idle"
	StateRecording    State = "recording"
	StateTranscribing State = "transcribing"
	StateExtracting   State = "extracting"
	StateEditing      State = "editing"
	StateCreating     State = "creating"
	StateSuccess      State = "success"
)

// Event causa de un cambio de estado.
type Event string

const (
	EventStartRecording Event = "start_recording"
	EventAudioReady     Event = "audio_ready"
	EventTranscribed    Event = "transcribed"
	EventExtracted      Event = "extracted"
	EventSubmit         Event = "submit"
	EventCreated        Event = "created"
	EventFailed         Event = "failed"
	EventCancel         Event = "cancel"
	EventNewInvoice     Event = "new_invoice"
)

// ErrIllegalTransition el evento no está permitido en el estado actual.
var ErrIllegalTransition = errors.New("transición no permitida")

// transitions tabla completa; lo que no figura aquí es ilegal.
var transitions = map[State]map[Event]State{
	StateIdle: {
		EventStartRecording: StateRecording,
		EventAudioReady:     StateTranscribing, // audio ya grabado (fichero)
	},
	StateRecording: {
		EventAudioReady: StateTranscribing,
		EventCancel:     StateIdle,
	},
	StateTranscribing: {
		EventTranscribed: StateExtracting,
		EventFailed:      StateIdle,
	},
	StateExtracting: {
		EventExtracted: StateEditing,
		EventFailed:    StateIdle,
	},
	StateEditing: {
		EventSubmit: StateCreating,
		EventCancel: StateIdle,
	},
	StateCreating: {
		EventCreated: StateSuccess,
		EventFailed:  StateEditing,
	},
	StateSuccess: {
		EventNewInvoice: StateIdle,
	},
}

// Draft borrador editable de la factura. Nada de esto se persiste hasta Submit.
type Draft struct {
	NumDossier    string
	MontantHT     decimal.Decimal
	Prestation    string
	GenererStripe bool
	Client        *dto.ClientResponse // nil = numDossier sin cliente conocido
}

// Machine máquina de estados del flujo. No es segura para uso concurrente: el cliente es secuencial.
type Machine struct {
	state      State
	transcript string
	draft      *Draft
	facture    *dto.FactureResponse
	lastErr    string
}

// NewMachine arranca en idle.
func NewMachine() *Machine {
	return &Machine{state: StateIdle}
}

// State estado actual.
func (m *Machine) State() State {
	return m.state
}

// Transcript última transcripción; se conserva si la extracción falla.
func (m *Machine) Transcript() string {
	return m.transcript
}

// LastError mensaje del último fallo, para mostrarlo al usuario.
func (m *Machine) LastError() string {
	return m.lastErr
}

// Facture factura creada (solo en success).
func (m *Machine) Facture() *dto.FactureResponse {
	return m.facture
}

// Draft devuelve una copia del borrador (nil fuera de editing/creating/success).
func (m *Machine) Draft() *Draft {
	if m.draft == nil {
		return nil
	}
	d := *m.draft
	return &d
}

// Can indica si ev es legal en el estado actual.
func (m *Machine) Can(ev Event) bool {
	_, ok := transitions[m.state][ev]
	return ok
}

func (m *Machine) fire(ev Event) error {
	next, ok := transitions[m.state][ev]
	if !ok {
		return fmt.Errorf("%w: %s en %s", ErrIllegalTransition, ev, m.state)
	}
	log.Debug().Str("from", string(m.state)).Str("event", string(ev)).Str("to", string(next)).Msg("workflow")
	m.state = next
	return nil
}

// StartRecording idle → recording.
func (m *Machine) StartRecording() error {
	if err := m.fire(EventStartRecording); err != nil {
		return err
	}
	m.lastErr = ""
	return nil
}

// AudioReady fin de grabación (o audio cargado desde fichero): → transcribing.
func (m *Machine) AudioReady() error {
	if err := m.fire(EventAudioReady); err != nil {
		return err
	}
	m.lastErr = ""
	return nil
}

// Transcribed transcribing → extracting, guardando el texto.
func (m *Machine) Transcribed(text string) error {
	if err := m.fire(EventTranscribed); err != nil {
		return err
	}
	m.transcript = text
	return nil
}

// Extracted extracting → editing con el borrador propuesto, haya o no cliente.
func (m *Machine) Extracted(fields *dto.ExtractedFields, client *dto.ClientResponse) error {
	if err := m.fire(EventExtracted); err != nil {
		return err
	}
	d := &Draft{Client: client}
	if fields != nil {
		d.NumDossier = fields.NumDossier
		d.MontantHT = fields.MontantHT
		d.Prestation = fields.Prestation
	}
	m.draft = d
	return nil
}

// Edit modifica el borrador; solo en editing.
func (m *Machine) Edit(fn func(d *Draft)) error {
	if m.state != StateEditing {
		return fmt.Errorf("%w: edit en %s", ErrIllegalTransition, m.state)
	}
	fn(m.draft)
	return nil
}

// Submit editing → creating. Devuelve la copia del borrador a enviar.
func (m *Machine) Submit() (Draft, error) {
	if err := m.fire(EventSubmit); err != nil {
		return Draft{}, err
	}
	m.lastErr = ""
	return *m.draft, nil
}

// Created creating → success.
func (m *Machine) Created(f *dto.FactureResponse) error {
	if err := m.fire(EventCreated); err != nil {
		return err
	}
	m.facture = f
	return nil
}

// Fail registra el error del paso en curso. En transcribing/extracting vuelve a idle conservando la
// transcripción; en creating vuelve a editing conservando el borrador.
func (m *Machine) Fail(cause error) error {
	if err := m.fire(EventFailed); err != nil {
		return err
	}
	if cause != nil {
		m.lastErr = cause.Error()
	}
	return nil
}

// Cancel en editing descarta el borrador; en recording abandona la grabación.
func (m *Machine) Cancel() error {
	if err := m.fire(EventCancel); err != nil {
		return err
	}
	m.reset()
	return nil
}

// NewInvoice success → idle, limpiando todo el estado.
func (m *Machine) NewInvoice() error {
	if err := m.fire(EventNewInvoice); err != nil {
		return err
	}
	m.reset()
	return nil
}

func (m *Machine) reset() {
	m.transcript = ""
	m.draft = nil
	m.facture = nil
	m.lastErr = ""
}
