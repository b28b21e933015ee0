// Package voice orquesta la parte vocal del flujo de facturación: transcripción del dictado y
// extracción de los campos de la factura, con búsqueda del cliente extraído.
package voice

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jhoicas/smartcompta/internal/application/billing"
	"github.com/jhoicas/smartcompta/internal/application/dto"
	"github.com/jhoicas/smartcompta/internal/application/ports"
	"github.com/jhoicas/smartcompta/internal/domain"
	"github.com/jhoicas/smartcompta/internal/domain/entity"
)

// DemoTranscript texto devuelto cuando no hay clave de speech-to-text, para que la interfaz siga usable.
const DemoTranscript = "[DÉMO] Dossier AM0028, tenue de comptabilité du mois de mars, 450 euros hors taxes."

// DemoMessage explica al usuario por qué recibe la transcripción de demostración.
const DemoMessage = "Transcription de démonstration : aucune clé de reconnaissance vocale n'est configurée."

// ClientFinder búsqueda de cliente por numDossier (billing.ClientUseCase).
type ClientFinder interface {
	Lookup(ctx context.Context, numDossier string) (*entity.Client, error)
}

// VoiceUseCase envuelve las dos llamadas al proveedor IA y convierte sus fallos en resultados estructurados.
// Aplica un timeout por llamada para que la latencia externa no bloquee el handler indefinidamente.
type VoiceUseCase struct {
	transcriber ports.Transcriber
	extractor   ports.FieldExtractor
	clients     ClientFinder
	timeout     time.Duration
}

// NewVoiceUseCase construye el caso de uso. timeout <= 0 deja solo el del cliente HTTP.
func NewVoiceUseCase(transcriber ports.Transcriber, extractor ports.FieldExtractor, clients ClientFinder, timeout time.Duration) *VoiceUseCase {
	return &VoiceUseCase{
		transcriber: transcriber,
		extractor:   extractor,
		clients:     clients,
		timeout:     timeout,
	}
}

func (uc *VoiceUseCase) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if uc.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, uc.timeout)
}

// Transcribe convierte el audio en texto. Sin credenciales devuelve la transcripción de demo (Demo=true).
// En caso de fallo el resultado lleva OK=false y el mensaje, y err conserva la causa para el mapeo HTTP.
func (uc *VoiceUseCase) Transcribe(ctx context.Context, audio dto.Audio) (*dto.TranscriptionResult, error) {
	if len(audio.Data) == 0 {
		return &dto.TranscriptionResult{Error: "audio vide"}, domain.ErrInvalidInput
	}

	ctx, cancel := uc.withTimeout(ctx)
	defer cancel()

	text, err := uc.transcriber.Transcribe(ctx, audio)
	if errors.Is(err, domain.ErrProviderNotConfigured) {
		log.Warn().Msg("speech-to-text sin clave: se devuelve la transcripción de demostración")
		return &dto.TranscriptionResult{OK: true, Text: DemoTranscript, Demo: true}, nil
	}
	if err != nil {
		log.Warn().Err(err).Int("audio_bytes", len(audio.Data)).Msg("transcripción fallida")
		return &dto.TranscriptionResult{Error: err.Error()}, err
	}

	log.Debug().Int("audio_bytes", len(audio.Data)).Int("chars", len(text)).Msg("audio transcrito")
	return &dto.TranscriptionResult{OK: true, Text: text}, nil
}

// Extract extrae {numDossier, montantHT, prestation} y busca el cliente. Que el cliente no exista no es
// un error: Client queda nil y el usuario lo elige a mano. Si el modelo no devolvió JSON utilizable,
// RawModelOutput conserva su texto.
func (uc *VoiceUseCase) Extract(ctx context.Context, transcript string) (*dto.ExtractionResult, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return &dto.ExtractionResult{Error: "transcription vide"}, domain.ErrInvalidInput
	}

	callCtx, cancel := uc.withTimeout(ctx)
	fields, err := uc.extractor.ExtractFields(callCtx, transcript)
	cancel()
	if err != nil {
		res := &dto.ExtractionResult{Error: err.Error()}
		var malformed *domain.MalformedOutputError
		if errors.As(err, &malformed) {
			res.RawModelOutput = malformed.Raw
		}
		log.Warn().Err(err).Msg("extracción fallida")
		return res, err
	}

	res := &dto.ExtractionResult{OK: true, Fields: fields}
	if fields.NumDossier == "" {
		return res, nil
	}

	client, err := uc.clients.Lookup(ctx, fields.NumDossier)
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInvalidInput):
		log.Debug().Str("num_dossier", fields.NumDossier).Msg("dossier extraído sin cliente")
	case err != nil:
		return nil, err
	default:
		res.Client = billing.ToClientResponse(client)
	}
	return res, nil
}
