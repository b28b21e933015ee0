package ports

import (
	"context"

	"github.com/jhoicas/smartcompta/internal/application/dto"
)

// Transcriber puerto de speech-to-text. Cualquier adaptador (Gemini, mock) implementa esta interfaz.
// Errores esperados: domain.ErrProviderNotConfigured, *domain.ProviderError.
type Transcriber interface {
	Transcribe(ctx context.Context, audio dto.Audio) (string, error)
}

// FieldExtractor puerto de extracción de campos (texto libre → numDossier, montantHT, prestation).
// Errores esperados: domain.ErrProviderNotConfigured, *domain.ProviderError, *domain.MalformedOutputError.
// La salida del modelo nunca se persiste directamente: el usuario la confirma antes.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, transcript string) (*dto.ExtractedFields, error)
}

// PaymentLinkProvider puerto del proveedor de enlaces de pago alojados.
type PaymentLinkProvider interface {
	CreatePaymentLink(ctx context.Context, req dto.PaymentLinkRequest) (*dto.PaymentLink, error)
}
