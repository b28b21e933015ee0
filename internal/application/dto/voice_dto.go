package dto

import "github.com/shopspring/decimal"

// Audio grabación recibida del navegador.
type Audio struct {
	Data     []byte
	MimeType string // audio/webm, audio/ogg, audio/wav...
	Filename string
}

// ExtractedFields campos de facturación extraídos del dictado.
type ExtractedFields struct {
	NumDossier string          `json:"numDossier"`
	MontantHT  decimal.Decimal `json:"montantHT"`
	Prestation string          `json:"prestation"`
}

// TranscriptionResult resultado estructurado de la transcripción.
type TranscriptionResult struct {
	OK    bool
	Text  string
	Demo  bool // respuesta de demostración: no hay clave de proveedor configurada
	Error string
}

// ExtractionResult resultado estructurado de la extracción, con el cliente encontrado si lo hay.
type ExtractionResult struct {
	OK             bool
	Fields         *ExtractedFields
	Client         *ClientResponse
	Error          string
	RawModelOutput string
}

// TranscribeResponse respuesta HTTP de la acción de transcripción (multipart).
type TranscribeResponse struct {
	Success       bool   `json:"success"`
	Transcription string `json:"transcription"`
	Demo          bool   `json:"demo,omitempty"`
	Message       string `json:"message,omitempty"`
}

// ExtractResponse respuesta HTTP de la acción extract.
type ExtractResponse struct {
	Success      bool             `json:"success"`
	Data         *ExtractedFields `json:"data"`
	ClientTrouve bool             `json:"clientTrouve"`
	Client       *ClientResponse  `json:"client"`
}

// PaymentLinkRequest datos enviados al proveedor de enlaces de pago.
type PaymentLinkRequest struct {
	Amount        decimal.Decimal // TTC
	InvoiceNumber string
	PayeeName     string
	Description   string
}

// PaymentLink enlace de pago alojado devuelto por el proveedor.
type PaymentLink struct {
	URL string
	ID  string
}
