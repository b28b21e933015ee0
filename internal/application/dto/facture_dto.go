package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Acciones del endpoint multiplexado POST /api/factures (cuerpo JSON).
const (
	ActionExtract = "extract"
	ActionCreate  = "create"
)

// FactureActionRequest cuerpo JSON de POST /api/factures. Action decide qué campos aplican:
// "extract" usa Transcription; "create" usa NumDossier, MontantHT, Prestation, GenererStripe, TauxTVA.
type FactureActionRequest struct {
	Action        string           `json:"action"`
	Transcription string           `json:"transcription,omitempty"`
	NumDossier    string           `json:"numDossier,omitempty"`
	MontantHT     decimal.Decimal  `json:"montantHT"`
	Prestation    string           `json:"prestation,omitempty"`
	GenererStripe bool             `json:"genererStripe,omitempty"`
	TauxTVA       *decimal.Decimal `json:"tauxTVA,omitempty"` // opcional; 20 por defecto
}

// CreateFactureRequest entrada del caso de uso de creación.
type CreateFactureRequest struct {
	NumDossier    string
	MontantHT     decimal.Decimal
	Prestation    string
	GenererStripe bool
	TauxTVA       *decimal.Decimal
}

// FactureResponse factura completa con su cliente.
type FactureResponse struct {
	ID                string          `json:"id"`
	NumeroSequentiel  int             `json:"numeroSequentiel"`
	Prefixe           string          `json:"prefixe"`
	NumeroComplet     string          `json:"numeroComplet"`
	Prestation        string          `json:"prestation"`
	MontantHT         decimal.Decimal `json:"montantHT"`
	TauxTVA           decimal.Decimal `json:"tauxTVA"`
	MontantTVA        decimal.Decimal `json:"montantTVA"`
	MontantTTC        decimal.Decimal `json:"montantTTC"`
	StripePaymentLink *string         `json:"stripePaymentLink"`
	StripePaymentID   *string         `json:"stripePaymentId"`
	ClientID          string          `json:"clientId"`
	Client            *ClientResponse `json:"client"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// CreateFactureResponse respuesta de la acción create.
type CreateFactureResponse struct {
	Success bool             `json:"success"`
	Facture *FactureResponse `json:"facture"`
}
