package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Facture representa una factura emitida. Inmutable una vez creada.
type Facture struct {
	ID                string
	NumeroSequentiel  int
	Prefixe           string // "FA-2026-"
	NumeroComplet     string // "FA-2026-0001"
	Prestation        string
	MontantHT         decimal.Decimal
	TauxTVA           decimal.Decimal
	MontantTVA        decimal.Decimal
	MontantTTC        decimal.Decimal
	StripePaymentLink string // vacío si no se generó enlace
	StripePaymentID   string
	ClientID          string
	CreatedAt         time.Time

	// Client se rellena en lecturas con join; no se persiste desde aquí.
	Client *Client
}
