package entity

import "time"

// Client representa un expediente cliente del cabinet.
// NumDossier es la referencia externa única, siempre en mayúsculas y sin espacios alrededor.
type Client struct {
	ID              string
	NumDossier      string
	RaisonSociale   string
	Adresse         string
	Siret           string
	DomaineActivite string
	CreatedAt       time.Time
}
