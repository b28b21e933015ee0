package dto

// ClientLookupRequest body para POST /api/clients/lookup.
type ClientLookupRequest struct {
	NumDossier string `json:"numDossier"`
}

// ClientResponse cliente en respuestas.
type ClientResponse struct {
	ID              string `json:"id"`
	NumDossier      string `json:"numDossier"`
	RaisonSociale   string `json:"raisonSociale"`
	Adresse         string `json:"adresse,omitempty"`
	Siret           string `json:"siret,omitempty"`
	DomaineActivite string `json:"domaineActivite,omitempty"`
}

// ClientLookupResponse respuesta del lookup en vivo.
type ClientLookupResponse struct {
	Success bool            `json:"success"`
	Client  *ClientResponse `json:"client"`
}

// ClientListResponse listado paginado para la selección manual de cliente.
type ClientListResponse struct {
	Success bool              `json:"success"`
	Clients []*ClientResponse `json:"clients"`
	Page    PageResponse      `json:"page"`
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
