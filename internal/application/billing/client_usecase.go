package billing

import (
	"context"
	"strings"

	"github.com/jhoicas/smartcompta/internal/application/dto"
	"github.com/jhoicas/smartcompta/internal/domain"
	domainbilling "github.com/jhoicas/smartcompta/internal/domain/billing"
	"github.com/jhoicas/smartcompta/internal/domain/entity"
	"github.com/jhoicas/smartcompta/internal/domain/repository"
)

// ClientUseCase directorio de clientes: búsqueda por numDossier y listado para selección manual.
type ClientUseCase struct {
	repo repository.ClientRepository
}

// NewClientUseCase construye el caso de uso.
func NewClientUseCase(repo repository.ClientRepository) *ClientUseCase {
	return &ClientUseCase{repo: repo}
}

// Lookup normaliza numDossier y busca el cliente. domain.ErrInvalidInput si está vacío,
// domain.ErrClientUnknown si no existe.
func (uc *ClientUseCase) Lookup(ctx context.Context, numDossier string) (*entity.Client, error) {
	key := domainbilling.NormalizeNumDossier(numDossier)
	if key == "" {
		return nil, domain.ErrInvalidInput
	}
	client, err := uc.repo.GetByNumDossier(ctx, key)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrClientUnknown
	}
	return client, nil
}

// List lista clientes filtrando por search.
func (uc *ClientUseCase) List(ctx context.Context, search string, page dto.PageRequest) ([]*dto.ClientResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.Search(ctx, strings.TrimSpace(search), page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ClientResponse, 0, len(list))
	for _, c := range list {
		out = append(out, ToClientResponse(c))
	}
	return out, nil
}

// ToClientResponse mapea la entidad a su DTO (nil → nil).
func ToClientResponse(c *entity.Client) *dto.ClientResponse {
	if c == nil {
		return nil
	}
	return &dto.ClientResponse{
		ID:              c.ID,
		NumDossier:      c.NumDossier,
		RaisonSociale:   c.RaisonSociale,
		Adresse:         c.Adresse,
		Siret:           c.Siret,
		DomaineActivite: c.DomaineActivite,
	}
}
