package repository

import (
	"context"

	"github.com/jhoicas/smartcompta/internal/domain/entity"
)

// FactureRepository define el puerto de persistencia para Facture.
type FactureRepository interface {
	Create(ctx context.Context, facture *entity.Facture) error
	// GetByID devuelve la factura con su Client cargado; nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Facture, error)
}
