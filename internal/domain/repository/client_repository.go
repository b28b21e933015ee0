package repository

import (
	"context"

	"github.com/jhoicas/smartcompta/internal/domain/entity"
)

// ClientRepository define el puerto de lectura del directorio de clientes.
// La carga de clientes la hace un proceso de importación externo.
type ClientRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Client, error)
	// GetByNumDossier espera el numDossier ya normalizado; nil, nil si no existe.
	GetByNumDossier(ctx context.Context, numDossier string) (*entity.Client, error)
	// Search filtra por numDossier o raison sociale (ILIKE); search vacío lista todo.
	Search(ctx context.Context, search string, limit, offset int) ([]*entity.Client, error)
}
