package billing

import (
	"context"

	"github.com/jhoicas/smartcompta/internal/domain/entity"
	"github.com/jhoicas/smartcompta/internal/domain/repository"
)

// SequenceTxRunner ejecuta fn dentro de una transacción aislada (SERIALIZABLE) con el repositorio
// de secuencias atado a ella. Si fn o el commit fallan, no se considera emitido ningún número.
type SequenceTxRunner interface {
	RunSequence(ctx context.Context, fn func(seqRepo repository.SequenceRepository) error) error
}

// InvoicePDFGenerator puerto de salida para la vista previa PDF de una factura.
type InvoicePDFGenerator interface {
	GenerateFacturePDF(ctx context.Context, facture *entity.Facture) ([]byte, error)
}
