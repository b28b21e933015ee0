package billing

import (
	"context"
	"fmt"
	"time"

	domainbilling "github.com/jhoicas/smartcompta/internal/domain/billing"
	"github.com/jhoicas/smartcompta/internal/domain/entity"
	"github.com/jhoicas/smartcompta/internal/domain/repository"
)

// NumberingUseCase asigna números de factura consecutivos por año (FA-AAAA-NNNN).
// La unicidad entre llamadas concurrentes la garantiza la transacción sobre la fila del contador.
type NumberingUseCase struct {
	txRunner SequenceTxRunner
}

// NewNumberingUseCase construye el caso de uso.
func NewNumberingUseCase(txRunner SequenceTxRunner) *NumberingUseCase {
	return &NumberingUseCase{txRunner: txRunner}
}

// NextInvoiceNumber emite el siguiente número para el año en curso.
func (uc *NumberingUseCase) NextInvoiceNumber(ctx context.Context) (domainbilling.InvoiceNumber, error) {
	return uc.NextInvoiceNumberAt(ctx, time.Now())
}

// NextInvoiceNumberAt emite el siguiente número para el año de now.
func (uc *NumberingUseCase) NextInvoiceNumberAt(ctx context.Context, now time.Time) (domainbilling.InvoiceNumber, error) {
	year := now.Year()
	var issued domainbilling.InvoiceNumber

	err := uc.txRunner.RunSequence(ctx, func(seqRepo repository.SequenceRepository) error {
		seq, err := seqRepo.GetForUpdate(ctx, entity.SequenceFactures)
		if err != nil {
			return err
		}
		if seq == nil {
			seq = &entity.Sequence{ID: entity.SequenceFactures, DernierNumero: 0, Annee: year}
			if err := seqRepo.Create(ctx, seq); err != nil {
				return err
			}
		}
		issued = domainbilling.Advance(seq, year)
		return seqRepo.Update(ctx, seq)
	})
	if err != nil {
		return domainbilling.InvoiceNumber{}, fmt.Errorf("numeración de factura: %w", err)
	}
	return issued, nil
}
