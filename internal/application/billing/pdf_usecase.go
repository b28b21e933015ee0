package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/smartcompta/internal/domain"
	"github.com/jhoicas/smartcompta/internal/domain/repository"
)

// PDFUseCase genera la vista previa PDF de una factura ya creada.
type PDFUseCase struct {
	factureRepo repository.FactureRepository
	generator   InvoicePDFGenerator
}

// NewPDFUseCase construye el caso de uso.
func NewPDFUseCase(factureRepo repository.FactureRepository, generator InvoicePDFGenerator) *PDFUseCase {
	return &PDFUseCase{factureRepo: factureRepo, generator: generator}
}

// DownloadFacturePDF devuelve (pdfBytes, filename). domain.ErrNotFound si la factura no existe.
func (uc *PDFUseCase) DownloadFacturePDF(ctx context.Context, id string) ([]byte, string, error) {
	f, err := uc.factureRepo.GetByID(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener factura: %w", err)
	}
	if f == nil {
		return nil, "", domain.ErrNotFound
	}
	if f.Client == nil {
		return nil, "", fmt.Errorf("pdf: factura %s sin cliente cargado", f.NumeroComplet)
	}
	pdfBytes, err := uc.generator.GenerateFacturePDF(ctx, f)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("facture_%s.pdf", f.NumeroComplet), nil
}
