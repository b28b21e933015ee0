package billing

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/smartcompta/internal/application/dto"
	"github.com/jhoicas/smartcompta/internal/application/ports"
	"github.com/jhoicas/smartcompta/internal/domain"
	domainbilling "github.com/jhoicas/smartcompta/internal/domain/billing"
	"github.com/jhoicas/smartcompta/internal/domain/entity"
	"github.com/jhoicas/smartcompta/internal/domain/repository"
)

// InvoiceNumberer emite números de factura (implementado por NumberingUseCase).
type InvoiceNumberer interface {
	NextInvoiceNumber(ctx context.Context) (domainbilling.InvoiceNumber, error)
}

// CreateFactureUseCase orquesta la creación de una factura:
// validar → cliente existe → importes → número → enlace de pago opcional → persistir.
type CreateFactureUseCase struct {
	clientRepo  repository.ClientRepository
	factureRepo repository.FactureRepository
	numberer    InvoiceNumberer
	payments    ports.PaymentLinkProvider // nil = Stripe no configurado
}

// NewCreateFactureUseCase construye el caso de uso. payments puede ser nil.
func NewCreateFactureUseCase(
	clientRepo repository.ClientRepository,
	factureRepo repository.FactureRepository,
	numberer InvoiceNumberer,
	payments ports.PaymentLinkProvider,
) *CreateFactureUseCase {
	return &CreateFactureUseCase{
		clientRepo:  clientRepo,
		factureRepo: factureRepo,
		numberer:    numberer,
		payments:    payments,
	}
}

// CreateFacture crea la factura. El número solo se asigna tras validar la entrada y el cliente;
// un fallo posterior (persistencia) deja un hueco en la numeración.
//
// Retorna domain.ErrInvalidInput si falta numDossier, prestation o montantHT > 0,
// domain.ErrClientUnknown si el expediente no existe.
func (uc *CreateFactureUseCase) CreateFacture(ctx context.Context, in dto.CreateFactureRequest) (*dto.FactureResponse, error) {
	numDossier := domainbilling.NormalizeNumDossier(in.NumDossier)
	prestation := strings.TrimSpace(in.Prestation)
	if numDossier == "" || prestation == "" || !in.MontantHT.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	rate := domainbilling.DefaultTaxRate
	if in.TauxTVA != nil {
		if in.TauxTVA.IsNegative() || in.TauxTVA.GreaterThan(decimal.NewFromInt(100)) {
			return nil, domain.ErrInvalidInput
		}
		rate = *in.TauxTVA
	}

	client, err := uc.clientRepo.GetByNumDossier(ctx, numDossier)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrClientUnknown
	}

	amounts := domainbilling.ComputeAmounts(in.MontantHT, rate)

	number, err := uc.numberer.NextInvoiceNumber(ctx)
	if err != nil {
		return nil, err
	}

	facture := &entity.Facture{
		ID:               uuid.New().String(),
		NumeroSequentiel: number.SequentialNumber,
		Prefixe:          number.Prefix,
		NumeroComplet:    number.FullNumber,
		Prestation:       prestation,
		MontantHT:        amounts.BaseAmount,
		TauxTVA:          amounts.TaxRatePercent,
		MontantTVA:       amounts.TaxAmount,
		MontantTTC:       amounts.TotalAmount,
		ClientID:         client.ID,
		CreatedAt:        time.Now(),
		Client:           client,
	}

	if in.GenererStripe {
		uc.attachPaymentLink(ctx, facture)
	}

	if err := uc.factureRepo.Create(ctx, facture); err != nil {
		log.Error().Err(err).
			Str("numero", facture.NumeroComplet).
			Msg("factura no persistida tras asignar número (hueco en la secuencia)")
		return nil, err
	}

	log.Info().
		Str("numero", facture.NumeroComplet).
		Str("num_dossier", client.NumDossier).
		Str("montant_ttc", facture.MontantTTC.StringFixed(2)).
		Bool("lien_paiement", facture.StripePaymentLink != "").
		Msg("factura creada")

	return ToFactureResponse(facture), nil
}

// attachPaymentLink pide el enlace de pago; cualquier fallo se registra y la factura sigue sin enlace.
func (uc *CreateFactureUseCase) attachPaymentLink(ctx context.Context, facture *entity.Facture) {
	if uc.payments == nil {
		log.Debug().Str("numero", facture.NumeroComplet).Msg("Stripe no configurado: factura sin enlace de pago")
		return
	}
	link, err := uc.payments.CreatePaymentLink(ctx, dto.PaymentLinkRequest{
		Amount:        facture.MontantTTC,
		InvoiceNumber: facture.NumeroComplet,
		PayeeName:     facture.Client.RaisonSociale,
		Description:   facture.Prestation,
	})
	if errors.Is(err, domain.ErrProviderNotConfigured) {
		log.Debug().Str("numero", facture.NumeroComplet).Msg("Stripe sin credenciales: factura sin enlace de pago")
		return
	}
	if err != nil {
		log.Warn().Err(err).Str("numero", facture.NumeroComplet).Msg("enlace de pago no generado; la factura se crea sin enlace")
		return
	}
	facture.StripePaymentLink = link.URL
	facture.StripePaymentID = link.ID
}

// GetFacture obtiene una factura por ID con su cliente.
func (uc *CreateFactureUseCase) GetFacture(ctx context.Context, id string) (*dto.FactureResponse, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrInvalidInput
	}
	f, err := uc.factureRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, domain.ErrNotFound
	}
	return ToFactureResponse(f), nil
}

// ToFactureResponse mapea la entidad a su DTO; enlace e id de pago vacíos salen como null.
func ToFactureResponse(f *entity.Facture) *dto.FactureResponse {
	return &dto.FactureResponse{
		ID:                f.ID,
		NumeroSequentiel:  f.NumeroSequentiel,
		Prefixe:           f.Prefixe,
		NumeroComplet:     f.NumeroComplet,
		Prestation:        f.Prestation,
		MontantHT:         f.MontantHT,
		TauxTVA:           f.TauxTVA,
		MontantTVA:        f.MontantTVA,
		MontantTTC:        f.MontantTTC,
		StripePaymentLink: nullIfEmpty(f.StripePaymentLink),
		StripePaymentID:   nullIfEmpty(f.StripePaymentID),
		ClientID:          f.ClientID,
		Client:            ToClientResponse(f.Client),
		CreatedAt:         f.CreatedAt,
	}
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
