// Package stripe genera enlaces de pago alojados (Stripe Checkout) para las facturas.
package stripe

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v82"

	"github.com/jhoicas/smartcompta/internal/application/dto"
	"github.com/jhoicas/smartcompta/internal/application/ports"
	"github.com/jhoicas/smartcompta/internal/domain"
	domainbilling "github.com/jhoicas/smartcompta/internal/domain/billing"
	"github.com/jhoicas/smartcompta/pkg/config"
)

var _ ports.PaymentLinkProvider = (*PaymentLinkService)(nil)

const provider = "stripe"

// PaymentLinkService crea una Checkout Session de pago único por el TTC de la factura.
type PaymentLinkService struct {
	client     *stripe.Client
	currency   string
	successURL string
	cancelURL  string
}

// NewPaymentLinkService construye el adaptador. Sin SecretKey el cliente queda nil y
// CreatePaymentLink devuelve domain.ErrProviderNotConfigured.
func NewPaymentLinkService(cfg config.StripeConfig) *PaymentLinkService {
	s := &PaymentLinkService{
		currency:   cfg.Currency,
		successURL: cfg.SuccessURL,
		cancelURL:  cfg.CancelURL,
	}
	if cfg.Enabled() {
		s.client = stripe.NewClient(cfg.SecretKey, nil)
	}
	return s
}

// CreatePaymentLink devuelve la URL alojada y el id de la sesión.
func (s *PaymentLinkService) CreatePaymentLink(ctx context.Context, req dto.PaymentLinkRequest) (*dto.PaymentLink, error) {
	if s.client == nil {
		return nil, domain.ErrProviderNotConfigured
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: importe de pago no positivo", domain.ErrInvalidInput)
	}

	params := s.checkoutParams(req)
	session, err := s.client.V1CheckoutSessions.Create(ctx, params)
	if err != nil {
		return nil, toProviderError(err)
	}

	log.Info().
		Str("numero", req.InvoiceNumber).
		Str("session_id", session.ID).
		Int64("amount_cents", domainbilling.CentsOf(req.Amount)).
		Msg("enlace de pago Stripe creado")

	return &dto.PaymentLink{URL: session.URL, ID: session.ID}, nil
}

// checkoutParams una línea por el TTC en céntimos; número de factura y pagador en metadata.
func (s *PaymentLinkService) checkoutParams(req dto.PaymentLinkRequest) *stripe.CheckoutSessionCreateParams {
	name := "Facture " + req.InvoiceNumber
	if req.PayeeName != "" {
		name += " – " + req.PayeeName
	}

	product := &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
		Name: stripe.String(name),
	}
	if req.Description != "" {
		product.Description = stripe.String(req.Description)
	}

	metadata := map[string]string{
		"numero_facture": req.InvoiceNumber,
		"client":         req.PayeeName,
		"payment_source": "smartcompta",
	}

	return &stripe.CheckoutSessionCreateParams{
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
					Currency:    stripe.String(s.currency),
					ProductData: product,
					UnitAmount:  stripe.Int64(domainbilling.CentsOf(req.Amount)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(s.successURL),
		CancelURL:         stripe.String(s.cancelURL),
		ClientReferenceID: stripe.String(req.InvoiceNumber),
		Metadata:          metadata,
		PaymentIntentData: &stripe.CheckoutSessionCreatePaymentIntentDataParams{
			Description: stripe.String(name),
			Metadata:    metadata,
		},
	}
}

// toProviderError conserva el código HTTP y el mensaje de Stripe.
func toProviderError(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		return &domain.ProviderError{Provider: provider, StatusCode: se.HTTPStatusCode, Message: se.Msg}
	}
	return &domain.ProviderError{Provider: provider, Message: err.Error()}
}
