package billing_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/smartcompta/internal/application/billing"
	"github.com/jhoicas/smartcompta/internal/application/dto"
	"github.com/jhoicas/smartcompta/internal/application/ports"
	"github.com/jhoicas/smartcompta/internal/domain"
	"github.com/jhoicas/smartcompta/internal/domain/entity"
)

var clientAM0028 = &entity.Client{
	ID:            "c-1",
	NumDossier:    "AM0028",
	RaisonSociale: "Boulangerie Martin SARL",
	Siret:         "12345678900011",
}

type createFixture struct {
	seq      *memSequenceStore
	factures *memFactureRepo
	payments *fakePayments
	uc       *billing.CreateFactureUseCase
}

func newCreateFixture(withPayments bool) *createFixture {
	f := &createFixture{
		seq:      newMemSequenceStore(),
		factures: &memFactureRepo{},
		payments: &fakePayments{link: &dto.PaymentLink{URL: "https://checkout.stripe.com/c/pay/cs_test_1", ID: "cs_test_1"}},
	}
	var payments ports.PaymentLinkProvider
	if withPayments {
		payments = f.payments
	}
	f.uc = billing.NewCreateFactureUseCase(
		newMemClientRepo(clientAM0028),
		f.factures,
		billing.NewNumberingUseCase(f.seq),
		payments,
	)
	return f
}

func validRequest() dto.CreateFactureRequest {
	return dto.CreateFactureRequest{
		NumDossier: " am0028 ",
		MontantHT:  decimal.RequireFromString("33.33"),
		Prestation: "Tenue de comptabilité mensuelle",
	}
}

func TestCreateFacture_Exito(t *testing.T) {
	f := newCreateFixture(false)

	resp, err := f.uc.CreateFacture(context.Background(), validRequest())
	require.NoError(t, err)

	year := time.Now().Year()
	assert.Equal(t, 1, resp.NumeroSequentiel)
	assert.Equal(t, fmt.Sprintf("FA-%d-0001", year), resp.NumeroComplet)
	assert.Equal(t, fmt.Sprintf("FA-%d-", year), resp.Prefixe)
	assert.Equal(t, "6.67", resp.MontantTVA.StringFixed(2))
	assert.Equal(t, "40.00", resp.MontantTTC.StringFixed(2))
	assert.Equal(t, "20", resp.TauxTVA.String())
	assert.Nil(t, resp.StripePaymentLink)
	require.NotNil(t, resp.Client)
	assert.Equal(t, "AM0028", resp.Client.NumDossier)
	assert.Equal(t, "c-1", resp.ClientID)
	require.Len(t, f.factures.created, 1)
}

func TestCreateFacture_TasaPersonalizada(t *testing.T) {
	f := newCreateFixture(false)
	req := validRequest()
	req.MontantHT = decimal.NewFromInt(100)
	rate := decimal.RequireFromString("5.5")
	req.TauxTVA = &rate

	resp, err := f.uc.CreateFacture(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "5.50", resp.MontantTVA.StringFixed(2))
	assert.Equal(t, "105.50", resp.MontantTTC.StringFixed(2))
}

func TestCreateFacture_ClienteDesconocidoNoConsumeNumero(t *testing.T) {
	f := newCreateFixture(false)
	req := validRequest()
	req.NumDossier = "ZZ9999"

	_, err := f.uc.CreateFacture(context.Background(), req)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, f.seq.committed, "no debe emitirse número")
	assert.Empty(t, f.factures.created)
}

func TestCreateFacture_ValidacionNoConsumeNumero(t *testing.T) {
	cases := map[string]func(r *dto.CreateFactureRequest){
		"montantHT cero":     func(r *dto.CreateFactureRequest) { r.MontantHT = decimal.Zero },
		"montantHT negativo": func(r *dto.CreateFactureRequest) { r.MontantHT = decimal.NewFromInt(-5) },
		"sin prestation":     func(r *dto.CreateFactureRequest) { r.Prestation = "" },
		"prestation blanca":  func(r *dto.CreateFactureRequest) { r.Prestation = "   " },
		"sin numDossier":     func(r *dto.CreateFactureRequest) { r.NumDossier = "" },
		"tasa fuera de rango": func(r *dto.CreateFactureRequest) {
			rate := decimal.NewFromInt(150)
			r.TauxTVA = &rate
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			f := newCreateFixture(true)
			req := validRequest()
			mutate(&req)

			_, err := f.uc.CreateFacture(context.Background(), req)

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Equal(t, 0, f.seq.committed)
			assert.Empty(t, f.payments.calls, "no se llama al proveedor de pago")
		})
	}
}

func TestCreateFacture_ConEnlaceDePago(t *testing.T) {
	f := newCreateFixture(true)
	req := validRequest()
	req.GenererStripe = true

	resp, err := f.uc.CreateFacture(context.Background(), req)
	require.NoError(t, err)

	require.NotNil(t, resp.StripePaymentLink)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", *resp.StripePaymentLink)
	assert.Equal(t, "cs_test_1", *resp.StripePaymentID)

	require.Len(t, f.payments.calls, 1)
	call := f.payments.calls[0]
	assert.Equal(t, "40.00", call.Amount.StringFixed(2))
	assert.Equal(t, resp.NumeroComplet, call.InvoiceNumber)
	assert.Equal(t, "Boulangerie Martin SARL", call.PayeeName)
	assert.Equal(t, "Tenue de comptabilité mensuelle", call.Description)
}

func TestCreateFacture_FalloDePagoNoEsFatal(t *testing.T) {
	f := newCreateFixture(true)
	f.payments.err = &domain.ProviderError{Provider: "stripe", StatusCode: 402, Message: "card_declined"}
	req := validRequest()
	req.GenererStripe = true

	resp, err := f.uc.CreateFacture(context.Background(), req)
	require.NoError(t, err)

	assert.Nil(t, resp.StripePaymentLink)
	assert.Nil(t, resp.StripePaymentID)
	require.Len(t, f.factures.created, 1)
	assert.Empty(t, f.factures.created[0].StripePaymentLink)
}

func TestCreateFacture_SinStripeConfiguradoSeOmite(t *testing.T) {
	f := newCreateFixture(false)
	req := validRequest()
	req.GenererStripe = true

	resp, err := f.uc.CreateFacture(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, resp.StripePaymentLink)
}

func TestCreateFacture_SinEnlaceSiNoSePide(t *testing.T) {
	f := newCreateFixture(true)

	_, err := f.uc.CreateFacture(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Empty(t, f.payments.calls)
}

func TestCreateFacture_FalloDePersistenciaDejaHueco(t *testing.T) {
	f := newCreateFixture(false)
	f.factures.failErr = errors.New("insert factura: conexión perdida")

	_, err := f.uc.CreateFacture(context.Background(), validRequest())
	require.Error(t, err)
	assert.Equal(t, 1, f.seq.committed, "el número ya se emitió")

	f.factures.failErr = nil
	resp, err := f.uc.CreateFacture(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, 2, resp.NumeroSequentiel)
}

func TestCreateFacture_ReenvioCreaSegundaFactura(t *testing.T) {
	f := newCreateFixture(false)
	ctx := context.Background()

	a, err := f.uc.CreateFacture(ctx, validRequest())
	require.NoError(t, err)
	b, err := f.uc.CreateFacture(ctx, validRequest())
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.NumeroSequentiel+1, b.NumeroSequentiel)
}

func TestGetFacture(t *testing.T) {
	f := newCreateFixture(false)
	ctx := context.Background()
	created, err := f.uc.CreateFacture(ctx, validRequest())
	require.NoError(t, err)

	got, err := f.uc.GetFacture(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.NumeroComplet, got.NumeroComplet)

	_, err = f.uc.GetFacture(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
