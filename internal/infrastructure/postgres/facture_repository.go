package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/smartcompta/internal/domain"
	"github.com/jhoicas/smartcompta/internal/domain/entity"
	"github.com/jhoicas/smartcompta/internal/domain/repository"
)

var _ repository.FactureRepository = (*FactureRepo)(nil)

// FactureRepo implementación de FactureRepository (usable con pool o tx).
type FactureRepo struct {
	q Querier
}

// NewFactureRepository construye el adaptador.
func NewFactureRepository(q Querier) *FactureRepo {
	return &FactureRepo{q: q}
}

// Create persiste la factura. numero_complet es UNIQUE: un duplicado devuelve domain.ErrDuplicate.
func (r *FactureRepo) Create(ctx context.Context, f *entity.Facture) error {
	query := `
		INSERT INTO factures (id, numero_sequentiel, prefixe, numero_complet, prestation,
			montant_ht, taux_tva, montant_tva, montant_ttc,
			stripe_payment_link, stripe_payment_id, client_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), NULLIF($11, ''), $12, $13)`
	_, err := r.q.Exec(ctx, query,
		f.ID, f.NumeroSequentiel, f.Prefixe, f.NumeroComplet, f.Prestation,
		f.MontantHT, f.TauxTVA, f.MontantTVA, f.MontantTTC,
		f.StripePaymentLink, f.StripePaymentID, f.ClientID, f.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert facture: %w", err)
	}
	return nil
}

// GetByID obtiene la factura con su cliente (join).
func (r *FactureRepo) GetByID(ctx context.Context, id string) (*entity.Facture, error) {
	query := `
		SELECT f.id, f.numero_sequentiel, f.prefixe, f.numero_complet, f.prestation,
			f.montant_ht, f.taux_tva, f.montant_tva, f.montant_ttc,
			COALESCE(f.stripe_payment_link, ''), COALESCE(f.stripe_payment_id, ''), f.client_id, f.created_at,
			c.id, c.num_dossier, c.raison_sociale, COALESCE(c.adresse, ''), COALESCE(c.siret, ''),
			COALESCE(c.domaine_activite, ''), c.created_at
		FROM factures f
		JOIN clients c ON c.id = f.client_id
		WHERE f.id = $1`
	var f entity.Facture
	var c entity.Client
	err := r.q.QueryRow(ctx, query, id).Scan(
		&f.ID, &f.NumeroSequentiel, &f.Prefixe, &f.NumeroComplet, &f.Prestation,
		&f.MontantHT, &f.TauxTVA, &f.MontantTVA, &f.MontantTTC,
		&f.StripePaymentLink, &f.StripePaymentID, &f.ClientID, &f.CreatedAt,
		&c.ID, &c.NumDossier, &c.RaisonSociale, &c.Adresse, &c.Siret, &c.DomaineActivite, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get facture: %w", err)
	}
	f.Client = &c
	return &f, nil
}
