// dictee cliente de terminal del flujo de facturación por voz: envía un fichero de audio a la API,
// muestra el borrador extraído, permite corregirlo y crea la factura.
//
// Uso: go run ./cmd/dictee --audio dictee.webm [--api http://localhost:8080] [--stripe] [--pdf facture.pdf]
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	flag "github.com/spf13/pflag"

	"github.com/jhoicas/smartcompta/internal/apiclient"
	"github.com/jhoicas/smartcompta/internal/application/dto"
	"github.com/jhoicas/smartcompta/internal/workflow"
	"github.com/jhoicas/smartcompta/pkg/logger"
)

var _ workflow.Backend = (*apiclient.Client)(nil)

func main() {
	var (
		apiURL    = flag.String("api", envOr("SMARTCOMPTA_API", "http://localhost:8080"), "URL base de la API")
		token     = flag.String("token", os.Getenv("SMARTCOMPTA_TOKEN"), "JWT (si la API exige autenticación)")
		audioPath = flag.String("audio", "", "fichero de audio con el dictado (webm, ogg, wav, mp3)")
		stripe    = flag.Bool("stripe", false, "generar enlace de pago")
		pdfPath   = flag.String("pdf", "", "guardar la vista previa PDF en esta ruta")
		timeout   = flag.Duration("timeout", 90*time.Second, "timeout por petición")
		verbose   = flag.BoolP("verbose", "v", false, "log de depuración")
	)
	flag.Parse()

	level := "warn"
	if *verbose {
		level = "debug"
	}
	logger.NewWithWriter(logger.Config{Env: "development", Level: level}, os.Stderr)

	if *audioPath == "" {
		fmt.Fprintln(os.Stderr, "--audio requerido")
		flag.Usage()
		os.Exit(2)
	}
	data, err := os.ReadFile(*audioPath)
	if err != nil {
		log.Fatal().Err(err).Msg("leer audio")
	}

	api := apiclient.New(*apiURL, *token, *timeout)
	ui := &terminal{in: bufio.NewScanner(os.Stdin), out: os.Stdout, api: api}
	session := workflow.NewSession(api)
	ctx := context.Background()

	fmt.Fprintln(ui.out, "Transcription en cours…")
	if err := session.Dictate(ctx, dto.Audio{Data: data, Filename: filepath.Base(*audioPath)}); err != nil {
		ui.printError(err)
		if t := session.Machine().Transcript(); t != "" {
			fmt.Fprintf(ui.out, "Transcription : %s\n", t)
		}
		os.Exit(1)
	}

	m := session.Machine()
	fmt.Fprintf(ui.out, "Transcription : %s\n\n", m.Transcript())
	if err := m.Edit(func(d *workflow.Draft) { d.GenererStripe = *stripe }); err != nil {
		log.Fatal().Err(err).Msg("workflow")
	}

	for {
		if err := ui.edit(ctx, m); err != nil {
			ui.printError(err)
			if ui.eof || errors.Is(err, workflow.ErrIllegalTransition) {
				os.Exit(1)
			}
			continue
		}
		switch ui.ask("Créer la facture ? [o]ui / [r]éviser / [a]nnuler", "o") {
		case "a":
			_ = m.Cancel()
			fmt.Fprintln(ui.out, "Brouillon abandonné.")
			return
		case "r":
			if ui.eof {
				return
			}
			continue
		}

		f, err := session.Submit(ctx)
		if err != nil {
			ui.printError(err)
			if ui.eof {
				os.Exit(1)
			}
			continue // de vuelta en editing con el borrador intacto
		}
		ui.printFacture(f)
		if *pdfPath != "" {
			ui.savePDF(ctx, f.ID, *pdfPath)
		}
		_ = m.NewInvoice()
		return
	}
}

type terminal struct {
	in  *bufio.Scanner
	out io.Writer
	api *apiclient.Client
	eof bool
}

func (t *terminal) ask(label, def string) string {
	if def != "" {
		fmt.Fprintf(t.out, "%s [%s] : ", label, def)
	} else {
		fmt.Fprintf(t.out, "%s : ", label)
	}
	if !t.in.Scan() {
		t.eof = true
		return def
	}
	v := strings.TrimSpace(t.in.Text())
	if v == "" {
		return def
	}
	return v
}

// edit recorre los campos del borrador; Enter conserva el valor propuesto.
func (t *terminal) edit(ctx context.Context, m *workflow.Machine) error {
	d := m.Draft()

	numDossier := strings.ToUpper(t.ask("N° dossier", d.NumDossier))
	client := d.Client
	if numDossier != d.NumDossier || client == nil {
		client = t.lookup(ctx, numDossier)
	}
	if client != nil {
		fmt.Fprintf(t.out, "  → %s\n", client.RaisonSociale)
	} else {
		fmt.Fprintln(t.out, "  → client introuvable")
		t.suggest(ctx, numDossier)
	}

	montant := d.MontantHT
	for {
		raw := t.ask("Montant HT (€)", montant.StringFixed(2))
		v, err := decimal.NewFromString(strings.ReplaceAll(strings.ReplaceAll(raw, " ", ""), ",", "."))
		if err == nil && v.IsPositive() {
			montant = v
			break
		}
		if t.eof {
			return errors.New("entrada cerrada sin un montant válido")
		}
		fmt.Fprintln(t.out, "  montant invalide")
	}
	prestation := t.ask("Prestation", d.Prestation)

	return m.Edit(func(d *workflow.Draft) {
		d.NumDossier = numDossier
		d.Client = client
		d.MontantHT = montant
		d.Prestation = prestation
	})
}

// lookup resuelve el cliente del dossier. Un fallo de la API se muestra como aviso y deja el
// borrador sin cliente: la creación lo volverá a comprobar.
func (t *terminal) lookup(ctx context.Context, numDossier string) *dto.ClientResponse {
	if numDossier == "" {
		return nil
	}
	c, err := t.api.LookupClient(ctx, numDossier)
	if err != nil {
		log.Debug().Err(err).Str("num_dossier", numDossier).Msg("lookup de cliente")
		fmt.Fprintln(t.out, "  (vérification du client impossible)")
		return nil
	}
	return c
}

func (t *terminal) suggest(ctx context.Context, search string) {
	clients, err := t.api.ListClients(ctx, search, 5)
	if err != nil || len(clients) == 0 {
		return
	}
	fmt.Fprintln(t.out, "  dossiers proches :")
	for _, c := range clients {
		fmt.Fprintf(t.out, "    %s  %s\n", c.NumDossier, c.RaisonSociale)
	}
}

func (t *terminal) printError(err error) {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		fmt.Fprintf(t.out, "Erreur : %s\n", apiErr.Message)
		if apiErr.Raw != "" {
			fmt.Fprintf(t.out, "Réponse du modèle :\n%s\n", apiErr.Raw)
		}
		return
	}
	fmt.Fprintf(t.out, "Erreur : %v\n", err)
}

func (t *terminal) printFacture(f *dto.FactureResponse) {
	fmt.Fprintf(t.out, "\nFacture %s créée\n", f.NumeroComplet)
	fmt.Fprintf(t.out, "  HT  %s €\n  TVA %s € (%s %%)\n  TTC %s €\n",
		f.MontantHT.StringFixed(2), f.MontantTVA.StringFixed(2), f.TauxTVA.String(), f.MontantTTC.StringFixed(2))
	if f.StripePaymentLink != nil {
		fmt.Fprintf(t.out, "  Paiement : %s\n", *f.StripePaymentLink)
	}
}

func (t *terminal) savePDF(ctx context.Context, id, path string) {
	data, err := t.api.FacturePDF(ctx, id)
	if err != nil {
		t.printError(err)
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Error().Err(err).Str("path", path).Msg("guardar PDF")
		return
	}
	fmt.Fprintf(t.out, "  PDF : %s\n", path)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
