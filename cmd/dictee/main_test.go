package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/smartcompta/internal/apiclient"
	"github.com/jhoicas/smartcompta/internal/application/dto"
	"github.com/jhoicas/smartcompta/internal/workflow"
)

// editingMachine máquina en editing con los campos extraídos y sin cliente.
func editingMachine(t *testing.T, fields *dto.ExtractedFields) *workflow.Machine {
	t.Helper()
	m := workflow.NewMachine()
	require.NoError(t, m.StartRecording())
	require.NoError(t, m.AudioReady())
	require.NoError(t, m.Transcribed("bilan annuel 450 euros"))
	require.NoError(t, m.Extracted(fields, nil))
	return m
}

// fakeAPI responde lookup con lookupStatus y un listado vacío; cuenta las llamadas a lookup.
func fakeAPI(t *testing.T, lookupStatus int, lookups *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/clients/lookup":
			atomic.AddInt32(lookups, 1)
			w.WriteHeader(lookupStatus)
			_ = json.NewEncoder(w).Encode(dto.Fail("VALIDATION", "champs requis manquants ou invalides"))
		default:
			_ = json.NewEncoder(w).Encode(dto.ClientListResponse{Success: true, Clients: []*dto.ClientResponse{}})
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTerminal(input, baseURL string) (*terminal, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &terminal{
		in:  bufio.NewScanner(strings.NewReader(input)),
		out: out,
		api: apiclient.New(baseURL, "", 2*time.Second),
	}, out
}

func TestEdit_DossierVacioNoConsultaLaAPI(t *testing.T) {
	var lookups int32
	srv := fakeAPI(t, http.StatusBadRequest, &lookups)
	m := editingMachine(t, &dto.ExtractedFields{Prestation: "Bilan annuel"})
	ui, out := newTerminal("\n450\n\n", srv.URL)

	require.NoError(t, ui.edit(context.Background(), m))

	assert.Zero(t, atomic.LoadInt32(&lookups))
	assert.Equal(t, workflow.StateEditing, m.State())
	assert.Contains(t, out.String(), "client introuvable")
	d := m.Draft()
	assert.Empty(t, d.NumDossier)
	assert.Nil(t, d.Client)
	assert.True(t, decimal.NewFromInt(450).Equal(d.MontantHT))
	assert.Equal(t, "Bilan annuel", d.Prestation)
}

func TestEdit_FalloDelLookupConservaElBorrador(t *testing.T) {
	var lookups int32
	srv := fakeAPI(t, http.StatusInternalServerError, &lookups)
	m := editingMachine(t, &dto.ExtractedFields{MontantHT: decimal.NewFromInt(120), Prestation: "TVA"})
	ui, out := newTerminal("am0028\n\n\n", srv.URL)

	require.NoError(t, ui.edit(context.Background(), m))

	assert.Equal(t, int32(1), atomic.LoadInt32(&lookups))
	assert.Equal(t, workflow.StateEditing, m.State())
	assert.Contains(t, out.String(), "vérification du client impossible")
	d := m.Draft()
	assert.Equal(t, "AM0028", d.NumDossier)
	assert.Nil(t, d.Client)
	assert.True(t, decimal.NewFromInt(120).Equal(d.MontantHT))
	assert.Equal(t, "TVA", d.Prestation)
}
