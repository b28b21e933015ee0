package ai

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/smartcompta/internal/domain"
)

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"json puro", `{"a":1}`, `{"a":1}`},
		{"texto alrededor", `Voici le résultat : {"a":1} merci.`, `{"a":1}`},
		{"bloque markdown", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"objeto antes de la valla", "{\"n\":1} voir ```note {\"n\":2}```", `{"n":1}`},
		{"prosa con valla", "Voici :\n```\n{\"a\":1}\n```\nBonne journée", `{"a":1}`},
		{"objetos anidados", `x {"a":{"b":2}} y {"c":3}`, `{"a":{"b":2}}`},
		{"llave dentro de string", `{"p":"fin }","n":1}`, `{"p":"fin }","n":1}`},
		{"comilla escapada", `{"p":"dit \"ok}\"","n":1}`, `{"p":"dit \"ok}\"","n":1}`},
		{"primer objeto sin cerrar", `{ oups {"a":1}`, `{"a":1}`},
		{"sin json", "Je n'ai pas compris la dictée.", ""},
		{"vacío", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, extractJSON(tc.in))
		})
	}
}

func TestParseAmount(t *testing.T) {
	cases := map[string]string{
		`1500`:          "1500",
		`1500.5`:        "1500.5",
		`"1 500,50 €"`:  "1500.5",
		`"1.500,50"`:    "1500.5",
		`"1,500.50"`:    "1500.5",
		`"250 euros"`:   "250",
		`"1 200 EUR"`:   "1200",
		`"mille euros"`: "0",
		`null`:          "0",
		`""`:            "0",
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			got := parseAmount(json.RawMessage(in))
			assert.Equal(t, want, got.String())
		})
	}
}

func TestParseExtractedFields_Normaliza(t *testing.T) {
	raw := "D'accord.\n```json\n{\"numDossier\": \" am0028 \", \"montantHT\": \"450,00\", \"prestation\": \"  Bilan annuel \"}\n```"

	fields, err := parseExtractedFields(raw)
	require.NoError(t, err)
	assert.Equal(t, "AM0028", fields.NumDossier)
	assert.Equal(t, "450", fields.MontantHT.String())
	assert.Equal(t, "Bilan annuel", fields.Prestation)
}

func TestParseExtractedFields_DossierNumerico(t *testing.T) {
	fields, err := parseExtractedFields(`{"numDossier": 2817, "montantHT": 90, "prestation": "Paie"}`)
	require.NoError(t, err)
	assert.Equal(t, "2817", fields.NumDossier)
}

func TestParseExtractedFields_SinJSONConservaRaw(t *testing.T) {
	raw := "Désolé, je ne peux pas répondre."

	_, err := parseExtractedFields(raw)

	var malformed *domain.MalformedOutputError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, raw, malformed.Raw)
}

func TestParseExtractedFields_JSONInvalido(t *testing.T) {
	raw := `{"numDossier": "AM0028", "montantHT": }`

	_, err := parseExtractedFields(raw)

	var malformed *domain.MalformedOutputError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, raw, malformed.Raw)
}

func TestAudioMimeType(t *testing.T) {
	assert.Equal(t, "audio/webm", audioMimeType("audio/webm;codecs=opus", "blob"))
	assert.Equal(t, "audio/ogg", audioMimeType("application/octet-stream", "dictee.OGG"))
	assert.Equal(t, "audio/wav", audioMimeType("", "note.wav"))
	assert.Equal(t, "audio/webm", audioMimeType("", ""))
}
