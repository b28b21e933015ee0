package ai

import (
	"encoding/json"
	"errors"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/smartcompta/internal/application/dto"
	"github.com/jhoicas/smartcompta/internal/domain"
	domainbilling "github.com/jhoicas/smartcompta/internal/domain/billing"
)

// extractionPrompt instrucción fija común a los dos proveedores de extracción.
const extractionPrompt = `Tu es l'assistant de facturation d'un cabinet d'expertise comptable.
À partir de la dictée fournie, renvoie UNIQUEMENT un objet JSON (sans texte autour) avec exactement ces champs :
{
  "numDossier": "<référence du dossier client, ex. AM0028>",
  "montantHT": <montant hors taxes en euros, nombre décimal>,
  "prestation": "<description courte de la prestation facturée>"
}

Règles :
- numDossier : lettres et chiffres tels que dictés, sans espaces.
- montantHT : montant hors taxes ; si seul un montant TTC est dicté, ne le convertis pas, indique-le tel quel.
- Si une information est absente, utilise "" pour les textes et 0 pour le montant.`

// extractedPayload JSON esperado del modelo. Los campos se leen en crudo porque
// el modelo a veces devuelve el importe como texto ("1 500,50 €") o el dossier como número.
type extractedPayload struct {
	NumDossier json.RawMessage `json:"numDossier"`
	MontantHT  json.RawMessage `json:"montantHT"`
	Prestation json.RawMessage `json:"prestation"`
}

// parseExtractedFields localiza el primer objeto JSON del texto del modelo y lo normaliza.
// Sin objeto o con JSON inválido → *domain.MalformedOutputError con el texto completo.
func parseExtractedFields(raw string) (*dto.ExtractedFields, error) {
	obj := extractJSON(raw)
	if obj == "" {
		return nil, &domain.MalformedOutputError{Reason: "no se encontró ningún objeto JSON", Raw: raw}
	}

	var p extractedPayload
	if err := json.Unmarshal([]byte(obj), &p); err != nil {
		return nil, &domain.MalformedOutputError{Reason: "JSON inválido: " + err.Error(), Raw: raw}
	}

	return &dto.ExtractedFields{
		NumDossier: domainbilling.NormalizeNumDossier(rawString(p.NumDossier)),
		MontantHT:  parseAmount(p.MontantHT),
		Prestation: strings.TrimSpace(rawString(p.Prestation)),
	}, nil
}

// extractJSON devuelve el primer objeto JSON balanceado del texto, o "" si no hay.
// Recorre el texto completo contando llaves y respetando las cadenas, vallas ```json incluidas.
func extractJSON(text string) string {
	for start := strings.IndexByte(text, '{'); start != -1; {
		if end := balancedEnd(text, start); end != -1 {
			return text[start : end+1]
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next == -1 {
			break
		}
		start += next + 1
	}
	return ""
}

// balancedEnd índice de la llave que cierra la abierta en start, o -1.
func balancedEnd(s string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// rawString acepta un string JSON o cualquier otro literal (número) como texto.
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

var amountCleaner = strings.NewReplacer(
	" ", "", "\u00a0", "", "\u202f", "",
	"€", "", "euros", "", "EUR", "", "eur", "", "HT", "",
)

// parseAmount interpreta número o texto ("1 500,50 €", "1.500,50", "1500.5"). Irreconocible → 0.
func parseAmount(raw json.RawMessage) decimal.Decimal {
	s := strings.TrimSpace(rawString(raw))
	if s == "" {
		return decimal.Zero
	}
	s = amountCleaner.Replace(s)

	lastComma := strings.LastIndexByte(s, ',')
	lastDot := strings.LastIndexByte(s, '.')
	switch {
	case lastComma != -1 && lastDot != -1 && lastComma > lastDot:
		// 1.500,50: punto de miles, coma decimal
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case lastComma != -1 && lastDot != -1:
		// 1,500.50
		s = strings.ReplaceAll(s, ",", "")
	case lastComma != -1:
		s = strings.Replace(s, ",", ".", 1)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// transportMessage texto de un fallo de red sin la URL de la petición, que no debe llegar al cliente.
func transportMessage(err error) string {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return "llamada HTTP fallida: " + uerr.Err.Error()
	}
	return "llamada HTTP fallida"
}
