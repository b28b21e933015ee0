package billing

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var dossierCaser = cases.Upper(language.French)

// NormalizeNumDossier recorta espacios y pasa a mayúsculas: " am0028 " → "AM0028".
func NormalizeNumDossier(s string) string {
	return dossierCaser.String(strings.TrimSpace(s))
}
