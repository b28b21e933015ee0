package billing

import (
	"fmt"

	"github.com/jhoicas/smartcompta/internal/domain/entity"
)

// InvoicePrefixBase raíz del prefijo de factura.
const InvoicePrefixBase = "FA"

// InvoiceNumber número de factura asignado.
type InvoiceNumber struct {
	SequentialNumber int
	Prefix           string // "FA-2026-"
	FullNumber       string // "FA-2026-0001"
}

// PrefixForYear devuelve "FA-<año>-".
func PrefixForYear(year int) string {
	return fmt.Sprintf("%s-%d-", InvoicePrefixBase, year)
}

// FormatFullNumber concatena prefijo y número con relleno mínimo de 4 dígitos (nunca trunca).
func FormatFullNumber(prefix string, n int) string {
	return fmt.Sprintf("%s%04d", prefix, n)
}

// Advance aplica la regla anual sobre el contador: si el año almacenado difiere se reinicia a 0,
// después incrementa. Modifica seq y devuelve el número emitido.
func Advance(seq *entity.Sequence, year int) InvoiceNumber {
	if seq.Annee != year {
		seq.DernierNumero = 0
		seq.Annee = year
	}
	seq.DernierNumero++
	prefix := PrefixForYear(year)
	return InvoiceNumber{
		SequentialNumber: seq.DernierNumero,
		Prefix:           prefix,
		FullNumber:       FormatFullNumber(prefix, seq.DernierNumero),
	}
}
