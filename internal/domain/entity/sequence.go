package entity

// SequenceFactures clave del contador de numeración de facturas.
const SequenceFactures = "FACTURE_SEQ"

// Sequence contador persistente (una fila por clave).
// DernierNumero es el último número emitido dentro de Annee; vuelve a 0 al cambiar de año.
type Sequence struct {
	ID            string
	DernierNumero int
	Annee         int
}
