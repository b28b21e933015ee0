package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound      = errors.New("recurso no encontrado")
	ErrInvalidInput  = errors.New("entrada inválida")
	ErrDuplicate     = errors.New("recurso duplicado")
	ErrConflict      = errors.New("conflicto con el estado actual")
	ErrClientUnknown = fmt.Errorf("%w: numDossier sin cliente", ErrNotFound)

	// ErrProviderNotConfigured: falta la clave del proveedor externo (IA o pagos).
	ErrProviderNotConfigured = errors.New("proveedor externo no configurado")
)

// ProviderError respuesta no exitosa de un proveedor externo (speech-to-text, LLM, pagos).
// Message conserva el texto del proveedor para mostrarlo al usuario.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s HTTP %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// MalformedOutputError el modelo respondió texto sin un objeto JSON utilizable.
// Raw es la respuesta completa del modelo, para diagnóstico.
type MalformedOutputError struct {
	Reason string
	Raw    string
}

func (e *MalformedOutputError) Error() string {
	return "respuesta del modelo inutilizable: " + e.Reason
}
