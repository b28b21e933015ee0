package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE usados para traducir errores de PostgreSQL a errores de dominio.
const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// pgCode SQLSTATE del error (también envuelto), o "" si no viene de PostgreSQL.
func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation numero_complet o num_dossier repetidos.
func isUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

// isSerializationFailure la transacción de numeración perdió la carrera contra otra y fue abortada.
func isSerializationFailure(err error) bool {
	switch pgCode(err) {
	case codeSerializationFailure, codeDeadlockDetected:
		return true
	}
	return false
}
