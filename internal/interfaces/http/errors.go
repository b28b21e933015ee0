package http

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/smartcompta/internal/application/dto"
	"github.com/jhoicas/smartcompta/internal/domain"
)

const internalMessage = "erreur interne, réessayez plus tard"

// respondError traduce errores de dominio a status HTTP + dto.ErrorResponse.
// Los errores no reconocidos salen como 500 genérico y se registran con su detalle.
func respondError(c *fiber.Ctx, err error) error {
	var perr *domain.ProviderError
	var malformed *domain.MalformedOutputError

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("VALIDATION", "champs requis manquants ou invalides"))
	case errors.Is(err, domain.ErrClientUnknown):
		return c.Status(fiber.StatusNotFound).JSON(dto.Fail("CLIENT_INCONNU", "aucun client pour ce numéro de dossier"))
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.Fail("NOT_FOUND", "ressource introuvable"))
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.Fail("CONFLICT", "numérotation en conflit, réessayez"))
	case errors.Is(err, domain.ErrProviderNotConfigured):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.Fail("AI_UNAVAILABLE", "le service d'IA n'est pas configuré"))
	case errors.As(err, &malformed):
		resp := dto.Fail("EXTRACTION_MALFORMED", malformed.Error())
		resp.Raw = malformed.Raw
		return c.Status(fiber.StatusBadGateway).JSON(resp)
	case errors.As(err, &perr):
		return c.Status(fiber.StatusBadGateway).JSON(dto.Fail("PROVIDER_ERROR", perr.Error()))
	case errors.Is(err, context.DeadlineExceeded):
		return c.Status(fiber.StatusGatewayTimeout).JSON(dto.Fail("TIMEOUT", "le service externe a mis trop de temps à répondre"))
	}

	log.Error().Err(err).Str("path", c.Path()).Msg("error no controlado")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("INTERNAL", internalMessage))
}

// ErrorHandler para fiber.Config: errores devueltos por handlers o por recover.
// Los *fiber.Error (404 de ruta, 405, body demasiado grande) conservan su código.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(dto.Fail("HTTP_"+strconv.Itoa(fe.Code), fe.Message))
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("error inesperado")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("INTERNAL", internalMessage))
}
