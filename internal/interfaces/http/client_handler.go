package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/smartcompta/internal/application/billing"
	"github.com/jhoicas/smartcompta/internal/application/dto"
)

// ClientHandler directorio de clientes (lookup en vivo y selector manual).
type ClientHandler struct {
	uc *billing.ClientUseCase
}

// NewClientHandler construye el handler.
func NewClientHandler(uc *billing.ClientUseCase) *ClientHandler {
	return &ClientHandler{uc: uc}
}

// Lookup godoc
// @Summary      Buscar cliente por numDossier
// @Description  Normaliza (mayúsculas, sin espacios alrededor) y busca. Se usa mientras el usuario escribe.
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ClientLookupRequest  true  "numDossier"
// @Success      200   {object}  dto.ClientLookupResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/clients/lookup [post]
func (h *ClientHandler) Lookup(c *fiber.Ctx) error {
	var req dto.ClientLookupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("INVALID_BODY", "corps de requête invalide"))
	}
	client, err := h.uc.Lookup(c.UserContext(), req.NumDossier)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ClientLookupResponse{Success: true, Client: billing.ToClientResponse(client)})
}

// List lista clientes para la selección manual.
// GET /api/clients?search=&limit=&offset=
func (h *ClientHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("VALIDATION", "paramètres de pagination invalides"))
	}
	page.DefaultPage()
	clients, err := h.uc.List(c.UserContext(), c.Query("search"), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ClientListResponse{
		Success: true,
		Clients: clients,
		Page:    dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}
