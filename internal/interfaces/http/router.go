package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/smartcompta/internal/application/billing"
	"github.com/jhoicas/smartcompta/internal/application/voice"
	"github.com/jhoicas/smartcompta/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	VoiceUC   *voice.VoiceUseCase
	CreateUC  *billing.CreateFactureUseCase
	ClientUC  *billing.ClientUseCase
	PDFUC     *billing.PDFUseCase
	JWTSecret string // vacío = API sin autenticación
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	if deps.JWTSecret != "" {
		api.Use(AuthMiddleware(deps.JWTSecret), RequireRole(jwt.RoleAdmin, jwt.RoleComptable))
	}

	factureHandler := NewFactureHandler(deps.VoiceUC, deps.CreateUC, deps.PDFUC)
	factures := api.Group("/factures")
	factures.Post("/", factureHandler.Handle)
	factures.Get("/:id", factureHandler.GetByID)
	factures.Get("/:id/pdf", factureHandler.PDF)

	clientHandler := NewClientHandler(deps.ClientUC)
	clients := api.Group("/clients")
	clients.Get("/", clientHandler.List)
	clients.Post("/lookup", clientHandler.Lookup)
}
