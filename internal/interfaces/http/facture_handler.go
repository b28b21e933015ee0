package http

import (
	"fmt"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/smartcompta/internal/application/billing"
	"github.com/jhoicas/smartcompta/internal/application/dto"
	"github.com/jhoicas/smartcompta/internal/application/voice"
)

// maxAudioUpload tamaño máximo del campo audio (multipart).
const maxAudioUpload = 20 << 20

// FactureHandler endpoint multiplexado de facturación por voz y lecturas de factura.
type FactureHandler struct {
	voice  *voice.VoiceUseCase
	create *billing.CreateFactureUseCase
	pdf    *billing.PDFUseCase
}

// NewFactureHandler construye el handler.
func NewFactureHandler(voiceUC *voice.VoiceUseCase, createUC *billing.CreateFactureUseCase, pdfUC *billing.PDFUseCase) *FactureHandler {
	return &FactureHandler{voice: voiceUC, create: createUC, pdf: pdfUC}
}

// Handle godoc
// @Summary      Dictée → facture (endpoint multiplexado)
// @Description  multipart/form-data con campo "audio": transcripción.
//               JSON {"action":"extract","transcription":...}: extracción de campos + búsqueda de cliente.
//               JSON {"action":"create","numDossier","montantHT","prestation","genererStripe"?,"tauxTVA"?}: creación.
// @Tags         factures
// @Accept       json,mpfd
// @Produce      json
// @Success      200  {object}  dto.ExtractResponse
// @Success      201  {object}  dto.CreateFactureResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/factures [post]
func (h *FactureHandler) Handle(c *fiber.Ctx) error {
	if strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm) {
		return h.transcribe(c)
	}

	var req dto.FactureActionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("INVALID_BODY", "corps de requête invalide"))
	}

	switch req.Action {
	case dto.ActionExtract:
		return h.extract(c, req)
	case dto.ActionCreate:
		return h.createFacture(c, req)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("UNKNOWN_ACTION",
			fmt.Sprintf("action inconnue %q (extract | create, ou multipart audio)", req.Action)))
	}
}

func (h *FactureHandler) transcribe(c *fiber.Ctx) error {
	fh, err := c.FormFile("audio")
	if err != nil {
		countAction("transcribe", "error")
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("MISSING_AUDIO", "champ audio requis"))
	}
	if fh.Size > maxAudioUpload {
		countAction("transcribe", "error")
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("AUDIO_TOO_LARGE", "fichier audio trop volumineux"))
	}
	f, err := fh.Open()
	if err != nil {
		countAction("transcribe", "error")
		return respondError(c, fmt.Errorf("abrir audio: %w", err))
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		countAction("transcribe", "error")
		return respondError(c, fmt.Errorf("leer audio: %w", err))
	}

	res, err := h.voice.Transcribe(c.UserContext(), dto.Audio{
		Data:     data,
		MimeType: fh.Header.Get(fiber.HeaderContentType),
		Filename: fh.Filename,
	})
	if err != nil {
		countAction("transcribe", "error")
		return respondError(c, err)
	}

	resp := dto.TranscribeResponse{Success: true, Transcription: res.Text, Demo: res.Demo}
	if res.Demo {
		resp.Message = voice.DemoMessage
		countAction("transcribe", "demo")
	} else {
		countAction("transcribe", "ok")
	}
	return c.JSON(resp)
}

func (h *FactureHandler) extract(c *fiber.Ctx, req dto.FactureActionRequest) error {
	res, err := h.voice.Extract(c.UserContext(), req.Transcription)
	if err != nil {
		countAction("extract", "error")
		return respondError(c, err)
	}
	countAction("extract", "ok")
	return c.JSON(dto.ExtractResponse{
		Success:      true,
		Data:         res.Fields,
		ClientTrouve: res.Client != nil,
		Client:       res.Client,
	})
}

func (h *FactureHandler) createFacture(c *fiber.Ctx, req dto.FactureActionRequest) error {
	facture, err := h.create.CreateFacture(c.UserContext(), dto.CreateFactureRequest{
		NumDossier:    req.NumDossier,
		MontantHT:     req.MontantHT,
		Prestation:    req.Prestation,
		GenererStripe: req.GenererStripe,
		TauxTVA:       req.TauxTVA,
	})
	if err != nil {
		countAction("create", "error")
		return respondError(c, err)
	}
	countAction("create", "ok")
	if req.GenererStripe {
		if facture.StripePaymentLink != nil {
			paymentLinks.WithLabelValues("created").Inc()
		} else {
			paymentLinks.WithLabelValues("missing").Inc()
		}
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CreateFactureResponse{Success: true, Facture: facture})
}

// GetByID devuelve la factura con su cliente.
// GET /api/factures/:id
func (h *FactureHandler) GetByID(c *fiber.Ctx) error {
	facture, err := h.create.GetFacture(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.CreateFactureResponse{Success: true, Facture: facture})
}

// PDF vista previa PDF.
// GET /api/factures/:id/pdf
func (h *FactureHandler) PDF(c *fiber.Ctx) error {
	data, filename, err := h.pdf.DownloadFacturePDF(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", filename))
	return c.Send(data)
}
