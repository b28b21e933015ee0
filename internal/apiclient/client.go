// Package apiclient cliente HTTP de la API SmartCompta para el cliente de terminal.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/smartcompta/internal/application/dto"
)

// APIError respuesta no exitosa de la API, con el cuerpo de error decodificado.
type APIError struct {
	Status  int
	Code    string
	Message string
	Raw     string // salida del modelo cuando la extracción no devolvió JSON
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("HTTP %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
}

// IsNotFound indica un 404 de la API (cliente o factura inexistente).
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == fiber.StatusNotFound
}

// Client habla con /api. Token vacío = sin cabecera Authorization.
type Client struct {
	baseURL string
	token   string
	timeout time.Duration
}

// New crea el cliente. timeout acota cada petición (las de IA pueden tardar decenas de segundos).
func New(baseURL, token string, timeout time.Duration) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), token: token, timeout: timeout}
}

// Transcribe envía el audio como multipart (campo audio).
func (c *Client) Transcribe(ctx context.Context, audio dto.Audio) (*dto.TranscribeResponse, error) {
	filename := audio.Filename
	if filename == "" {
		filename = "dictee.webm"
	}
	a := c.agent(ctx, fiber.Post(c.baseURL+"/api/factures/")).
		FileData(&fiber.FormFile{Fieldname: "audio", Name: filename, Content: audio.Data}).
		MultipartForm(nil)

	var out dto.TranscribeResponse
	if err := c.do(a, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Extract pide la extracción de campos y la búsqueda del cliente.
func (c *Client) Extract(ctx context.Context, transcript string) (*dto.ExtractResponse, error) {
	a := c.agent(ctx, fiber.Post(c.baseURL+"/api/factures/")).
		JSON(dto.FactureActionRequest{Action: dto.ActionExtract, Transcription: transcript})

	var out dto.ExtractResponse
	if err := c.do(a, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateFacture crea la factura; req.Action se fuerza a create.
func (c *Client) CreateFacture(ctx context.Context, req dto.FactureActionRequest) (*dto.FactureResponse, error) {
	req.Action = dto.ActionCreate
	a := c.agent(ctx, fiber.Post(c.baseURL+"/api/factures/")).JSON(req)

	var out dto.CreateFactureResponse
	if err := c.do(a, &out); err != nil {
		return nil, err
	}
	if out.Facture == nil {
		return nil, errors.New("respuesta sin factura")
	}
	return out.Facture, nil
}

// LookupClient busca un cliente por numDossier; nil, nil si no existe.
func (c *Client) LookupClient(ctx context.Context, numDossier string) (*dto.ClientResponse, error) {
	a := c.agent(ctx, fiber.Post(c.baseURL+"/api/clients/lookup")).
		JSON(dto.ClientLookupRequest{NumDossier: numDossier})

	var out dto.ClientLookupResponse
	err := c.do(a, &out)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return out.Client, nil
}

// ListClients lista clientes para elegir uno a mano.
func (c *Client) ListClients(ctx context.Context, search string, limit int) ([]*dto.ClientResponse, error) {
	q := url.Values{}
	q.Set("search", search)
	q.Set("limit", fmt.Sprint(limit))
	a := c.agent(ctx, fiber.Get(c.baseURL+"/api/clients/?"+q.Encode()))

	var out dto.ClientListResponse
	if err := c.do(a, &out); err != nil {
		return nil, err
	}
	return out.Clients, nil
}

// FacturePDF descarga la vista previa PDF.
func (c *Client) FacturePDF(ctx context.Context, id string) ([]byte, error) {
	a := c.agent(ctx, fiber.Get(c.baseURL+"/api/factures/"+url.PathEscape(id)+"/pdf"))
	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("apiclient: %w", errors.Join(errs...))
	}
	if code != fiber.StatusOK {
		return nil, decodeError(code, body)
	}
	return body, nil
}

func (c *Client) agent(ctx context.Context, a *fiber.Agent) *fiber.Agent {
	if c.token != "" {
		a.Set(fiber.HeaderAuthorization, "Bearer "+c.token)
	}
	timeout := c.timeout
	if dl, ok := ctx.Deadline(); ok {
		if until := time.Until(dl); timeout <= 0 || until < timeout {
			timeout = until
		}
	}
	if timeout > 0 {
		a.Timeout(timeout)
	}
	return a
}

func (c *Client) do(a *fiber.Agent, out any) error {
	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("apiclient: %w", errors.Join(errs...))
	}
	if code < 200 || code > 299 {
		return decodeError(code, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("apiclient: respuesta inválida: %w", err)
	}
	return nil
}

func decodeError(code int, body []byte) error {
	var resp dto.ErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.Error == "" {
		return &APIError{Status: code, Message: strings.TrimSpace(string(body))}
	}
	return &APIError{Status: code, Code: resp.Code, Message: resp.Error, Raw: resp.Raw}
}
