package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/jhoicas/smartcompta/internal/application/dto"
	"github.com/jhoicas/smartcompta/internal/application/ports"
	"github.com/jhoicas/smartcompta/internal/domain"
)

// Verificar en tiempo de compilación que GeminiService implementa ambos puertos.
var (
	_ ports.Transcriber    = (*GeminiService)(nil)
	_ ports.FieldExtractor = (*GeminiService)(nil)
)

const (
	geminiDefaultBaseURL = "https://generativelanguage.googleapis.com"
	geminiGeneratePath   = "/v1beta/models/%s:generateContent"
	geminiProvider       = "gemini"

	// El audio va inline en base64: Gemini admite hasta ~20 MB por petición.
	maxAudioBytes = 20 << 20
)

// GeminiService adaptador de speech-to-text y extracción sobre la API REST de Google Gemini.
// La misma clave sirve para las dos llamadas.
type GeminiService struct {
	apiKey     string
	model      string
	language   string
	baseURL    string
	httpClient *http.Client
}

// NewGeminiService construye el adaptador. model suele ser "gemini-1.5-flash", lang "fr".
// Si apiKey está vacío, las llamadas devuelven domain.ErrProviderNotConfigured.
func NewGeminiService(apiKey, model, lang string, timeout time.Duration) *GeminiService {
	return &GeminiService{
		apiKey:     apiKey,
		model:      model,
		language:   lang,
		baseURL:    geminiDefaultBaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithBaseURL apunta el adaptador a otro host (tests, proxy).
func (s *GeminiService) WithBaseURL(baseURL string) *GeminiService {
	s.baseURL = strings.TrimRight(baseURL, "/")
	return s
}

// ── Estructuras internas para la API de Gemini ────────────────────────────────

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  genConfig       `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"` // base64 estándar
}

type genConfig struct {
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
	Temperature      float32 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ── Implementación de los puertos ─────────────────────────────────────────────

// Transcribe envía el audio en base64 con una instrucción de transcripción en el idioma configurado.
// Un audio sin voz puede devolver texto vacío sin error.
func (s *GeminiService) Transcribe(ctx context.Context, audio dto.Audio) (string, error) {
	if s.apiKey == "" {
		return "", domain.ErrProviderNotConfigured
	}
	if len(audio.Data) == 0 {
		return "", fmt.Errorf("%w: audio vacío", domain.ErrInvalidInput)
	}
	if len(audio.Data) > maxAudioBytes {
		return "", fmt.Errorf("%w: audio de %d bytes supera el máximo", domain.ErrInvalidInput, len(audio.Data))
	}

	payload := geminiRequest{
		Contents: []geminiContent{
			{
				Role: "user",
				Parts: []geminiPart{
					{Text: s.transcriptionPrompt()},
					{InlineData: &geminiInlineData{
						MimeType: audioMimeType(audio.MimeType, audio.Filename),
						Data:     base64.StdEncoding.EncodeToString(audio.Data),
					}},
				},
			},
		},
		GenerationConfig: genConfig{
			Temperature:     0,
			MaxOutputTokens: 2048,
		},
	}

	text, err := s.generate(ctx, payload)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// ExtractFields pide al modelo el JSON {numDossier, montantHT, prestation} a partir de la transcripción.
func (s *GeminiService) ExtractFields(ctx context.Context, transcript string) (*dto.ExtractedFields, error) {
	if s.apiKey == "" {
		return nil, domain.ErrProviderNotConfigured
	}

	payload := geminiRequest{
		SystemInstruction: &geminiContent{
			Parts: []geminiPart{{Text: extractionPrompt}},
		},
		Contents: []geminiContent{
			{
				Role:  "user",
				Parts: []geminiPart{{Text: "Dictée : " + transcript}},
			},
		},
		GenerationConfig: genConfig{
			ResponseMIMEType: "application/json",
			Temperature:      0.1,
			MaxOutputTokens:  256,
		},
	}

	text, err := s.generate(ctx, payload)
	if err != nil {
		return nil, err
	}
	return parseExtractedFields(text)
}

// generate hace la llamada generateContent y concatena el texto del primer candidato.
func (s *GeminiService) generate(ctx context.Context, payload geminiRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("AI: serializar request: %w", err)
	}

	endpoint := s.baseURL + fmt.Sprintf(geminiGeneratePath, s.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("AI: crear HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// La clave va en cabecera: en la query acabaría dentro de *url.Error.
	req.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("AI: timeout o cancelación: %w", ctx.Err())
		}
		return "", &domain.ProviderError{Provider: geminiProvider, Message: transportMessage(err)}
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 256*1024))
	if err != nil {
		return "", fmt.Errorf("AI: leer respuesta: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(rawBody))
		var errResp geminiResponse
		if jsonErr := json.Unmarshal(rawBody, &errResp); jsonErr == nil && errResp.Error != nil {
			msg = errResp.Error.Message
		}
		return "", &domain.ProviderError{Provider: geminiProvider, StatusCode: resp.StatusCode, Message: msg}
	}

	var gemResp geminiResponse
	if err := json.Unmarshal(rawBody, &gemResp); err != nil {
		return "", &domain.ProviderError{Provider: geminiProvider, StatusCode: resp.StatusCode, Message: "respuesta ilegible: " + err.Error()}
	}
	if len(gemResp.Candidates) == 0 {
		return "", nil
	}

	var sb strings.Builder
	for _, p := range gemResp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}

func (s *GeminiService) transcriptionPrompt() string {
	return fmt.Sprintf("Transcris fidèlement cet enregistrement audio (langue : %s). "+
		"Réponds uniquement avec le texte transcrit, sans commentaire ni mise en forme.", languageName(s.language))
}

// languageName nombre del idioma en su propia lengua ("fr" → "français").
func languageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.Self.Name(tag); name != "" {
		return name
	}
	return code
}

// audioExtensions tipo por extensión cuando el cliente envía application/octet-stream.
var audioExtensions = map[string]string{
	".webm": "audio/webm",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".opus": "audio/ogg",
	".wav":  "audio/wav",
	".mp3":  "audio/mp3",
	".m4a":  "audio/aac",
	".aac":  "audio/aac",
	".flac": "audio/flac",
}

// audioMimeType quita los parámetros ("audio/webm;codecs=opus" → "audio/webm"). Sin tipo de audio
// usa la extensión del fichero; por defecto audio/webm (MediaRecorder).
func audioMimeType(ct, filename string) string {
	mt, _, err := mime.ParseMediaType(ct)
	if err == nil && strings.HasPrefix(mt, "audio/") {
		return mt
	}
	if t, ok := audioExtensions[strings.ToLower(filepath.Ext(filename))]; ok {
		return t
	}
	return "audio/webm"
}
