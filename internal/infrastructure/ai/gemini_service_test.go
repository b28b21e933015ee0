package ai_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/smartcompta/internal/application/dto"
	"github.com/jhoicas/smartcompta/internal/domain"
	"github.com/jhoicas/smartcompta/internal/infrastructure/ai"
)

// geminiReply cuerpo mínimo de generateContent con un candidato de texto.
func geminiReply(text string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": text}}}},
		},
	})
	return string(b)
}

func TestGemini_Transcribe(t *testing.T) {
	audio := []byte("RIFF....WAVEfmt ")
	var got map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "k-123", r.Header.Get("x-goog-api-key"))
		assert.Empty(t, r.URL.RawQuery)
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		_, _ = io.WriteString(w, geminiReply("  Dossier AM0028, bilan annuel, 450 euros hors taxes. "))
	}))
	defer srv.Close()

	svc := ai.NewGeminiService("k-123", "gemini-test", "fr", 5*time.Second).WithBaseURL(srv.URL)
	text, err := svc.Transcribe(context.Background(), dto.Audio{Data: audio, MimeType: "audio/webm;codecs=opus"})

	require.NoError(t, err)
	assert.Equal(t, "Dossier AM0028, bilan annuel, 450 euros hors taxes.", text)

	parts := got["contents"].([]any)[0].(map[string]any)["parts"].([]any)
	require.Len(t, parts, 2)
	assert.Contains(t, parts[0].(map[string]any)["text"], "français")
	inline := parts[1].(map[string]any)["inline_data"].(map[string]any)
	assert.Equal(t, "audio/webm", inline["mime_type"])
	assert.Equal(t, base64.StdEncoding.EncodeToString(audio), inline["data"])
}

func TestGemini_TranscribeSinCandidatosDevuelveVacio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"candidates":[]}`)
	}))
	defer srv.Close()

	svc := ai.NewGeminiService("k", "m", "fr", time.Second).WithBaseURL(srv.URL)
	text, err := svc.Transcribe(context.Background(), dto.Audio{Data: []byte{1, 2, 3}})

	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestGemini_SinClave(t *testing.T) {
	svc := ai.NewGeminiService("", "m", "fr", time.Second)

	_, err := svc.Transcribe(context.Background(), dto.Audio{Data: []byte{1}})
	assert.ErrorIs(t, err, domain.ErrProviderNotConfigured)

	_, err = svc.ExtractFields(context.Background(), "texte")
	assert.ErrorIs(t, err, domain.ErrProviderNotConfigured)
}

func TestGemini_AudioVacio(t *testing.T) {
	svc := ai.NewGeminiService("k", "m", "fr", time.Second)

	_, err := svc.Transcribe(context.Background(), dto.Audio{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGemini_ErrorDelProveedor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":{"code":403,"message":"API key not valid"}}`)
	}))
	defer srv.Close()

	svc := ai.NewGeminiService("bad", "m", "fr", time.Second).WithBaseURL(srv.URL)
	_, err := svc.Transcribe(context.Background(), dto.Audio{Data: []byte{1}})

	var perr *domain.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, http.StatusForbidden, perr.StatusCode)
	assert.Equal(t, "API key not valid", perr.Message)
}

func TestGemini_ExtractFields(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		_, _ = io.WriteString(w, geminiReply(`{"numDossier":"am0028","montantHT":450,"prestation":"Bilan annuel"}`))
	}))
	defer srv.Close()

	svc := ai.NewGeminiService("k", "m", "fr", time.Second).WithBaseURL(srv.URL)
	fields, err := svc.ExtractFields(context.Background(), "dossier AM0028, bilan annuel, 450 euros")

	require.NoError(t, err)
	assert.Equal(t, "AM0028", fields.NumDossier)
	assert.Equal(t, "450", fields.MontantHT.String())
	assert.Equal(t, "Bilan annuel", fields.Prestation)

	cfg := got["generationConfig"].(map[string]any)
	assert.Equal(t, "application/json", cfg["responseMimeType"])
	sys := got["system_instruction"].(map[string]any)["parts"].([]any)[0].(map[string]any)["text"].(string)
	assert.True(t, strings.Contains(sys, "numDossier"))
}

func TestGemini_ExtractFieldsSinJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, geminiReply("Je ne sais pas."))
	}))
	defer srv.Close()

	svc := ai.NewGeminiService("k", "m", "fr", time.Second).WithBaseURL(srv.URL)
	_, err := svc.ExtractFields(context.Background(), "...")

	var malformed *domain.MalformedOutputError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, "Je ne sais pas.", malformed.Raw)
}

func TestGemini_FalloDeRedNoExponeLaClave(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	svc := ai.NewGeminiService("SECRET-KEY-123", "m", "fr", time.Second).WithBaseURL(base)
	_, err := svc.ExtractFields(context.Background(), "Dossier AM0028, 450 euros")

	var perr *domain.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.NotContains(t, err.Error(), "SECRET-KEY-123")
	assert.NotContains(t, err.Error(), base)
	assert.Contains(t, perr.Message, "llamada HTTP fallida")
}
