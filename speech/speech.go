// Package speech wraps an OpenAI-compatible audio API: whisper-style
// transcription for inbound voice notes and speech synthesis for replies.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotUnderstood reports that the service processed the audio but produced
// no usable transcript. Callers are expected to fall back to a canned reply
// instead of treating this as a transport failure.
var ErrNotUnderstood = errors.New("speech: could not understand audio")

type Service interface {
	Transcribe(ctx context.Context, path, language string) (string, error)
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

type Client struct {
	BaseURL  string
	APIKey   string
	STTModel string
	TTSModel string
	HTTP     *http.Client
}

func New(baseURL, apiKey, sttModel, ttsModel string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	if sttModel == "" {
		sttModel = "whisper-1"
	}
	if ttsModel == "" {
		ttsModel = "tts-1"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		APIKey:   apiKey,
		STTModel: sttModel,
		TTSModel: ttsModel,
		HTTP:     &http.Client{Timeout: timeout},
	}
}

type transcriptionResponse struct {
	Text  string `json:"text"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Transcribe uploads a local audio file and returns the recognized text.
// An empty transcript maps to ErrNotUnderstood.
func (c *Client) Transcribe(ctx context.Context, path, language string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("speech: open audio file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fw, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return "", err
	}
	if err := w.WriteField("model", c.STTModel); err != nil {
		return "", err
	}
	if language != "" {
		if err := w.WriteField("language", language); err != nil {
			return "", err
		}
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/audio/transcriptions", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var out transcriptionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("speech: decode transcription (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		if out.Error != nil {
			return "", fmt.Errorf("speech: transcription failed: %s", out.Error.Message)
		}
		return "", fmt.Errorf("speech: transcription failed with status %d", resp.StatusCode)
	}

	text := strings.TrimSpace(out.Text)
	if text == "" {
		return "", ErrNotUnderstood
	}
	return text, nil
}

type synthesisRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format"`
}

// Synthesize renders text to opus-in-ogg audio, ready to send as a Telegram
// voice note.
func (c *Client) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if voice == "" {
		voice = "alloy"
	}

	b, err := json.Marshal(synthesisRequest{
		Model:          c.TTSModel,
		Input:          text,
		Voice:          voice,
		ResponseFormat: "opus",
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/audio/speech", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("speech: synthesis failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("speech: synthesis returned empty audio")
	}
	return raw, nil
}
