package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"mathcalc/api/internal/calc"
)

const pingPrompt = "Test connection"

type Engine struct {
	APIKey string
	Model  string

	// opts is appended to the client options; tests point it at a fake endpoint.
	opts []option.ClientOption
}

func New(apiKey, model string, opts ...option.ClientOption) *Engine {
	return &Engine{
		APIKey: strings.TrimSpace(apiKey),
		Model:  strings.TrimSpace(model),
		opts:   opts,
	}
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.Model }

// Generate sends the prompt and the image in a single turn and returns the
// first text part of the answer.
func (e *Engine) Generate(ctx context.Context, prompt string, img calc.Image) (string, error) {
	parts := []genai.Part{genai.Text(prompt)}
	if len(img.Data) > 0 {
		parts = append(parts, &genai.Blob{MIMEType: img.MIME, Data: img.Data})
	}
	return e.generate(ctx, parts...)
}

// Ping performs a minimal text-only round trip.
func (e *Engine) Ping(ctx context.Context) error {
	_, err := e.generate(ctx, genai.Text(pingPrompt))
	return err
}

func (e *Engine) generate(ctx context.Context, parts ...genai.Part) (string, error) {
	if e.APIKey == "" {
		return "", fmt.Errorf("%w: GEMINI_API_KEY is empty", calc.ErrModelUnavailable)
	}
	opts := append([]option.ClientOption{option.WithAPIKey(e.APIKey)}, e.opts...)
	cl, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: gemini client: %w", calc.ErrModelUnavailable, err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.Model)
	if m == nil {
		return "", fmt.Errorf("%w: gemini: model is nil", calc.ErrModelUnavailable)
	}
	m.GenerationConfig = genai.GenerationConfig{
		Temperature: ptrFloat32(0),
	}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			return "", fmt.Errorf("%w: gemini: %w", calc.ErrEmptyModelResponse, err)
		}
		return "", fmt.Errorf("%w: gemini: %w", calc.ErrModelUnavailable, err)
	}
	txt := firstText(resp)
	if strings.TrimSpace(txt) == "" {
		return "", fmt.Errorf("%w: gemini returned no text", calc.ErrEmptyModelResponse)
	}
	return txt, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		var b strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
