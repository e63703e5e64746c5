package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mathcalc/api/internal/calc"
	"mathcalc/api/internal/util"
)

const defaultBaseURL = "https://api.openai.com/v1"

type Engine struct {
	APIKey  string
	Model   string
	BaseURL string
	httpc   *http.Client
}

func New(key, model string) *Engine {
	return &Engine{
		APIKey:  strings.TrimSpace(key),
		Model:   strings.TrimSpace(model),
		BaseURL: defaultBaseURL,
		httpc:   &http.Client{Timeout: 120 * time.Second},
	}
}

func (e *Engine) Name() string     { return "gpt" }
func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) Generate(ctx context.Context, prompt string, img calc.Image) (string, error) {
	content := []any{map[string]any{"type": "text", "text": prompt}}
	if len(img.Data) > 0 {
		mime := img.MIME
		if mime == "" {
			mime = util.SniffMimeHTTP(img.Data)
		}
		dataURL := util.MakeDataURL(mime, base64.StdEncoding.EncodeToString(img.Data))
		content = append(content, map[string]any{
			"type":      "image_url",
			"image_url": map[string]any{"url": dataURL, "detail": "high"},
		})
	}
	return e.chat(ctx, content)
}

func (e *Engine) Ping(ctx context.Context) error {
	_, err := e.chat(ctx, "Test connection")
	return err
}

func (e *Engine) chat(ctx context.Context, content any) (string, error) {
	if e.APIKey == "" {
		return "", fmt.Errorf("%w: OPENAI_API_KEY is empty", calc.ErrModelUnavailable)
	}
	body := map[string]any{
		"model": e.Model,
		"messages": []any{
			map[string]any{"role": "user", "content": content},
		},
		"temperature": 0,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(e.BaseURL, "/")+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.APIKey)

	resp, err := e.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: openai: %w", calc.ErrModelUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		x, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: openai %d: %s", calc.ErrModelUnavailable, resp.StatusCode, strings.TrimSpace(string(x)))
	}

	var raw struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", fmt.Errorf("%w: openai: bad response body: %w", calc.ErrModelUnavailable, err)
	}
	if len(raw.Choices) == 0 || strings.TrimSpace(raw.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: openai returned no text", calc.ErrEmptyModelResponse)
	}
	return raw.Choices[0].Message.Content, nil
}
