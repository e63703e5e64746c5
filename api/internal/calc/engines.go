package calc

import (
	"fmt"
	"strings"
)

// Engines holds the configured model providers.
type Engines struct {
	Gemini Engine
	OpenAI Engine
}

func (e *Engines) GetEngine(name string) (Engine, error) {
	var eng Engine
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "gemini":
		eng = e.Gemini
	case "gpt", "openai":
		eng = e.OpenAI
	default:
		return nil, fmt.Errorf("unknown model provider %q; use 'gemini' or 'openai'", name)
	}
	if eng == nil {
		return nil, fmt.Errorf("model provider %q is not configured", name)
	}
	return eng, nil
}
