package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngines_GetEngine(t *testing.T) {
	gem := new(MockEngine)
	engs := &Engines{Gemini: gem}

	for _, name := range []string{"", "gemini", " Gemini "} {
		got, err := engs.GetEngine(name)
		require.NoError(t, err)
		assert.Same(t, gem, got)
	}

	_, err := engs.GetEngine("openai")
	assert.ErrorContains(t, err, "not configured")

	_, err = engs.GetEngine("claude")
	assert.ErrorContains(t, err, "unknown model provider")
}
