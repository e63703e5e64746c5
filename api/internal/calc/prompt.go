package calc

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Variables maps a variable name to a string or numeric value.
type Variables map[string]any

// Validate rejects values the model prompt cannot carry.
func (v Variables) Validate() error {
	for name, val := range v {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: empty variable name", ErrInvalidInput)
		}
		switch val.(type) {
		case string, json.Number, float64, float32, int, int64:
		default:
			return fmt.Errorf("%w: variable %q must be a string or number, got %T", ErrInvalidInput, name, val)
		}
	}
	return nil
}

const promptRules = `You are a specialized mathematical expression analyzer. Analyze the handwritten mathematical content in the image and provide precise calculations.
IMPORTANT RULES:
1. ALWAYS follow PEMDAS (Parentheses, Exponents, Multiplication/Division left-to-right, Addition/Subtraction left-to-right).
2. Explain the calculation step by step in the 'steps' field.
3. Return ALL numbers with full precision.
4. Keep units attached to results when the expression carries units.
`

const promptFormat = `
RESPONSE FORMAT:
Return a LIST of objects, where each object MUST follow this structure:
{
  'expr': 'original expression',
  'result': 'final calculated result',
  'steps': [{'type': 'text' or 'math', 'content': 'one step'}, ...],
  'type': 'one of: arithmetic|equation|variable_assignment|function',
  'assign': boolean,
  'latex': 'LaTeX formatted expression'
}

EXPRESSION TYPES AND EXAMPLES:
1. Arithmetic: '2 + 3 * 4'
   Response: {'expr': '2 + 3 * 4', 'result': '14', 'steps': [{'type': 'text', 'content': 'Multiply first'}, {'type': 'math', 'content': '3 * 4 = 12'}, {'type': 'math', 'content': '2 + 12 = 14'}], 'type': 'arithmetic', 'assign': False, 'latex': '2 + 3 \\times 4 = 14'}

2. Equations: 'x^2 + 2x + 1 = 0'
   Response: {'expr': 'x', 'result': '-1', 'steps': [{'type': 'math', 'content': '(x + 1)^2 = 0'}, {'type': 'math', 'content': 'x = -1'}], 'type': 'equation', 'assign': True, 'latex': 'x = -1'}

3. Variable Assignment: 'y = 5'
   Response: {'expr': 'y', 'result': '5', 'steps': [{'type': 'math', 'content': 'y = 5'}], 'type': 'variable_assignment', 'assign': True, 'latex': 'y = 5'}

4. Functions: 'sin(30°)'
   Response: {'expr': 'sin(30°)', 'result': '0.5', 'steps': [{'type': 'math', 'content': 'sin(30°) = 0.5'}], 'type': 'function', 'assign': False, 'latex': '\\sin(30°) = 0.5'}

SPECIAL INSTRUCTIONS:
- For fractions, return both decimal and fractional forms: '1/3' -> '0.3333... (1/3)'
- For trigonometric functions, assume degrees unless radians are specified
- For equations with multiple variables, solve and return each variable as its own object
- Always include proper LaTeX formatting for mathematical symbols
- Handle special mathematical constants (π, e, etc.) with full precision
- For complex expressions, break down the steps clearly

DO NOT USE BACKTICKS OR MARKDOWN FORMATTING IN THE RESPONSE.
ENSURE ALL STRINGS ARE PROPERLY QUOTED SO THE RESPONSE IS A VALID PYTHON LITERAL.
`

// BuildPrompt renders the instructions with the caller's variables embedded
// as compact JSON.
func BuildPrompt(vars Variables) (string, error) {
	if vars == nil {
		vars = Variables{}
	}
	enc, err := json.Marshal(vars)
	if err != nil {
		return "", fmt.Errorf("%w: variables: %w", ErrInvalidInput, err)
	}
	var b strings.Builder
	b.WriteString(promptRules)
	_, _ = fmt.Fprintf(&b, "5. For variables, use values from this dictionary: %s\n", enc)
	b.WriteString(promptFormat)
	return b.String(), nil
}
