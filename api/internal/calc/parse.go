package calc

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"mathcalc/api/internal/util"
)

const rawPreviewLen = 200

// Strategy is one way of turning cleaned model text into a generic value.
type Strategy struct {
	Name  string
	Parse func(text string) (any, error)
}

// ParseOutcome records the value and which strategy produced it.
type ParseOutcome struct {
	Value    any
	Strategy string
}

// DefaultStrategies returns the cascade in priority order: Python literal,
// strict JSON, then JSON after quote and boolean repair.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: "literal", Parse: ParseLiteral},
		{Name: "json", Parse: parseJSON},
		{Name: "repaired-json", Parse: parseRepairedJSON},
	}
}

// CleanResponse strips markdown code fences and surrounding whitespace.
func CleanResponse(raw string) string {
	return util.StripCodeFences(raw)
}

// ParseResponse tries each strategy in order and commits to the first success.
func ParseResponse(text string, strategies []Strategy) (ParseOutcome, error) {
	lastErr := errors.New("no parse strategies configured")
	for _, s := range strategies {
		v, err := s.Parse(text)
		if err == nil {
			return ParseOutcome{Value: v, Strategy: s.Name}, nil
		}
		lastErr = fmt.Errorf("%s: %w", s.Name, err)
	}
	return ParseOutcome{}, fmt.Errorf("%w: %w (raw: %q)", ErrUnparsableResponse, lastErr, util.Truncate(text, rawPreviewLen))
}

func parseJSON(text string) (any, error) {
	if !gjson.Valid(text) {
		return nil, errors.New("invalid JSON")
	}
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

var (
	pyTrue  = regexp.MustCompile(`\bTrue\b`)
	pyFalse = regexp.MustCompile(`\bFalse\b`)
	pyNone  = regexp.MustCompile(`\bNone\b`)
)

// RepairJSON rewrites Python-flavoured output into JSON: single quotes become
// double quotes and True/False/None become true/false/null.
func RepairJSON(text string) string {
	text = strings.ReplaceAll(text, "'", `"`)
	text = pyTrue.ReplaceAllString(text, "true")
	text = pyFalse.ReplaceAllString(text, "false")
	return pyNone.ReplaceAllString(text, "null")
}

func parseRepairedJSON(text string) (any, error) {
	return parseJSON(RepairJSON(text))
}
