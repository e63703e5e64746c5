package calc

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Normalize turns a parsed model value into records. A lone object is
// treated as a one element list; elements without both "expr" and "result"
// are dropped. The returned slice is never nil.
func Normalize(v any) []ResultRecord {
	var items []any
	switch t := v.(type) {
	case []any:
		items = t
	case map[string]any:
		items = []any{t}
	}

	out := make([]ResultRecord, 0, len(items))
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok || !hasRequired(m) {
			continue
		}
		out = append(out, buildRecord(m))
	}
	return out
}

func hasRequired(m map[string]any) bool {
	_, hasExpr := m["expr"]
	_, hasResult := m["result"]
	return hasExpr && hasResult
}

func buildRecord(m map[string]any) ResultRecord {
	r := ResultRecord{
		Expression:   text(m["expr"]),
		Result:       text(m["result"]),
		Kind:         KindArithmetic,
		IsAssignment: flag(m["assign"]),
		Steps:        steps(m["steps"]),
	}
	if k, ok := m["type"].(string); ok {
		r.Kind = ParseKind(k)
	}
	if l, ok := m["latex"]; ok && l != nil {
		r.LaTeX = text(l)
	} else {
		r.LaTeX = fmt.Sprintf("%s = %s", r.Expression, r.Result)
	}
	return r
}

// text renders a scalar as the model meant it; composite values fall back to
// compact JSON.
func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

func flag(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(t))
		return b
	}
	return false
}

// steps accepts a list of plain strings, {type, content} maps or a mix.
// Anything that is not a list yields no steps.
func steps(v any) []Step {
	items, _ := v.([]any)
	out := make([]Step, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			content := text(m["content"])
			kind := StepKind(strings.ToLower(strings.TrimSpace(text(m["type"]))))
			if kind != StepText && kind != StepMath {
				kind = ClassifyStep(content)
			}
			out = append(out, Step{Kind: kind, Content: content})
			continue
		}
		content := text(it)
		out = append(out, Step{Kind: ClassifyStep(content), Content: content})
	}
	return out
}
