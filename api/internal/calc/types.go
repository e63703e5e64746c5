package calc

import "strings"

type Kind string

const (
	KindArithmetic         Kind = "arithmetic"
	KindEquation           Kind = "equation"
	KindVariableAssignment Kind = "variable_assignment"
	KindFunction           Kind = "function"
)

// ParseKind maps free text onto a Kind, falling back to arithmetic.
func ParseKind(s string) Kind {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindArithmetic, KindEquation, KindVariableAssignment, KindFunction:
		return k
	}
	return KindArithmetic
}

type StepKind string

const (
	StepText StepKind = "text"
	StepMath StepKind = "math"
)

const mathOperators = "=+-*/^"

// ClassifyStep reports math for any content carrying an operator character.
func ClassifyStep(content string) StepKind {
	if strings.ContainsAny(content, mathOperators) {
		return StepMath
	}
	return StepText
}

type Step struct {
	Kind    StepKind `json:"type"`
	Content string   `json:"content"`
}

// ResultRecord is one expression read from the image with its evaluation.
// JSON names follow the record shape the model is asked to produce.
type ResultRecord struct {
	Expression   string `json:"expr"`
	Result       string `json:"result"`
	Steps        []Step `json:"steps"`
	Kind         Kind   `json:"type"`
	IsAssignment bool   `json:"assign"`
	LaTeX        string `json:"latex"`
}

// Image is a decoded upload ready to be sent to the model.
type Image struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
}
