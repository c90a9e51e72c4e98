package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// QuestionType enumerates how a question is rendered and answered. Every
// answer is a []string regardless of type; single-value types carry a
// one-element slice.
type QuestionType string

const (
	QuestionTypeText       QuestionType = "text"
	QuestionTypeTextarea   QuestionType = "textarea"
	QuestionTypeSelect     QuestionType = "select"
	QuestionTypeSelectTags QuestionType = "select-tags"
)

type Validation struct {
	Required  bool   `yaml:"required" json:"required"`
	MaxLength int    `yaml:"maxLength,omitempty" json:"maxLength,omitempty"`
	Message   string `yaml:"message" json:"message"`
}

type Question struct {
	ID          string       `yaml:"id" json:"id"`
	Label       string       `yaml:"label" json:"label"`
	Type        QuestionType `yaml:"type" json:"type"`
	Options     []string     `yaml:"options,omitempty" json:"options,omitempty"`
	Placeholder string       `yaml:"placeholder,omitempty" json:"placeholder,omitempty"`
	Answer      []string     `yaml:"-" json:"answer,omitempty"`
	Validation  Validation   `yaml:"validation" json:"validation"`
}

type QuestionStep struct {
	ID          string     `yaml:"id" json:"id"`
	Title       string     `yaml:"title" json:"title"`
	Description string     `yaml:"description" json:"description"`
	Button      string     `yaml:"button,omitempty" json:"button,omitempty"`
	Questions   []Question `yaml:"questions" json:"questions"`
}

//go:embed steps.yaml
var stepsYAML []byte

var steps []QuestionStep

func init() {
	if err := yaml.Unmarshal(stepsYAML, &steps); err != nil {
		panic(fmt.Sprintf("catalog: bad embedded steps.yaml: %v", err))
	}
	if len(steps) == 0 {
		panic("catalog: embedded steps.yaml is empty")
	}
}

// Steps returns a deep copy of the question catalog so callers can attach
// answers without mutating the shared definition.
func Steps() []QuestionStep {
	out := make([]QuestionStep, len(steps))
	for i, s := range steps {
		cp := s
		cp.Questions = make([]Question, len(s.Questions))
		for j, q := range s.Questions {
			qc := q
			if len(q.Options) > 0 {
				qc.Options = append([]string(nil), q.Options...)
			}
			qc.Answer = nil
			cp.Questions[j] = qc
		}
		out[i] = cp
	}
	return out
}

// StepCount is the number of wizard pages.
func StepCount() int { return len(steps) }

// FieldError describes one failed question validation. Field errors render
// inline next to the offending input and block step advancement.
type FieldError struct {
	QuestionID string `json:"questionId"`
	Message    string `json:"message"`
}

// ValidateAnswer applies a question's validation rules to a proposed answer.
func ValidateAnswer(q Question, answer []string) *FieldError {
	trimmed := make([]string, 0, len(answer))
	for _, a := range answer {
		if strings.TrimSpace(a) != "" {
			trimmed = append(trimmed, a)
		}
	}

	if q.Validation.Required && len(trimmed) == 0 {
		msg := q.Validation.Message
		if msg == "" {
			msg = "This field is required."
		}
		return &FieldError{QuestionID: q.ID, Message: msg}
	}

	if q.Type == QuestionTypeSelectTags && q.Validation.MaxLength > 0 && len(trimmed) > q.Validation.MaxLength {
		return &FieldError{
			QuestionID: q.ID,
			Message:    fmt.Sprintf("Select at most %d.", q.Validation.MaxLength),
		}
	}

	return nil
}

// ValidateStep validates a whole step's answers, keyed by question id.
func ValidateStep(step QuestionStep, answers map[string][]string) []FieldError {
	var errs []FieldError
	for _, q := range step.Questions {
		if fe := ValidateAnswer(q, answers[q.ID]); fe != nil {
			errs = append(errs, *fe)
		}
	}
	return errs
}

// StepComplete reports whether every question in the step has at least one
// answer value. Used to gate forward jumps in the wizard.
func StepComplete(step QuestionStep) bool {
	for _, q := range step.Questions {
		if len(q.Answer) == 0 {
			return false
		}
	}
	return true
}
