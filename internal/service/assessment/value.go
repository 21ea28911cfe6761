package assessment

import (
	"encoding/json"
	"fmt"

	"github.com/umojalearning/umoja-backend/internal/model"
)

// ResponseKind tags which payload a ResponseValue carries.
type ResponseKind string

const (
	KindText       ResponseKind = "text"
	KindNumeric    ResponseKind = "numeric"
	KindStructured ResponseKind = "structured"
)

// ResponseValue is an explicit variant: exactly one payload field is
// meaningful, selected by Kind. It is validated against the question's
// declared type before anything is written.
type ResponseValue struct {
	Kind       ResponseKind    `json:"kind"`
	Text       string          `json:"text,omitempty"`
	Numeric    int             `json:"numeric,omitempty"`
	Structured json.RawMessage `json:"structured,omitempty"`
}

// TextValue, NumericValue, and StructuredValue build tagged values.
func TextValue(s string) ResponseValue { return ResponseValue{Kind: KindText, Text: s} }

func NumericValue(n int) ResponseValue { return ResponseValue{Kind: KindNumeric, Numeric: n} }

func StructuredValue(raw json.RawMessage) ResponseValue {
	return ResponseValue{Kind: KindStructured, Structured: raw}
}

// kindFor maps a question type to the response kind it accepts.
func kindFor(t model.QuestionType) (ResponseKind, error) {
	switch t {
	case model.QuestionLikertScale:
		return KindNumeric, nil
	case model.QuestionMultipleChoice, model.QuestionOpenEnded:
		return KindText, nil
	case model.QuestionImageSelection:
		return KindStructured, nil
	}
	return "", fmt.Errorf("unknown question type %q", t)
}

// validate checks the value against the question's declared type and
// rejects empty payloads.
func (v ResponseValue) validate(t model.QuestionType) error {
	want, err := kindFor(t)
	if err != nil {
		return err
	}
	if v.Kind != want {
		return fmt.Errorf("%w: question %q expects %s, got %s", ErrValueMismatch, t, want, v.Kind)
	}
	switch v.Kind {
	case KindText:
		if v.Text == "" {
			return fmt.Errorf("%w: empty text answer", ErrValueMismatch)
		}
	case KindStructured:
		if len(v.Structured) == 0 || !json.Valid(v.Structured) {
			return fmt.Errorf("%w: structured answer must be valid JSON", ErrValueMismatch)
		}
	}
	return nil
}

// apply writes the single payload field onto the response row.
func (v ResponseValue) apply(r *model.AssessmentResponse) {
	switch v.Kind {
	case KindText:
		text := v.Text
		r.ResponseValue = &text
	case KindNumeric:
		n := v.Numeric
		r.ResponseNumeric = &n
	case KindStructured:
		r.ResponseJSON = []byte(v.Structured)
	}
}
