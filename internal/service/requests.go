package service

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// JDRequest asks for a job description to be parsed.
type JDRequest struct {
	RequestID string
	Text      string `json:"text" validate:"required"`
}

// QuestionRequest asks for a multiple-choice question set.
type QuestionRequest struct {
	RequestID  string
	Skill      string `json:"skill" validate:"required"`
	Difficulty string `json:"difficulty" validate:"required"`
}

// GradeRequest compares a candidate answer with a reference answer.
type GradeRequest struct {
	RequestID   string
	Answer      string `json:"answer" validate:"required"`
	ModelAnswer string `json:"model_answer" validate:"required"`
}

// PlagiarismRequest compares two or more texts pairwise. Code selects the
// code embedder.
type PlagiarismRequest struct {
	RequestID string
	Texts     []string `json:"texts" validate:"min=2,dive,required"`
	Code      bool     `json:"code"`
}

// AnomalyRequest scores one behavioral feature vector.
type AnomalyRequest struct {
	RequestID string
	Features  []float64 `json:"features" validate:"required,min=1"`
}

// NewJDRequest trims text, assigns a request id when empty and validates.
func NewJDRequest(requestID, text string) (JDRequest, error) {
	r := JDRequest{RequestID: ensureID(requestID), Text: strings.TrimSpace(text)}
	return r, r.Validate()
}

func NewQuestionRequest(requestID, skill, difficulty string) (QuestionRequest, error) {
	r := QuestionRequest{
		RequestID:  ensureID(requestID),
		Skill:      strings.TrimSpace(skill),
		Difficulty: strings.TrimSpace(difficulty),
	}
	return r, r.Validate()
}

func NewGradeRequest(requestID, answer, modelAnswer string) (GradeRequest, error) {
	r := GradeRequest{
		RequestID:   ensureID(requestID),
		Answer:      strings.TrimSpace(answer),
		ModelAnswer: strings.TrimSpace(modelAnswer),
	}
	return r, r.Validate()
}

// NewPlagiarismRequest trims every text; the caller's slice is not modified.
func NewPlagiarismRequest(requestID string, texts []string, code bool) (PlagiarismRequest, error) {
	trimmed := make([]string, len(texts))
	for i, t := range texts {
		trimmed[i] = strings.TrimSpace(t)
	}
	r := PlagiarismRequest{RequestID: ensureID(requestID), Texts: trimmed, Code: code}
	return r, r.Validate()
}

// NewAnomalyRequest copies features so later caller mutations are not observed.
func NewAnomalyRequest(requestID string, features []float64) (AnomalyRequest, error) {
	var fs []float64
	if features != nil {
		fs = append([]float64(nil), features...)
	}
	r := AnomalyRequest{RequestID: ensureID(requestID), Features: fs}
	return r, r.Validate()
}

func (r JDRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return invalid("text", "must not be empty")
	}
	return validateStruct(r)
}

func (r QuestionRequest) Validate() error {
	if strings.TrimSpace(r.Skill) == "" {
		return invalid("skill", "must not be empty")
	}
	if strings.TrimSpace(r.Difficulty) == "" {
		return invalid("difficulty", "must not be empty")
	}
	return validateStruct(r)
}

func (r GradeRequest) Validate() error {
	if strings.TrimSpace(r.Answer) == "" {
		return invalid("answer", "must not be empty")
	}
	if strings.TrimSpace(r.ModelAnswer) == "" {
		return invalid("model_answer", "must not be empty")
	}
	return validateStruct(r)
}

func (r PlagiarismRequest) Validate() error {
	if err := validateStruct(r); err != nil {
		return err
	}
	for _, t := range r.Texts {
		if strings.TrimSpace(t) == "" {
			return invalid("texts", "must not contain empty entries")
		}
	}
	return nil
}

func (r AnomalyRequest) Validate() error {
	if err := validateStruct(r); err != nil {
		return err
	}
	for _, f := range r.Features {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return invalid("features", "must be finite numbers")
		}
	}
	return nil
}

func ensureID(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return uuid.NewString()
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report fields by their JSON names.
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

// validateStruct runs the struct tags and converts the first violation into
// an InvalidRequestError.
func validateStruct(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return invalid("", err.Error())
	}
	fe := verrs[0]
	field := fe.Field()
	// dive errors are reported as texts[1]; keep the parent name
	if i := strings.IndexByte(field, '['); i > 0 {
		field = field[:i]
	}
	return invalid(field, reason(fe))
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if fe.Kind() == reflect.Slice {
			return "must not be empty"
		}
		if strings.Contains(fe.Namespace(), "[") {
			return "must not contain empty entries"
		}
		return "must not be empty"
	case "min":
		if fe.Param() == "1" {
			return "must not be empty"
		}
		return "needs at least " + fe.Param() + " entries"
	default:
		return "failed " + fe.Tag() + " check"
	}
}
