package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"assessml/pkg/types"
)

const (
	questionCount = 3
	optionCount   = 4
)

// rawQuestion accepts the field spellings generators commonly emit.
type rawQuestion struct {
	Question      string          `json:"question"`
	Prompt        string          `json:"prompt"`
	Options       []string        `json:"options"`
	Choices       []string        `json:"choices"`
	Answer        json.RawMessage `json:"answer"`
	CorrectAnswer json.RawMessage `json:"correct_answer"`
}

// parseQuestions extracts exactly three four-option questions from generator
// output. The JSON may be a bare array or an object with a "questions" field,
// and may be wrapped in code fences or prose.
func parseQuestions(raw string) ([]types.Question, error) {
	text := stripFences(raw)
	var syntaxErr, schemaErr error
	for i := 0; i < len(text); i++ {
		if text[i] != '[' && text[i] != '{' {
			continue
		}
		qs, decoded, err := decodeQuestions(text[i:])
		if err == nil {
			return qs, nil
		}
		// The first value that decodes is the outermost one; later offsets
		// land inside it and would report on an options array instead.
		if decoded {
			if schemaErr == nil {
				schemaErr = err
			}
		} else {
			syntaxErr = err
		}
	}
	switch {
	case schemaErr != nil:
		return nil, schemaErr
	case syntaxErr != nil:
		return nil, syntaxErr
	default:
		return nil, errors.New("no JSON found in generator output")
	}
}

// decodeQuestions reads one JSON value from the start of s. decoded reports
// whether a value was read at all, which separates schema errors from text
// that is not JSON.
func decodeQuestions(s string) (qs []types.Question, decoded bool, err error) {
	dec := json.NewDecoder(strings.NewReader(s))
	var v json.RawMessage
	if err := dec.Decode(&v); err != nil {
		return nil, false, err
	}
	var items []rawQuestion
	switch v = bytes.TrimSpace(v); v[0] {
	case '[':
		if err := json.Unmarshal(v, &items); err != nil {
			return nil, true, err
		}
	case '{':
		var wrapper struct {
			Questions []rawQuestion `json:"questions"`
		}
		if err := json.Unmarshal(v, &wrapper); err != nil {
			return nil, true, err
		}
		items = wrapper.Questions
	default:
		return nil, true, errors.New("unexpected JSON value")
	}
	if len(items) != questionCount {
		return nil, true, fmt.Errorf("want %d questions, got %d", questionCount, len(items))
	}
	out := make([]types.Question, 0, questionCount)
	for i, it := range items {
		q, err := it.normalize()
		if err != nil {
			return nil, true, fmt.Errorf("question %d: %w", i+1, err)
		}
		out = append(out, q)
	}
	return out, true, nil
}

func (r rawQuestion) normalize() (types.Question, error) {
	prompt := strings.TrimSpace(r.Question)
	if prompt == "" {
		prompt = strings.TrimSpace(r.Prompt)
	}
	if prompt == "" {
		return types.Question{}, errors.New("empty question text")
	}
	opts := r.Options
	if len(opts) == 0 {
		opts = r.Choices
	}
	if len(opts) != optionCount {
		return types.Question{}, fmt.Errorf("want %d options, got %d", optionCount, len(opts))
	}
	clean := make([]string, optionCount)
	for i, o := range opts {
		if clean[i] = strings.TrimSpace(o); clean[i] == "" {
			return types.Question{}, fmt.Errorf("option %d is empty", i+1)
		}
	}
	ans := r.Answer
	if len(ans) == 0 {
		ans = r.CorrectAnswer
	}
	idx, err := answerIndex(ans, clean)
	if err != nil {
		return types.Question{}, err
	}
	return types.Question{Prompt: prompt, Options: clean, Answer: idx}, nil
}

// answerIndex resolves an answer given as a 0-based index, the text of an
// option, a letter A-D (optionally followed by ")" or "."), or a digit string.
// A string answer is matched against option text first so that numeric
// options ("1", "2", ...) resolve to the option, not to an index.
func answerIndex(raw json.RawMessage, options []string) (int, error) {
	if len(raw) == 0 {
		return 0, errors.New("missing answer")
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return indexInRange(n)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("answer must be a number or string: %s", raw)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("missing answer")
	}
	for i, o := range options {
		if stripLabel(o) == stripLabel(s) {
			return i, nil
		}
	}
	for i, o := range options {
		if strings.EqualFold(stripLabel(o), stripLabel(s)) {
			return i, nil
		}
	}
	if l := letterIndex(s); l >= 0 {
		return l, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return indexInRange(float64(n))
	}
	return 0, fmt.Errorf("answer %q matches no option", s)
}

func indexInRange(n float64) (int, error) {
	if n != float64(int(n)) || n < 0 || n >= optionCount {
		return 0, fmt.Errorf("answer index %v out of range", n)
	}
	return int(n), nil
}

// letterIndex maps "B", "b)", "C." to 1, 1, 2; anything else to -1.
func letterIndex(s string) int {
	if len(s) > 2 {
		return -1
	}
	if len(s) == 2 && s[1] != ')' && s[1] != '.' {
		return -1
	}
	c := s[0] | 0x20
	if c >= 'a' && c < 'a'+optionCount {
		return int(c - 'a')
	}
	return -1
}

// stripLabel drops a leading "A) " or "a. " option label.
func stripLabel(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 3 && letterIndex(s[:2]) >= 0 && s[2] == ' ' {
		return strings.TrimSpace(s[3:])
	}
	return s
}

// stripFences removes a surrounding ``` or ```json fence if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	start := strings.Index(s, "```")
	if start < 0 {
		return s
	}
	body := s[start+3:]
	// drop a language tag line such as "json"
	if nl := strings.IndexByte(body, '\n'); nl >= 0 && !strings.ContainsAny(body[:nl], "[{") {
		body = body[nl+1:]
	}
	if end := strings.LastIndex(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}
