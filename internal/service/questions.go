package service

import (
	"context"
	"fmt"
	"strings"

	"assessml/internal/backend"
	"assessml/internal/registry"
	"assessml/pkg/types"
)

const (
	questionMaxTokens = 512
	questionAttempts  = 2
	explainQuestions  = "Questions generated by the text generator"
)

func questionPrompt(skill, difficulty string) string {
	return fmt.Sprintf(`Generate %d MCQ questions for skill: %s
Difficulty: %s
Each question must have %d options and exactly 1 correct answer.
Return JSON only: an array of objects with keys "question", "options" and "answer" (index of the correct option, 0-3).`,
		questionCount, skill, difficulty, optionCount)
}

// GenerateQuestions asks the generator for three multiple-choice questions
// and validates the output. Unparseable output is regenerated once.
func (s *Service) GenerateQuestions(ctx context.Context, req QuestionRequest) (types.Envelope, error) {
	if err := req.Validate(); err != nil {
		return types.Envelope{}, err
	}
	gen, err := s.models.Generator()
	if err != nil {
		return types.Envelope{}, s.fail(registry.TextGenerator, req.RequestID, err)
	}
	prompt := questionPrompt(req.Skill, req.Difficulty)

	var parseErr error
	for attempt := 1; attempt <= questionAttempts; attempt++ {
		raw, err := gen.Generate(ctx, prompt, backend.GenerateParams{MaxTokens: questionMaxTokens})
		if err != nil {
			return types.Envelope{}, s.fail(registry.TextGenerator, req.RequestID, err)
		}
		qs, err := parseQuestions(raw)
		if err == nil {
			set := types.QuestionSet{
				Skill:      req.Skill,
				Difficulty: req.Difficulty,
				Questions:  qs,
				Raw:        strings.TrimSpace(raw),
			}
			return ok(req.RequestID, set, 0.85, explainQuestions), nil
		}
		parseErr = err
		s.log.Debug().Str("request_id", req.RequestID).Int("attempt", attempt).Err(err).Msg("generator output rejected")
	}
	return types.Envelope{}, s.fail(registry.TextGenerator, req.RequestID, fmt.Errorf("unusable question output: %w", parseErr))
}
