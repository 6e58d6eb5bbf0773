package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"assessml/internal/backend"
	"assessml/internal/registry"
	"assessml/pkg/types"
)

// RoleLabels are the candidate roles for zero-shot classification.
var RoleLabels = []string{
	"frontend developer",
	"backend developer",
	"full stack developer",
	"data analyst",
	"machine learning engineer",
}

// ExperienceLabels are the candidate seniority levels.
var ExperienceLabels = []string{"fresher", "mid-level", "senior"}

// skillGroups are the entity groups treated as skills.
var skillGroups = map[string]bool{"ORG": true, "MISC": true}

const explainJD = "JD parsed using NER + zero-shot classification"

// ParseJD extracts skills, the most likely role and the experience level from
// a job description.
func (s *Service) ParseJD(ctx context.Context, req JDRequest) (types.Envelope, error) {
	if err := req.Validate(); err != nil {
		return types.Envelope{}, err
	}
	log := s.log.With().Str("request_id", req.RequestID).Logger()

	tagger, err := s.models.EntityTagger()
	if err != nil {
		return types.Envelope{}, s.fail(registry.EntityTagger, req.RequestID, err)
	}
	clf, err := s.models.ZeroShot()
	if err != nil {
		return types.Envelope{}, s.fail(registry.ZeroShotClassifier, req.RequestID, err)
	}

	ents, err := tagger.Tag(ctx, req.Text)
	if err != nil {
		return types.Envelope{}, s.fail(registry.EntityTagger, req.RequestID, err)
	}
	skills := extractSkills(ents)
	log.Debug().Int("entities", len(ents)).Int("skills", len(skills)).Msg("entities tagged")

	var role, exp backend.Classification
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		role, err = classifyTop(gctx, clf, req.Text, RoleLabels)
		return err
	})
	g.Go(func() (err error) {
		exp, err = classifyTop(gctx, clf, req.Text, ExperienceLabels)
		return err
	})
	if err := g.Wait(); err != nil {
		return types.Envelope{}, s.fail(registry.ZeroShotClassifier, req.RequestID, err)
	}

	res := types.JDResult{
		Skills:     skills,
		Role:       role.Labels[0],
		Experience: exp.Labels[0],
		Confidence: types.JDConfidence{Role: role.Scores[0], Experience: exp.Scores[0]},
	}
	log.Debug().Str("role", res.Role).Str("experience", res.Experience).Msg("jd parsed")
	conf := (res.Confidence.Role + res.Confidence.Experience) / 2
	return ok(req.RequestID, res, clamp(conf, 0, 1), explainJD), nil
}

func classifyTop(ctx context.Context, clf backend.ZeroShotClassifier, text string, labels []string) (backend.Classification, error) {
	c, err := clf.Classify(ctx, text, labels)
	if err != nil {
		return c, err
	}
	if len(c.Labels) == 0 || len(c.Scores) == 0 {
		return c, errors.New("classifier returned no labels")
	}
	return c, nil
}

// extractSkills keeps ORG and MISC entities, deduplicated by surface form and
// sorted. The result is never nil.
func extractSkills(ents []backend.Entity) []string {
	seen := make(map[string]struct{}, len(ents))
	out := make([]string, 0, len(ents))
	for _, e := range ents {
		if !skillGroups[strings.ToUpper(e.Group)] {
			continue
		}
		w := strings.TrimSpace(e.Word)
		if w == "" {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}
