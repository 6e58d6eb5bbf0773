package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// RemoteOptions configures a client for one pipeline endpoint of a
// HuggingFace-style inference server (Inference API, TEI, TGI).
type RemoteOptions struct {
	// Endpoint is the full pipeline URL, e.g. http://ner:8080/ or
	// https://api-inference.huggingface.co/models/dslim/bert-base-NER.
	Endpoint       string
	APIKey         string
	ConnectTimeout time.Duration
}

// Remote talks to one inference endpoint over HTTP. The same client type
// serves every text capability; which methods are used depends on the
// pipeline behind Endpoint. It is safe for concurrent use.
type Remote struct {
	endpoint string
	client   *resty.Client
}

// NewRemote constructs a remote client. Requests carry no client-side timeout
// beyond the dial timeout; callers bound them with the context.
func NewRemote(opts RemoteOptions) (*Remote, error) {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		return nil, errors.New("remote endpoint is empty")
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		return nil, fmt.Errorf("remote endpoint must be an http(s) URL: %q", endpoint)
	}
	connectTimeout := opts.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 5 * time.Second
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	cli := resty.New().
		SetTransport(tr).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "assessml/1.0")
	if opts.APIKey != "" {
		cli.SetAuthToken(opts.APIKey)
	}
	return &Remote{endpoint: endpoint, client: cli}, nil
}

// Endpoint returns the pipeline URL this client posts to.
func (r *Remote) Endpoint() string { return r.endpoint }

type remoteRequest struct {
	Inputs     any            `json:"inputs"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

type remoteEntity struct {
	EntityGroup string  `json:"entity_group"`
	Entity      string  `json:"entity"`
	Score       float64 `json:"score"`
	Word        string  `json:"word"`
	Start       int     `json:"start"`
	End         int     `json:"end"`
}

type remoteZeroShot struct {
	Sequence string    `json:"sequence"`
	Labels   []string  `json:"labels"`
	Scores   []float64 `json:"scores"`
}

type remoteLabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type remoteGenerated struct {
	GeneratedText string `json:"generated_text"`
}

// Tag runs token classification with simple aggregation so that word pieces
// are merged into whole entities.
func (r *Remote) Tag(ctx context.Context, text string) ([]Entity, error) {
	var raw []remoteEntity
	body := remoteRequest{Inputs: text, Parameters: map[string]any{"aggregation_strategy": "simple"}}
	if err := r.post(ctx, body, &raw); err != nil {
		return nil, err
	}
	out := make([]Entity, 0, len(raw))
	for _, e := range raw {
		group := e.EntityGroup
		if group == "" {
			group = strings.TrimPrefix(strings.TrimPrefix(e.Entity, "B-"), "I-")
		}
		out = append(out, Entity{Group: group, Word: strings.TrimSpace(e.Word), Score: e.Score, Start: e.Start, End: e.End})
	}
	return out, nil
}

// Classify runs single-label zero-shot classification. Servers answer either
// with {labels, scores} or with a list of {label, score}; both are accepted.
func (r *Remote) Classify(ctx context.Context, text string, labels []string) (Classification, error) {
	if len(labels) == 0 {
		return Classification{}, errors.New("no candidate labels")
	}
	var raw json.RawMessage
	body := remoteRequest{Inputs: text, Parameters: map[string]any{"candidate_labels": labels, "multi_label": false}}
	if err := r.post(ctx, body, &raw); err != nil {
		return Classification{}, err
	}
	var pairs []remoteLabelScore
	var zs remoteZeroShot
	if err := json.Unmarshal(raw, &zs); err == nil && len(zs.Labels) > 0 {
		if len(zs.Labels) != len(zs.Scores) {
			return Classification{}, fmt.Errorf("zero-shot response has %d labels and %d scores", len(zs.Labels), len(zs.Scores))
		}
		for i := range zs.Labels {
			pairs = append(pairs, remoteLabelScore{Label: zs.Labels[i], Score: zs.Scores[i]})
		}
	} else if err := json.Unmarshal(raw, &pairs); err != nil {
		return Classification{}, fmt.Errorf("decode zero-shot response: %w", err)
	}
	if len(pairs) == 0 {
		return Classification{}, errors.New("zero-shot response has no labels")
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].Score > pairs[j].Score })
	c := Classification{Labels: make([]string, len(pairs)), Scores: make([]float64, len(pairs))}
	for i, p := range pairs {
		c.Labels[i] = p.Label
		c.Scores[i] = p.Score
	}
	return c, nil
}

// Embed runs feature extraction. Pooled responses ([][]float64) are used as
// is; token-level responses ([][][]float64) are mean-pooled per text.
func (r *Remote) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	var raw json.RawMessage
	if err := r.post(ctx, remoteRequest{Inputs: texts}, &raw); err != nil {
		return nil, err
	}
	var pooled [][]float64
	if err := json.Unmarshal(raw, &pooled); err == nil {
		if len(pooled) != len(texts) {
			return nil, fmt.Errorf("embedding response has %d vectors for %d texts", len(pooled), len(texts))
		}
		return pooled, nil
	}
	var tokens [][][]float64
	if err := json.Unmarshal(raw, &tokens); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}
	if len(tokens) != len(texts) {
		return nil, fmt.Errorf("embedding response has %d vectors for %d texts", len(tokens), len(texts))
	}
	out := make([][]float64, len(tokens))
	for i, toks := range tokens {
		out[i] = meanPool(toks)
	}
	return out, nil
}

// Generate runs text2text generation bounded by params.MaxTokens.
func (r *Remote) Generate(ctx context.Context, prompt string, params GenerateParams) (string, error) {
	body := remoteRequest{Inputs: prompt}
	if params.MaxTokens > 0 {
		body.Parameters = map[string]any{"max_new_tokens": params.MaxTokens}
	}
	var raw json.RawMessage
	if err := r.post(ctx, body, &raw); err != nil {
		return "", err
	}
	var list []remoteGenerated
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return "", errors.New("generation response is empty")
		}
		return list[0].GeneratedText, nil
	}
	var one remoteGenerated
	if err := json.Unmarshal(raw, &one); err != nil {
		return "", fmt.Errorf("decode generation response: %w", err)
	}
	return one.GeneratedText, nil
}

func (r *Remote) post(ctx context.Context, body remoteRequest, out any) error {
	resp, err := r.client.R().SetContext(ctx).SetBody(body).Post(r.endpoint)
	if err != nil {
		// Translate context timeouts/cancels
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrDependencyUnavailable(fmt.Sprintf("inference server %s: %v", r.endpoint, err))
	}
	if resp.IsError() {
		return &StatusError{Code: resp.StatusCode(), Body: truncate(strings.TrimSpace(resp.String()), 256)}
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func meanPool(tokens [][]float64) []float64 {
	if len(tokens) == 0 {
		return nil
	}
	out := make([]float64, len(tokens[0]))
	for _, t := range tokens {
		for j := range out {
			if j < len(t) {
				out[j] += t[j]
			}
		}
	}
	n := float64(len(tokens))
	for j := range out {
		out[j] /= n
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
