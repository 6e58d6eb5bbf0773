package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func remoteServer(t *testing.T, handler func(t *testing.T, body remoteRequest) any) *Remote {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		var body remoteRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(handler(t, body))
	}))
	t.Cleanup(srv.Close)
	rem, err := NewRemote(RemoteOptions{Endpoint: srv.URL, APIKey: "secret"})
	require.NoError(t, err)
	return rem
}

func TestNewRemoteRejectsBadEndpoint(t *testing.T) {
	_, err := NewRemote(RemoteOptions{})
	require.Error(t, err)
	_, err = NewRemote(RemoteOptions{Endpoint: "ner:8080"})
	require.Error(t, err)
}

func TestRemoteTagAggregatesGroups(t *testing.T) {
	rem := remoteServer(t, func(t *testing.T, body remoteRequest) any {
		assert.Equal(t, "simple", body.Parameters["aggregation_strategy"])
		return []map[string]any{
			{"entity_group": "ORG", "word": " Google ", "score": 0.99, "start": 0, "end": 6},
			{"entity": "B-MISC", "word": "Python", "score": 0.9},
		}
	})
	ents, err := rem.Tag(context.Background(), "Google wants Python")
	require.NoError(t, err)
	require.Len(t, ents, 2)
	assert.Equal(t, Entity{Group: "ORG", Word: "Google", Score: 0.99, Start: 0, End: 6}, ents[0])
	assert.Equal(t, "MISC", ents[1].Group)
}

func TestRemoteClassifyRanksBothShapes(t *testing.T) {
	rem := remoteServer(t, func(t *testing.T, body remoteRequest) any {
		return map[string]any{"sequence": "x", "labels": []string{"b", "a"}, "scores": []float64{0.3, 0.7}}
	})
	c, err := rem.Classify(context.Background(), "x", []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, c.Labels)
	assert.Equal(t, []float64{0.7, 0.3}, c.Scores)

	rem = remoteServer(t, func(t *testing.T, body remoteRequest) any {
		return []map[string]any{{"label": "a", "score": 0.1}, {"label": "b", "score": 0.9}}
	})
	c, err = rem.Classify(context.Background(), "x", []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, "b", c.Labels[0])
}

func TestRemoteEmbedPooledAndTokenLevel(t *testing.T) {
	rem := remoteServer(t, func(t *testing.T, body remoteRequest) any {
		return [][]float64{{1, 0}, {0, 1}}
	})
	emb, err := rem.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 0}, {0, 1}}, emb)

	rem = remoteServer(t, func(t *testing.T, body remoteRequest) any {
		return [][][]float64{{{1, 2}, {3, 4}}}
	})
	emb, err = rem.Embed(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{2, 3}}, emb)
}

func TestRemoteEmbedCountMismatch(t *testing.T) {
	rem := remoteServer(t, func(t *testing.T, body remoteRequest) any {
		return [][]float64{{1, 0}}
	})
	_, err := rem.Embed(context.Background(), []string{"a", "b"})
	require.Error(t, err)
}

func TestRemoteGenerate(t *testing.T) {
	rem := remoteServer(t, func(t *testing.T, body remoteRequest) any {
		assert.EqualValues(t, 150, body.Parameters["max_new_tokens"])
		return []map[string]string{{"generated_text": "because"}}
	})
	out, err := rem.Generate(context.Background(), "why", GenerateParams{MaxTokens: 150})
	require.NoError(t, err)
	assert.Equal(t, "because", out)
}

func TestRemoteStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	rem, err := NewRemote(RemoteOptions{Endpoint: srv.URL})
	require.NoError(t, err)
	_, err = rem.Generate(context.Background(), "x", GenerateParams{})
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
	assert.Contains(t, se.Error(), "model loading")
}

func TestRemoteUnreachableIsDependencyUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	rem, err := NewRemote(RemoteOptions{Endpoint: url})
	require.NoError(t, err)
	_, err = rem.Tag(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, IsDependencyUnavailable(err), "got %v", err)
}
