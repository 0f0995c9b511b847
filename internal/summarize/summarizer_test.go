package summarize

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teampulse/teampulse/internal/config"
	"github.com/teampulse/teampulse/pkg/cerr"
)

func testEnv(url, modelKey string) *config.SummarizerEnv {
	return &config.SummarizerEnv{
		APIToken:  "hf_test",
		BaseURL:   url,
		ModelKey:  modelKey,
		MinLength: 30,
		MaxLength: 130,
	}
}

func TestRegistry_Model(t *testing.T) {
	registry := NewRegistry()

	model, err := registry.Model(KindSummarization, "")
	require.NoError(t, err)
	assert.Equal(t, "sshleifer/distilbart-cnn-12-6", model, "empty key selects the default")

	model, err = registry.Model(KindSummarization, "pegasus")
	require.NoError(t, err)
	assert.Equal(t, "google/pegasus-xsum", model)

	_, err = registry.Model(KindSummarization, "gpt9000")
	assert.Error(t, err)

	assert.NotEmpty(t, registry.Spec("sshleifer/distilbart-cnn-12-6").Parameters)
	assert.Contains(t, registry.Keys(KindSummarization), "bart")
}

func TestHFClient_Summarize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/sshleifer%2Fdistilbart-cnn-12-6", r.URL.EscapedPath())
		assert.Equal(t, "Bearer hf_test", r.Header.Get("Authorization"))

		var req inferenceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 30, req.Parameters.MinLength)
		assert.Equal(t, 130, req.Parameters.MaxLength)
		assert.False(t, req.Parameters.DoSample)

		_ = json.NewEncoder(w).Encode([]map[string]string{{"summary_text": "short version"}})
	}))
	defer srv.Close()

	client, err := NewHFClient(testEnv(srv.URL, "distilbart"), NewRegistry())
	require.NoError(t, err)
	assert.Equal(t, "sshleifer/distilbart-cnn-12-6", client.Model())

	summary, err := client.Summarize(context.Background(), "a very long text about many things", 30, 130)
	require.NoError(t, err)
	assert.Equal(t, "short version", summary)
}

func TestHFClient_Summarize_EmptyInput(t *testing.T) {
	client, err := NewHFClient(testEnv("http://127.0.0.1:0", ""), NewRegistry())
	require.NoError(t, err)

	summary, err := client.Summarize(context.Background(), "", 30, 130)
	require.NoError(t, err)
	assert.Empty(t, summary, "empty input short-circuits without a request")
}

func TestHFClient_Summarize_APIFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"Model is currently loading"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client, err := NewHFClient(testEnv(srv.URL, ""), NewRegistry())
	require.NoError(t, err)

	_, err = client.Summarize(context.Background(), "text", 30, 130)
	assert.True(t, cerr.IsCode(err, cerr.Unavailable))
}

func TestNewHFClient_UnknownModelKey(t *testing.T) {
	_, err := NewHFClient(testEnv("http://127.0.0.1:0", "gpt9000"), NewRegistry())
	assert.Error(t, err)
}
