// Package summarize turns long task and chat text into short summaries via a
// hosted inference API. The core treats the output as an opaque string.
package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/teampulse/teampulse/internal/config"
	"github.com/teampulse/teampulse/pkg/cerr"
)

// Summarizer condenses text to between minLen and maxLen tokens. May be slow;
// callers pass a context and decide how a failure degrades.
type Summarizer interface {
	Summarize(ctx context.Context, text string, minLen, maxLen int) (string, error)
}

// HFClient is a Summarizer backed by the Hugging Face Inference API.
type HFClient struct {
	baseURL string
	token   string
	model   string
	httpc   *http.Client
}

func NewHFClient(env *config.SummarizerEnv, registry *Registry) (*HFClient, error) {
	model, err := registry.Model(KindSummarization, env.ModelKey)
	if err != nil {
		return nil, err
	}
	return &HFClient{
		baseURL: env.BaseURL,
		token:   env.APIToken,
		model:   model,
		httpc: &http.Client{
			Timeout: 120 * time.Second, // model cold starts are slow
		},
	}, nil
}

// Model returns the resolved model identifier.
func (c *HFClient) Model() string {
	return c.model
}

type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
}

type inferenceParameters struct {
	MinLength int  `json:"min_length"`
	MaxLength int  `json:"max_length"`
	DoSample  bool `json:"do_sample"`
}

func (c *HFClient) Summarize(ctx context.Context, text string, minLen, maxLen int) (string, error) {
	if text == "" {
		return "", nil
	}

	body, err := json.Marshal(inferenceRequest{
		Inputs: text,
		Parameters: inferenceParameters{
			MinLength: minLen,
			MaxLength: maxLen,
			DoSample:  false,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal inference request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s", c.baseURL, url.PathEscape(c.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build inference request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", cerr.NewError(cerr.Unavailable, "summarizer unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", cerr.NewError(cerr.Unavailable, "summarizer request failed",
			fmt.Errorf("inference API returned %d for %s: %s", resp.StatusCode, c.model, detail))
	}

	var out []struct {
		SummaryText string `json:"summary_text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode inference response: %w", err)
	}
	if len(out) == 0 {
		return "", fmt.Errorf("inference API returned no candidates for %s", c.model)
	}
	return out[0].SummaryText, nil
}
