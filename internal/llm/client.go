// Package llm is the model-backed digest path. It speaks an OpenAI-style
// chat completions API over HTTP and validates every response against the
// digest JSON contract before handing it to core.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/codelens-hq/pulse/pkg/models"
)

// TransportError wraps network and HTTP-level failures of a model call.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("llm transport: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// SchemaError reports a model response that arrived but does not satisfy
// the digest contract.
type SchemaError struct {
	Reason string
	Err    error
}

func (e *SchemaError) Error() string { return fmt.Sprintf("llm schema: %s: %v", e.Reason, e.Err) }
func (e *SchemaError) Unwrap() error { return e.Err }

// Completer sends one prompt to a model and returns its raw text response.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// httpCompleter talks to an OpenAI-style chat completions endpoint.
type httpCompleter struct {
	endpoint string
	model    string
	apiKey   string
	client   *http.Client
}

// NewHTTPCompleter creates a Completer from the LLM config. The API key is
// read from the environment variable the config names; an empty key sends
// no Authorization header, which local model servers accept.
func NewHTTPCompleter(cfg models.LLMConfig) Completer {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if cfg.TimeoutSeconds <= 0 {
		timeout = 20 * time.Second
	}
	return &httpCompleter{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		apiKey:   os.Getenv(cfg.APIKeyEnv),
		client:   &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *httpCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &TransportError{Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &TransportError{Err: fmt.Errorf("endpoint returned %s", resp.Status)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", &TransportError{Err: fmt.Errorf("decoding chat response: %w", err)}
	}
	if len(parsed.Choices) == 0 {
		return "", &TransportError{Err: fmt.Errorf("chat response has no choices")}
	}
	return parsed.Choices[0].Message.Content, nil
}

// DigestClient turns prompts into validated DigestResults. It satisfies the
// digest model interface core expects.
type DigestClient struct {
	completer Completer
}

// NewDigestClient creates a DigestClient over any Completer.
func NewDigestClient(completer Completer) *DigestClient {
	return &DigestClient{completer: completer}
}

// digestPayload mirrors the eleven contract fields of the model response.
type digestPayload struct {
	RecentFocus            string   `json:"recent_focus"`
	ActivitySummary        string   `json:"activity_summary"`
	KeyLearnings           []string `json:"key_learnings"`
	ProgressHighlights     []string `json:"progress_highlights"`
	CurrentMomentum        string   `json:"current_momentum"`
	LearningTrajectory     string   `json:"learning_trajectory"`
	ProblemSolvingApproach string   `json:"problem_solving_approach"`
	CollaborationPatterns  string   `json:"collaboration_patterns"`
	GrowthAreas            []string `json:"growth_areas"`
	TechnicalDepth         string   `json:"technical_depth"`
	ConfidenceScore        float64  `json:"confidence_score"`
}

// GenerateDigest sends the prompt, validates the response against the
// digest contract, and converts it into a DigestResult. Any failure is a
// tagged TransportError or SchemaError so callers can log the reason before
// falling back.
func (c *DigestClient) GenerateDigest(ctx context.Context, prompt string) (*models.DigestResult, error) {
	raw, err := c.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	cleaned := []byte(stripCodeFence(raw))
	if err := ValidateDigestJSON(cleaned); err != nil {
		return nil, err
	}

	var payload digestPayload
	if err := json.Unmarshal(cleaned, &payload); err != nil {
		return nil, &SchemaError{Reason: "decoding validated response", Err: err}
	}

	return &models.DigestResult{
		RecentFocus:            payload.RecentFocus,
		ActivitySummary:        payload.ActivitySummary,
		KeyLearnings:           payload.KeyLearnings,
		ProgressHighlights:     payload.ProgressHighlights,
		CurrentMomentum:        models.Momentum(payload.CurrentMomentum),
		LearningTrajectory:     payload.LearningTrajectory,
		ProblemSolvingApproach: payload.ProblemSolvingApproach,
		CollaborationPatterns:  payload.CollaborationPatterns,
		GrowthAreas:            payload.GrowthAreas,
		TechnicalDepth:         models.TechnicalDepth(payload.TechnicalDepth),
		ConfidenceScore:        payload.ConfidenceScore,
	}, nil
}

// stripCodeFence removes a surrounding markdown code fence, which chat
// models add even when asked for bare JSON.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
