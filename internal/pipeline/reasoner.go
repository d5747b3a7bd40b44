// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/warnerco/schematica/internal/config"
)

// Prompt carries everything a reasoner gets to see about a query
type Prompt struct {
	Query   string
	Intent  Intent
	Context string
	Matches int
}

// Reasoner produces the reasoning text of a response
type Reasoner interface {
	Reason(ctx context.Context, prompt Prompt) (string, error)
}

// StubReasoner is the deterministic fallback used when no generation
// service is configured or the configured one fails. It never errors.
type StubReasoner struct{}

// Reason returns a templated summary of what was found
func (StubReasoner) Reason(_ context.Context, prompt Prompt) (string, error) {
	if prompt.Matches == 0 {
		return fmt.Sprintf("No schematics found matching your %s query.", prompt.Intent), nil
	}
	switch prompt.Intent {
	case IntentLookup:
		return fmt.Sprintf("Found %d schematic(s) matching your lookup.", prompt.Matches), nil
	case IntentAnalytics:
		return fmt.Sprintf("Analytics summary based on %d matching schematics.", prompt.Matches), nil
	case IntentDiagnostic:
		return fmt.Sprintf("Found %d relevant schematic(s) for diagnostics.", prompt.Matches), nil
	default:
		return fmt.Sprintf("Found %d schematic(s) matching your search.", prompt.Matches), nil
	}
}

// LLMReasoner calls an OpenAI-compatible chat completions endpoint
type LLMReasoner struct {
	url        string
	model      string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

// NewLLMReasoner creates a reasoner over a chat completions API
func NewLLMReasoner(cfg *config.ReasonerConfig) *LLMReasoner {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &LLMReasoner{
		url:        cfg.URL,
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Reason sends the query and compressed context to the generation service
func (r *LLMReasoner) Reason(ctx context.Context, prompt Prompt) (string, error) {
	content := fmt.Sprintf(`You are a robotics engineer assistant. Based on the query and context, provide a helpful response.

Query: %s
Intent: %s

Context:
%s

Provide a concise, technical response that directly addresses the query.`,
		prompt.Query, prompt.Intent, prompt.Context)

	payload, err := json.Marshal(chatRequest{
		Model:    r.model,
		Messages: []chatMessage{{Role: "user", Content: content}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, r.url+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse chat response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return "", fmt.Errorf("generation API error: %s", parsed.Error.Message)
		}
		return "", fmt.Errorf("generation API error: status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("generation API returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
