// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package memstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RemoteConfig holds connection settings for the managed search service
type RemoteConfig struct {
	Endpoint       string
	APIKey         string
	Index          string
	TimeoutSeconds int
}

// RemoteBackend delegates indexing and hybrid (lexical + vector) search to a
// managed search service. Each request gets a deadline; a timed-out or
// server-failed request is retried once before surfacing
// ErrBackendUnavailable. Concurrency is the service's concern.
type RemoteBackend struct {
	endpoint   string
	apiKey     string
	index      string
	timeout    time.Duration
	httpClient *http.Client
	hits       hitRing
}

// remoteDocument is the indexing payload
type remoteDocument struct {
	ID       string            `json:"id"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// remoteSearchRequest is the search payload; the service combines lexical
// and vector ranking server-side
type remoteSearchRequest struct {
	Query   string            `json:"query"`
	Filters map[string]string `json:"filters,omitempty"`
	Top     int               `json:"top"`
}

// remoteSearchResponse is the search response body
type remoteSearchResponse struct {
	Results []struct {
		ID    string  `json:"id"`
		Score float64 `json:"score"`
	} `json:"results"`
}

// remoteStatsResponse is the index stats response body
type remoteStatsResponse struct {
	DocumentCount int `json:"document_count"`
}

// NewRemoteBackend creates a remote backend client
func NewRemoteBackend(cfg RemoteConfig) *RemoteBackend {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &RemoteBackend{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		index:      cfg.Index,
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

// Index upserts a document into the remote index
func (b *RemoteBackend) Index(ctx context.Context, record MemoryRecord) error {
	doc := remoteDocument{
		ID:       record.ID,
		Content:  record.Text,
		Metadata: record.Metadata,
	}

	url := fmt.Sprintf("%s/indexes/%s/docs", b.endpoint, b.index)
	_, err := b.doWithRetry(ctx, http.MethodPut, url, doc)
	if err != nil {
		return fmt.Errorf("failed to index record %s: %w", record.ID, err)
	}
	return nil
}

// Search runs a hybrid search against the remote index
func (b *RemoteBackend) Search(ctx context.Context, query string, filters map[string]string, topK int) ([]SearchResult, error) {
	started := time.Now()
	if topK <= 0 {
		topK = 10
	}

	url := fmt.Sprintf("%s/indexes/%s/search", b.endpoint, b.index)
	body, err := b.doWithRetry(ctx, http.MethodPost, url, remoteSearchRequest{
		Query:   query,
		Filters: filters,
		Top:     topK,
	})
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	var resp remoteSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	results := make([]SearchResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, SearchResult{
			RecordID: r.ID,
			Score:    r.Score,
			Source:   SourceRemote,
		})
	}

	b.hits.record(SourceRemote, query, results, started)
	return results, nil
}

// Stats queries the remote index document count
func (b *RemoteBackend) Stats(ctx context.Context) (Stats, error) {
	url := fmt.Sprintf("%s/indexes/%s/stats", b.endpoint, b.index)
	body, err := b.doWithRetry(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("stats failed: %w", err)
	}

	var resp remoteStatsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Stats{}, fmt.Errorf("failed to parse stats response: %w", err)
	}

	return Stats{
		IndexedCount: resp.DocumentCount,
		BackendName:  SourceRemote,
	}, nil
}

// RecentHits returns recent retrieval telemetry, newest first
func (b *RemoteBackend) RecentHits(limit int) []RetrievalHit {
	return b.hits.recent(limit)
}

// doWithRetry issues the request with a per-attempt deadline, retrying once
// on timeout or 5xx. Repeated failure surfaces ErrBackendUnavailable so the
// caller can distinguish an outage from an empty result.
func (b *RemoteBackend) doWithRetry(ctx context.Context, method, url string, payload interface{}) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < 2; attempt++ {
		body, retryable, err := b.do(ctx, method, url, payload)
		if err == nil {
			return body, nil
		}
		lastErr = err

		// Caller cancellation is not the service's fault; do not retry
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !retryable {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, lastErr)
}

// do issues one request with the configured timeout. The second return
// value reports whether a failure is worth retrying (timeouts and 5xx).
func (b *RemoteBackend) do(ctx context.Context, method, url string, payload interface{}) ([]byte, bool, error) {
	reqCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, false, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(reqCtx, method, url, reqBody)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if b.apiKey != "" {
		req.Header.Set("api-key", b.apiKey)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 500 {
		return nil, true, fmt.Errorf("service error: status %d", resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return nil, false, fmt.Errorf("request rejected: status %d: %s", resp.StatusCode, string(body))
	}

	return body, true, nil
}
