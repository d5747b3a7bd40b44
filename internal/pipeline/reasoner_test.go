// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warnerco/schematica/internal/config"
)

func TestStubReasoner_Templates(t *testing.T) {
	ctx := context.Background()
	var stub StubReasoner

	tests := []struct {
		prompt Prompt
		want   string
	}{
		{Prompt{Intent: IntentSearch, Matches: 0}, "No schematics found matching your search query."},
		{Prompt{Intent: IntentLookup, Matches: 1}, "Found 1 schematic(s) matching your lookup."},
		{Prompt{Intent: IntentAnalytics, Matches: 7}, "Analytics summary based on 7 matching schematics."},
		{Prompt{Intent: IntentDiagnostic, Matches: 2}, "Found 2 relevant schematic(s) for diagnostics."},
		{Prompt{Intent: IntentSearch, Matches: 3}, "Found 3 schematic(s) matching your search."},
	}
	for _, tt := range tests {
		got, err := stub.Reason(ctx, tt.prompt)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestLLMReasoner_SendsPromptAndParsesChoice(t *testing.T) {
	var gotReq chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "Check the pump seals."}},
			},
		})
	}))
	defer server.Close()

	r := NewLLMReasoner(&config.ReasonerConfig{
		URL: server.URL, Model: "gpt-4o-mini", APIKey: "secret", TimeoutSeconds: 5,
	})

	text, err := r.Reason(context.Background(), Prompt{
		Query:   "why is the pump leaking",
		Intent:  IntentDiagnostic,
		Context: "[WRN-00001] pump details",
	})
	require.NoError(t, err)
	assert.Equal(t, "Check the pump seals.", text)
	assert.Equal(t, "gpt-4o-mini", gotReq.Model)
	require.Len(t, gotReq.Messages, 1)
	assert.Contains(t, gotReq.Messages[0].Content, "why is the pump leaking")
	assert.Contains(t, gotReq.Messages[0].Content, "[WRN-00001] pump details")
	assert.Contains(t, gotReq.Messages[0].Content, "Intent: diagnostic")
}

func TestLLMReasoner_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "rate limited"},
		})
	}))
	defer server.Close()

	r := NewLLMReasoner(&config.ReasonerConfig{URL: server.URL, Model: "gpt-4o-mini"})
	_, err := r.Reason(context.Background(), Prompt{Query: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestLLMReasoner_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer server.Close()

	r := NewLLMReasoner(&config.ReasonerConfig{URL: server.URL})
	_, err := r.Reason(context.Background(), Prompt{Query: "q"})
	assert.Error(t, err)
}
