// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package pipeline runs natural-language queries through a fixed stage
// sequence: parse_intent, query_graph, retrieve, compress, reason, respond.
package pipeline

import (
	"regexp"
	"strings"
)

// Intent is the classified purpose of a query
type Intent string

const (
	IntentLookup     Intent = "lookup"
	IntentDiagnostic Intent = "diagnostic"
	IntentAnalytics  Intent = "analytics"
	IntentSearch     Intent = "search"
)

var (
	schematicIDPattern = regexp.MustCompile(`WRN-\d+`)
	modelIDPattern     = regexp.MustCompile(`WC-\d+`)
)

// lookupPatterns indicate a direct identifier lookup
var lookupPatterns = []string{"wrn-", "wc-", "id:", "get "}

// diagnosticPatterns indicate troubleshooting or status queries
var diagnosticPatterns = []string{
	"status", "problem", "issue", "error", "failing",
	"maintenance", "offline", "not working", "diagnose",
	"depends", "failure", "troubleshoot",
}

// analyticsPatterns indicate aggregation queries
var analyticsPatterns = []string{
	"how many", "count", "total", "statistics", "breakdown",
	"distribution", "list all", "summary",
}

// ClassifyIntent classifies a query by keyword patterns, first match wins:
// identifier lookup, then diagnostic vocabulary, then analytics vocabulary,
// falling back to semantic search.
func ClassifyIntent(query string) Intent {
	q := strings.ToLower(query)

	for _, p := range lookupPatterns {
		if strings.Contains(q, p) {
			return IntentLookup
		}
	}
	for _, p := range diagnosticPatterns {
		if strings.Contains(q, p) {
			return IntentDiagnostic
		}
	}
	for _, p := range analyticsPatterns {
		if strings.Contains(q, p) {
			return IntentAnalytics
		}
	}
	return IntentSearch
}

// statusKeywords map query words to status entity ids
var statusKeywords = []string{"active", "deprecated", "draft", "offline", "maintenance"}

// categoryKeywords map query words to category entity ids
var categoryKeywords = []string{
	"sensors", "power", "control", "mobility", "communication",
	"thermal", "safety", "actuators", "manipulation", "tooling",
	"structural", "mechanical", "environmental", "hydraulics",
}

// componentMentions maps query vocabulary to component entity ids; kept as
// an ordered list so extraction output is deterministic
var componentMentions = []struct {
	keyword string
	entity  string
}{
	{"hydraulic", "component:hydraulic_system"},
	{"sensor", "component:sensor_array"},
	{"motor", "component:motor_system"},
	{"battery", "component:power_system"},
	{"power", "component:power_system"},
	{"thermal", "component:thermal_system"},
	{"lidar", "component:lidar_system"},
	{"camera", "component:vision_system"},
	{"wireless", "component:communication_system"},
	{"safety", "component:safety_system"},
	{"gripper", "component:manipulation_system"},
	{"welding", "component:welding_system"},
	{"navigation", "component:navigation_system"},
}

// ExtractMentions scans a query for entity references: schematic ids, model
// ids, and status/category/component vocabulary. An empty result is a valid
// outcome, not an error.
func ExtractMentions(query string) []string {
	lower := strings.ToLower(query)
	upper := strings.ToUpper(query)

	var mentions []string
	seen := make(map[string]bool)
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			mentions = append(mentions, id)
		}
	}

	for _, id := range schematicIDPattern.FindAllString(upper, -1) {
		add(id)
	}
	for _, model := range modelIDPattern.FindAllString(upper, -1) {
		add("model:" + model)
	}
	for _, status := range statusKeywords {
		if strings.Contains(lower, status) {
			add("status:" + status)
		}
	}
	for _, category := range categoryKeywords {
		if strings.Contains(lower, category) {
			add("category:" + category)
		}
	}
	for _, m := range componentMentions {
		if strings.Contains(lower, m.keyword) {
			add(m.entity)
		}
	}
	return mentions
}
