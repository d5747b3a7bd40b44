// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package catalog loads the schematic catalog and feeds it into the memory
// backend and the knowledge graph.
package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Schematic is one catalog entry: a versioned component document for a
// robot model.
type Schematic struct {
	ID             string            `yaml:"id" json:"id"`
	Model          string            `yaml:"model" json:"model"`
	Name           string            `yaml:"name" json:"name"`
	Component      string            `yaml:"component" json:"component"`
	Version        string            `yaml:"version" json:"version"`
	Summary        string            `yaml:"summary" json:"summary"`
	URL            string            `yaml:"url,omitempty" json:"url,omitempty"`
	Category       string            `yaml:"category" json:"category"`
	Status         string            `yaml:"status,omitempty" json:"status,omitempty"`
	Tags           []string          `yaml:"tags,omitempty" json:"tags,omitempty"`
	Specifications map[string]string `yaml:"specifications,omitempty" json:"specifications,omitempty"`
	LastVerified   string            `yaml:"last_verified,omitempty" json:"last_verified,omitempty"`
}

// EmbedText renders the schematic as the text that gets indexed and
// embedded. Field order is fixed so the output is stable across runs.
func (s *Schematic) EmbedText() string {
	parts := []string{
		fmt.Sprintf("Model: %s (%s)", s.Model, s.Name),
		fmt.Sprintf("Component: %s", s.Component),
		fmt.Sprintf("Version: %s", s.Version),
		fmt.Sprintf("Category: %s", s.Category),
		fmt.Sprintf("Summary: %s", s.Summary),
	}
	if len(s.Tags) > 0 {
		parts = append(parts, fmt.Sprintf("Tags: %s", strings.Join(s.Tags, ", ")))
	}
	if len(s.Specifications) > 0 {
		keys := make([]string, 0, len(s.Specifications))
		for k := range s.Specifications {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		specs := make([]string, 0, len(keys))
		for _, k := range keys {
			specs = append(specs, fmt.Sprintf("%s: %s", k, s.Specifications[k]))
		}
		parts = append(parts, fmt.Sprintf("Specifications: %s", strings.Join(specs, ", ")))
	}
	return strings.Join(parts, "\n")
}

// ContentHash returns a hex digest of the indexable content, used to detect
// stale index entries.
func (s *Schematic) ContentHash() string {
	sum := sha256.Sum256([]byte(s.EmbedText()))
	return hex.EncodeToString(sum[:])
}

// normalizedStatus defaults missing status to active
func (s *Schematic) normalizedStatus() string {
	if s.Status == "" {
		return "active"
	}
	return s.Status
}
