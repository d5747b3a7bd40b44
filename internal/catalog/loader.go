// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a catalog file. The format is picked by extension: .json is
// decoded as a JSON array, anything else as YAML.
func Load(path string) ([]Schematic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var schematics []Schematic
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, &schematics); err != nil {
			return nil, fmt.Errorf("failed to parse catalog JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &schematics); err != nil {
			return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
		}
	}

	for i := range schematics {
		if schematics[i].ID == "" {
			return nil, fmt.Errorf("catalog entry %d has no id", i)
		}
	}
	return schematics, nil
}
