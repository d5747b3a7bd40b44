// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package catalog

import "sync"

// Directory is an in-memory lookup of schematics by id, shared by the
// query pipeline and the serving layer.
type Directory struct {
	mu   sync.RWMutex
	byID map[string]Schematic
}

// NewDirectory builds a directory over the given schematics
func NewDirectory(schematics []Schematic) *Directory {
	d := &Directory{byID: make(map[string]Schematic, len(schematics))}
	for i := range schematics {
		d.byID[schematics[i].ID] = schematics[i]
	}
	return d
}

// Describe returns the schematic for an id
func (d *Directory) Describe(id string) (Schematic, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.byID[id]
	return s, ok
}

// Put adds or replaces a schematic
func (d *Directory) Put(s Schematic) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.byID[s.ID] = s
}

// All returns every schematic in the directory
func (d *Directory) All() []Schematic {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Schematic, 0, len(d.byID))
	for _, s := range d.byID {
		out = append(out, s)
	}
	return out
}

// Len reports the number of schematics
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.byID)
}
