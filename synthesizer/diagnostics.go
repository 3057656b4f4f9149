// Copyright 2025 The snmptrap-gen Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package synthesizer

import (
	"sort"
	"sync"
)

// Diagnostics accumulates every semantic type seen during a run. It is safe
// for concurrent use.
type Diagnostics struct {
	mu   sync.Mutex
	seen map[string]int
}

func NewDiagnostics() *Diagnostics {
	return &Diagnostics{seen: map[string]int{}}
}

// Observe records one occurrence of typeID.
func (d *Diagnostics) Observe(typeID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen[typeID]++
}

// Seen returns the observed types, sorted.
func (d *Diagnostics) Seen() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	types := make([]string, 0, len(d.seen))
	for t := range d.seen {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Count returns how often typeID was observed.
func (d *Diagnostics) Count(typeID string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seen[typeID]
}

// Unregistered returns the observed types reg has no value for, sorted.
func (d *Diagnostics) Unregistered(reg Registry) []string {
	var missing []string
	for _, t := range d.Seen() {
		if _, ok := reg.Lookup(t); !ok {
			missing = append(missing, t)
		}
	}
	return missing
}
