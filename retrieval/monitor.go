// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package retrieval

import (
	"sync"
	"time"
)

// Monitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate steps and results.
type Monitor interface {
	Start(req Request)
	AfterPrefilter(candidates int)
	AfterDenseScoring(candidates int)
	AfterLexicalScoring(candidates int)
	AfterKeywordFilter(groups []SynonymGroup, kept int)
	Finish(result *Result)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ Request)                            {}
func (n *noopMonitor) AfterPrefilter(_ int)                       {}
func (n *noopMonitor) AfterDenseScoring(_ int)                    {}
func (n *noopMonitor) AfterLexicalScoring(_ int)                  {}
func (n *noopMonitor) AfterKeywordFilter(_ []SynonymGroup, _ int) {}
func (n *noopMonitor) Finish(_ *Result)                           {}

// TimingMonitor records how long each retrieval stage took, in milliseconds.
type TimingMonitor struct {
	mu     sync.Mutex
	now    func() time.Time
	last   time.Time
	start  time.Time
	stages map[string]float64
}

var _ Monitor = (*TimingMonitor)(nil)

// NewTimingMonitor creates an empty timing monitor.
func NewTimingMonitor() *TimingMonitor {
	return &TimingMonitor{now: time.Now, stages: map[string]float64{}}
}

func (m *TimingMonitor) mark(stage string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.now()
	m.stages[stage] = float64(t.Sub(m.last).Microseconds()) / 1000
	m.last = t
}

// Start resets the clock.
func (m *TimingMonitor) Start(_ Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.start = m.now()
	m.last = m.start
	clear(m.stages)
}

// AfterPrefilter records the pre-filter time.
func (m *TimingMonitor) AfterPrefilter(_ int) { m.mark("prefilter") }

// AfterDenseScoring records the embedding and cosine time.
func (m *TimingMonitor) AfterDenseScoring(_ int) { m.mark("dense") }

// AfterLexicalScoring records the BM25 time.
func (m *TimingMonitor) AfterLexicalScoring(_ int) { m.mark("bm25") }

// AfterKeywordFilter records the keyword filter time.
func (m *TimingMonitor) AfterKeywordFilter(_ []SynonymGroup, _ int) { m.mark("keyword_filter") }

// Finish records the total time.
func (m *TimingMonitor) Finish(_ *Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stages["total"] = float64(m.now().Sub(m.start).Microseconds()) / 1000
}

// Timings returns a copy of the recorded stage durations.
func (m *TimingMonitor) Timings() map[string]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]float64, len(m.stages))
	for k, v := range m.stages {
		out[k] = v
	}
	return out
}
