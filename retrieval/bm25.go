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

import "math"

// Okapi BM25 parameters.
const (
	bm25K1      = 1.5
	bm25B       = 0.75
	bm25Epsilon = 0.25
)

// bm25 scores a fixed corpus of tokenized documents.
// Negative idf values are floored at epsilon times the average idf.
type bm25 struct {
	docLens []int
	avgLen  float64
	freqs   []map[string]int
	idf     map[string]float64
}

func newBM25(docs [][]string) *bm25 {
	m := &bm25{
		docLens: make([]int, len(docs)),
		freqs:   make([]map[string]int, len(docs)),
		idf:     map[string]float64{},
	}
	if len(docs) == 0 {
		return m
	}

	docFreq := map[string]int{}
	total := 0
	for i, doc := range docs {
		m.docLens[i] = len(doc)
		total += len(doc)
		tf := make(map[string]int, len(doc))
		for _, tok := range doc {
			tf[tok]++
		}
		m.freqs[i] = tf
		for tok := range tf {
			docFreq[tok]++
		}
	}
	m.avgLen = float64(total) / float64(len(docs))

	n := float64(len(docs))
	var idfSum float64
	var negative []string
	for tok, df := range docFreq {
		idf := math.Log(n-float64(df)+0.5) - math.Log(float64(df)+0.5)
		m.idf[tok] = idf
		idfSum += idf
		if idf < 0 {
			negative = append(negative, tok)
		}
	}
	floor := bm25Epsilon * idfSum / float64(len(docFreq))
	for _, tok := range negative {
		m.idf[tok] = floor
	}
	return m
}

// scores returns one score per document for query.
func (m *bm25) scores(query []string) []float64 {
	out := make([]float64, len(m.freqs))
	if m.avgLen == 0 {
		return out
	}
	for _, tok := range query {
		idf, ok := m.idf[tok]
		if !ok {
			continue
		}
		for i, tf := range m.freqs {
			f := float64(tf[tok])
			if f == 0 {
				continue
			}
			norm := 1 - bm25B + bm25B*float64(m.docLens[i])/m.avgLen
			out[i] += idf * f * (bm25K1 + 1) / (f + bm25K1*norm)
		}
	}
	return out
}
