// Copyright (c) 2026, Verdant Labs.  All rights reserved.
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

package plantnet

// Taxon identifies a taxonomic rank by scientific name.
type Taxon struct {
	ScientificNameWithoutAuthor string `json:"scientificNameWithoutAuthor"`
	ScientificNameAuthorship    string `json:"scientificNameAuthorship,omitempty"`
}

// Species describes one candidate species.
type Species struct {
	ScientificNameWithoutAuthor string   `json:"scientificNameWithoutAuthor"`
	ScientificNameAuthorship    string   `json:"scientificNameAuthorship,omitempty"`
	Genus                       Taxon    `json:"genus"`
	Family                      Taxon    `json:"family"`
	CommonNames                 []string `json:"commonNames,omitempty"`
}

// Match is one species candidate with its confidence score.
type Match struct {
	Species Species `json:"species"`
	Score   float64 `json:"score"`
}

// Result is the normalized identification response. It is immutable once
// created; the cache owns stored instances.
type Result struct {
	// Species and Score mirror the best match for callers that only want
	// the top candidate.
	Species Species `json:"species"`
	Score   float64 `json:"score"`

	// Candidates is the full ranked candidate list, best first.
	Candidates []Match `json:"candidates,omitempty"`
}

// providerResponse is the provider's wire shape.
type providerResponse struct {
	Results   []Match `json:"results"`
	BestMatch string  `json:"bestMatch,omitempty"`
}
