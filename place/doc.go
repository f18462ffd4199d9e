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

// Package place pulls location mentions out of user queries and fixes
// their typos.
//
// The Extractor asks a chat model for an {area, point} pair. The Corrector
// asks for typo fixes, accepts only fixes that the autocomplete service
// recognizes, and records every accepted fix in the alias store so the
// resolver maps the misspelling straight to its canonical form next time.
// Model and autocomplete failures never surface as errors; they leave the
// mention unchanged.
package place
