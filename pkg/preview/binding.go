// Copyright 2025 Alibaba Group Holding Ltd.
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

// Package preview assembles what the rendering surface consumes: the
// current import map, the entry module URL and per-file compile errors.
// The surface itself is out of scope; it only mounts what it is given.
package preview

import (
	"time"

	"github.com/alibaba/opensandbox/previewd/pkg/transform"
)

// Binding is the preview contract handed to the rendering surface.
type Binding struct {
	Ready       bool              `json:"ready"`
	Revision    uint64            `json:"revision"`
	Entry       string            `json:"entry"`
	EntryURL    string            `json:"entry_url"`
	ImportMap   map[string]string `json:"import_map"`
	Errors      map[string]string `json:"errors,omitempty"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// FromPublication converts a pipeline publication into a binding.
// A nil publication yields a not-ready binding (no build has finished).
func FromPublication(pub *transform.Publication) Binding {
	if pub == nil {
		return Binding{Ready: false}
	}
	return Binding{
		Ready:       true,
		Revision:    pub.Revision,
		Entry:       pub.Entry,
		EntryURL:    pub.EntryURL,
		ImportMap:   pub.ImportMap,
		Errors:      pub.Errors,
		GeneratedAt: pub.GeneratedAt,
	}
}
