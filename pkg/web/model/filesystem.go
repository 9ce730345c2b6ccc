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

package model

import (
	"github.com/go-playground/validator/v10"

	"github.com/alibaba/opensandbox/previewd/pkg/project"
	"github.com/alibaba/opensandbox/previewd/pkg/tooling"
)

// EntryRequest represents one entry manager protocol call.
type EntryRequest struct {
	Command string `json:"command" validate:"required"`
	Path    string `json:"path" validate:"required"`
	NewPath string `json:"new_path,omitempty"`
}

func (r *EntryRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// ToToolRequest converts the wire form into the protocol form. Unknown
// commands pass through; the protocol answers them with its own
// structured "Invalid command" result.
func (r *EntryRequest) ToToolRequest() tooling.EntryRequest {
	return tooling.EntryRequest{
		Command: tooling.ManagerCommand(r.Command),
		Path:    r.Path,
		NewPath: r.NewPath,
	}
}

// SearchResponse lists tree paths matching a glob pattern.
type SearchResponse struct {
	Pattern string   `json:"pattern"`
	Paths   []string `json:"paths"`
}

// ListingResponse lists the immediate entries of one directory, in
// insertion order.
type ListingResponse struct {
	Path    string          `json:"path"`
	Entries []project.Entry `json:"entries"`
}
