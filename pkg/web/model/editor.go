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

	"github.com/alibaba/opensandbox/previewd/pkg/tooling"
)

// EditRequest represents one editor protocol call.
type EditRequest struct {
	Command    string `json:"command" validate:"required,oneof=view create str_replace insert undo_edit"`
	Path       string `json:"path" validate:"required"`
	ViewRange  []int  `json:"view_range,omitempty" validate:"omitempty,len=2"`
	FileText   string `json:"file_text,omitempty"`
	OldStr     string `json:"old_str,omitempty"`
	NewStr     string `json:"new_str,omitempty"`
	InsertLine int    `json:"insert_line,omitempty"`
}

func (r *EditRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// ToToolRequest converts the wire form into the protocol form.
func (r *EditRequest) ToToolRequest() tooling.EditRequest {
	return tooling.EditRequest{
		Command:    tooling.EditorCommand(r.Command),
		Path:       r.Path,
		ViewRange:  r.ViewRange,
		FileText:   r.FileText,
		OldStr:     r.OldStr,
		NewStr:     r.NewStr,
		InsertLine: r.InsertLine,
	}
}

// EditResponse carries the protocol's plain string result. The string
// is fed back to the automated caller verbatim, success and failure
// alike.
type EditResponse struct {
	Result string `json:"result"`
}
