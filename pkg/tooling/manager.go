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

package tooling

import (
	"errors"
	"fmt"

	"github.com/alibaba/opensandbox/previewd/pkg/project"
)

// ManagerCommand enumerates the entry manager protocol commands.
type ManagerCommand string

const (
	CommandRename ManagerCommand = "rename"
	CommandDelete ManagerCommand = "delete"
)

// EntryRequest is one entry manager call. NewPath is required for
// rename and ignored by delete.
type EntryRequest struct {
	Command ManagerCommand `json:"command"`
	Path    string         `json:"path"`
	NewPath string         `json:"new_path,omitempty"`
}

// EntryResult is the structured outcome of an entry manager call.
// Unlike editor results these are never free-form text: the caller
// branches on Success and the fixed error strings.
type EntryResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Manager applies whole-entry operations (rename/delete) to a tree.
type Manager struct {
	tree *project.Tree
}

// NewManager creates a manager over the given tree.
func NewManager(tree *project.Tree) *Manager {
	return &Manager{tree: tree}
}

// Apply dispatches one entry manager command.
func (m *Manager) Apply(req EntryRequest) EntryResult {
	switch req.Command {
	case CommandRename:
		return m.rename(req)
	case CommandDelete:
		return m.delete(req)
	default:
		return EntryResult{Success: false, Error: "Invalid command"}
	}
}

func (m *Manager) rename(req EntryRequest) EntryResult {
	if req.NewPath == "" {
		return EntryResult{Success: false, Error: "new_path is required for rename command"}
	}
	if err := m.tree.Move(req.Path, req.NewPath); err != nil {
		return EntryResult{
			Success: false,
			Error:   fmt.Sprintf("Failed to rename %s to %s", req.Path, req.NewPath),
		}
	}
	return EntryResult{
		Success: true,
		Message: fmt.Sprintf("Renamed %s to %s", req.Path, req.NewPath),
	}
}

func (m *Manager) delete(req EntryRequest) EntryResult {
	if err := m.tree.Delete(req.Path); err != nil {
		return EntryResult{
			Success: false,
			Error:   fmt.Sprintf("Failed to delete %s", req.Path),
		}
	}
	return EntryResult{
		Success: true,
		Message: fmt.Sprintf("Deleted %s", req.Path),
	}
}

func isErr(err, target error) bool {
	return errors.Is(err, target)
}
