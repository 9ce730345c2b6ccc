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

// Package tooling implements the two command protocols an automated
// agent drives against the project tree: the editor protocol (string
// results, view/create/str_replace/insert/undo_edit) and the entry
// manager protocol (structured results, rename/delete).
//
// Both protocols capture every expected failure as a result value and
// never return a Go error for them; the agent loop must be able to
// continue after any single failed operation.
package tooling

import (
	"fmt"
	"strings"

	"github.com/alibaba/opensandbox/previewd/pkg/project"
)

// EditorCommand enumerates the editor protocol commands.
type EditorCommand string

const (
	CommandView       EditorCommand = "view"
	CommandCreate     EditorCommand = "create"
	CommandStrReplace EditorCommand = "str_replace"
	CommandInsert     EditorCommand = "insert"
	CommandUndoEdit   EditorCommand = "undo_edit"
)

// EditRequest is one editor protocol call. Path is used verbatim in
// result messages; the tree normalizes it internally for lookups, so
// "test.txt" and "/test.txt" address the same node.
type EditRequest struct {
	Command    EditorCommand `json:"command"`
	Path       string        `json:"path"`
	ViewRange  []int         `json:"view_range,omitempty"`
	FileText   string        `json:"file_text,omitempty"`
	OldStr     string        `json:"old_str,omitempty"`
	NewStr     string        `json:"new_str,omitempty"`
	InsertLine int           `json:"insert_line,omitempty"`
}

// Editor applies editor protocol commands to a project tree.
type Editor struct {
	tree *project.Tree
}

// NewEditor creates an editor over the given tree.
func NewEditor(tree *project.Tree) *Editor {
	return &Editor{tree: tree}
}

const undoUnsupportedMessage = "Error: undo_edit is not supported. Edit the file again to change its content."

// Apply dispatches one editor command and returns a human-readable
// result string, "Error: ..." for every expected failure mode.
func (e *Editor) Apply(req EditRequest) string {
	switch req.Command {
	case CommandView:
		return e.view(req)
	case CommandCreate:
		return e.create(req)
	case CommandStrReplace:
		return e.strReplace(req)
	case CommandInsert:
		return e.insert(req)
	case CommandUndoEdit:
		return undoUnsupportedMessage
	default:
		return fmt.Sprintf("Error: Unknown command: %s", req.Command)
	}
}

func (e *Editor) view(req EditRequest) string {
	if !e.tree.Exists(req.Path) {
		// Not prefixed with "Error:" by protocol convention.
		return fmt.Sprintf("File not found: %s", req.Path)
	}

	if entries, err := e.tree.List(req.Path); err == nil {
		if len(entries) == 0 {
			return "(empty directory)"
		}
		lines := make([]string, 0, len(entries))
		for _, entry := range entries {
			tag := "[FILE]"
			if entry.Type == project.NodeTypeDirectory {
				tag = "[DIR]"
			}
			lines = append(lines, fmt.Sprintf("%s %s", tag, entry.Name))
		}
		return strings.Join(lines, "\n")
	}

	content, err := e.tree.ReadFile(req.Path)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}

	lines := strings.Split(content, "\n")
	start, end := 1, len(lines)
	if len(req.ViewRange) == 2 {
		start, end = req.ViewRange[0], req.ViewRange[1]
		if end == -1 {
			end = len(lines)
		}
		if start < 1 || end > len(lines) || start > end {
			return fmt.Sprintf("Error: Invalid view range: [%d, %d]. File has %d lines.", req.ViewRange[0], req.ViewRange[1], len(lines))
		}
	}

	numbered := make([]string, 0, end-start+1)
	for i := start; i <= end; i++ {
		numbered = append(numbered, fmt.Sprintf("%d\t%s", i, lines[i-1]))
	}
	return strings.Join(numbered, "\n")
}

func (e *Editor) create(req EditRequest) string {
	if e.tree.Exists(req.Path) {
		return fmt.Sprintf("Error: File already exists: %s", req.Path)
	}
	if err := e.tree.CreateFile(req.Path, req.FileText, false); err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return fmt.Sprintf("File created: %s", req.Path)
}

func (e *Editor) strReplace(req EditRequest) string {
	content, err := e.readEditable(req.Path)
	if err != nil {
		return err.Error()
	}

	// An empty search string would match everywhere; it is defined to
	// never match so a forgotten old_str cannot rewrite the whole file.
	count := 0
	if req.OldStr != "" {
		count = strings.Count(content, req.OldStr)
	}
	if count == 0 {
		return fmt.Sprintf("Error: String not found in file: %q", req.OldStr)
	}

	updated := strings.ReplaceAll(content, req.OldStr, req.NewStr)
	if err := e.tree.WriteFile(req.Path, updated); err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return fmt.Sprintf("Replaced %d occurrence(s) of the string in %s", count, req.Path)
}

func (e *Editor) insert(req EditRequest) string {
	content, err := e.readEditable(req.Path)
	if err != nil {
		return err.Error()
	}

	lines := strings.Split(content, "\n")
	n := req.InsertLine
	if n < 0 || n > len(lines) {
		return fmt.Sprintf("Error: Invalid line number: %d. File has %d lines.", n, len(lines))
	}

	updated := make([]string, 0, len(lines)+1)
	updated = append(updated, lines[:n]...)
	updated = append(updated, req.NewStr)
	updated = append(updated, lines[n:]...)
	if err := e.tree.WriteFile(req.Path, strings.Join(updated, "\n")); err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return fmt.Sprintf("Inserted line at position %d in %s", n, req.Path)
}

// readEditable loads file content for a content edit, mapping the tree
// errors onto the protocol's fixed message forms.
func (e *Editor) readEditable(path string) (string, error) {
	content, err := e.tree.ReadFile(path)
	switch {
	case err == nil:
		return content, nil
	case isErr(err, project.ErrIsDirectory):
		return "", fmt.Errorf("Error: Cannot edit a directory")
	default:
		return "", fmt.Errorf("Error: File not found")
	}
}
