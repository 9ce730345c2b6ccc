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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alibaba/opensandbox/previewd/pkg/project"
)

func newManager(t *testing.T) (*Manager, *project.Tree) {
	t.Helper()
	tree := project.NewTree()
	return NewManager(tree), tree
}

func TestRename(t *testing.T) {
	manager, tree := newManager(t)
	require.NoError(t, tree.CreateFile("/old.txt", "payload", false))

	result := manager.Apply(EntryRequest{Command: CommandRename, Path: "/old.txt", NewPath: "/new.txt"})
	assert.True(t, result.Success)
	assert.Equal(t, "Renamed /old.txt to /new.txt", result.Message)
	assert.Empty(t, result.Error)

	assert.False(t, tree.Exists("/old.txt"))
	content, err := tree.ReadFile("/new.txt")
	require.NoError(t, err)
	assert.Equal(t, "payload", content)
}

func TestRenameDirectory(t *testing.T) {
	manager, tree := newManager(t)
	require.NoError(t, tree.CreateFile("/src/a.jsx", "a", false))

	result := manager.Apply(EntryRequest{Command: CommandRename, Path: "/src", NewPath: "/lib"})
	assert.True(t, result.Success)
	assert.True(t, tree.Exists("/lib/a.jsx"))
}

func TestRenameMissingNewPath(t *testing.T) {
	manager, tree := newManager(t)
	require.NoError(t, tree.CreateFile("/a.txt", "", false))

	result := manager.Apply(EntryRequest{Command: CommandRename, Path: "/a.txt"})
	assert.False(t, result.Success)
	assert.Equal(t, "new_path is required for rename command", result.Error)
	assert.True(t, tree.Exists("/a.txt"))
}

func TestRenameFailures(t *testing.T) {
	manager, tree := newManager(t)
	require.NoError(t, tree.CreateFile("/a.txt", "a", false))
	require.NoError(t, tree.CreateFile("/b.txt", "b", false))

	// Missing source.
	result := manager.Apply(EntryRequest{Command: CommandRename, Path: "/missing", NewPath: "/x"})
	assert.False(t, result.Success)
	assert.Equal(t, "Failed to rename /missing to /x", result.Error)

	// Destination taken; source is untouched.
	result = manager.Apply(EntryRequest{Command: CommandRename, Path: "/a.txt", NewPath: "/b.txt"})
	assert.False(t, result.Success)
	assert.Equal(t, "Failed to rename /a.txt to /b.txt", result.Error)
	content, _ := tree.ReadFile("/a.txt")
	assert.Equal(t, "a", content)
}

func TestDelete(t *testing.T) {
	manager, tree := newManager(t)
	require.NoError(t, tree.CreateFile("/src/a.jsx", "", false))

	result := manager.Apply(EntryRequest{Command: CommandDelete, Path: "/src"})
	assert.True(t, result.Success)
	assert.Equal(t, "Deleted /src", result.Message)
	assert.False(t, tree.Exists("/src"))
	assert.False(t, tree.Exists("/src/a.jsx"))
}

func TestDeleteFailures(t *testing.T) {
	manager, tree := newManager(t)

	result := manager.Apply(EntryRequest{Command: CommandDelete, Path: "/missing"})
	assert.False(t, result.Success)
	assert.Equal(t, "Failed to delete /missing", result.Error)

	result = manager.Apply(EntryRequest{Command: CommandDelete, Path: "/"})
	assert.False(t, result.Success)
	assert.Equal(t, "Failed to delete /", result.Error)
	assert.True(t, tree.Exists("/"))
}

func TestInvalidManagerCommand(t *testing.T) {
	manager, _ := newManager(t)
	result := manager.Apply(EntryRequest{Command: ManagerCommand("move"), Path: "/a"})
	assert.False(t, result.Success)
	assert.Equal(t, "Invalid command", result.Error)
}
