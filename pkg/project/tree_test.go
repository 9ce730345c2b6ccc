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

package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFileThenReadFile(t *testing.T) {
	tree := NewTree()
	require.NoError(t, tree.CreateFile("/App.jsx", "x", false))

	content, err := tree.ReadFile("/App.jsx")
	require.NoError(t, err)
	assert.Equal(t, "x", content)

	// Relative and absolute spellings address the same node.
	content, err = tree.ReadFile("App.jsx")
	require.NoError(t, err)
	assert.Equal(t, "x", content)
}

func TestCreateFileAutoCreatesAncestors(t *testing.T) {
	tree := NewTree()
	require.NoError(t, tree.CreateFile("/src/components/Button.jsx", "b", false))

	assert.True(t, tree.Exists("/src"))
	assert.True(t, tree.Exists("/src/components"))

	entries, err := tree.List("/src")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, Entry{Name: "components", Type: NodeTypeDirectory}, entries[0])
}

func TestCreateFileCollision(t *testing.T) {
	tree := NewTree()
	require.NoError(t, tree.CreateFile("/a.txt", "1", false))

	err := tree.CreateFile("/a.txt", "2", false)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	content, _ := tree.ReadFile("/a.txt")
	assert.Equal(t, "1", content)

	// Explicit overwrite replaces content in place.
	require.NoError(t, tree.CreateFile("/a.txt", "2", true))
	content, _ = tree.ReadFile("/a.txt")
	assert.Equal(t, "2", content)
}

func TestCreateFileOverDirectoryFails(t *testing.T) {
	tree := NewTree()
	require.NoError(t, tree.CreateDirectory("/src"))

	assert.ErrorIs(t, tree.CreateFile("/src", "x", false), ErrIsDirectory)
	assert.ErrorIs(t, tree.CreateFile("/src", "x", true), ErrIsDirectory)
}

func TestCreateFileUnderFileFails(t *testing.T) {
	tree := NewTree()
	require.NoError(t, tree.CreateFile("/a.txt", "", false))

	assert.ErrorIs(t, tree.CreateFile("/a.txt/b.txt", "", false), ErrNotDirectory)
}

func TestCreateDirectoryCollision(t *testing.T) {
	tree := NewTree()
	require.NoError(t, tree.CreateDirectory("/src"))
	assert.ErrorIs(t, tree.CreateDirectory("/src"), ErrAlreadyExists)
	assert.ErrorIs(t, tree.CreateDirectory("/"), ErrAlreadyExists)
}

func TestWriteFile(t *testing.T) {
	tree := NewTree()
	require.NoError(t, tree.CreateFile("/a.txt", "old", false))
	require.NoError(t, tree.WriteFile("/a.txt", "new"))

	content, err := tree.ReadFile("/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "new", content)

	// Idempotent on identical re-write.
	require.NoError(t, tree.WriteFile("/a.txt", "new"))
	content, _ = tree.ReadFile("/a.txt")
	assert.Equal(t, "new", content)

	assert.ErrorIs(t, tree.WriteFile("/missing.txt", "x"), ErrNotFound)

	require.NoError(t, tree.CreateDirectory("/dir"))
	assert.ErrorIs(t, tree.WriteFile("/dir", "x"), ErrIsDirectory)
}

func TestReadFileErrors(t *testing.T) {
	tree := NewTree()
	_, err := tree.ReadFile("/missing.txt")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, tree.CreateDirectory("/dir"))
	_, err = tree.ReadFile("/dir")
	assert.ErrorIs(t, err, ErrIsDirectory)
}

func TestDeleteRecursive(t *testing.T) {
	tree := NewTree()
	require.NoError(t, tree.CreateFile("/src/a.jsx", "a", false))
	require.NoError(t, tree.CreateFile("/src/deep/b.jsx", "b", false))
	require.NoError(t, tree.CreateFile("/keep.txt", "k", false))

	require.NoError(t, tree.Delete("/src"))

	assert.False(t, tree.Exists("/src"))
	assert.False(t, tree.Exists("/src/a.jsx"))
	assert.False(t, tree.Exists("/src/deep"))
	assert.False(t, tree.Exists("/src/deep/b.jsx"))
	assert.True(t, tree.Exists("/keep.txt"))

	assert.ErrorIs(t, tree.Delete("/src"), ErrNotFound)
	assert.ErrorIs(t, tree.Delete("/"), ErrRootForbidden)
}

func TestMoveFile(t *testing.T) {
	tree := NewTree()
	require.NoError(t, tree.CreateFile("/a.txt", "payload", false))
	require.NoError(t, tree.Move("/a.txt", "/sub/b.txt"))

	assert.False(t, tree.Exists("/a.txt"))
	assert.True(t, tree.Exists("/sub/b.txt"))

	content, err := tree.ReadFile("/sub/b.txt")
	require.NoError(t, err)
	assert.Equal(t, "payload", content)
}

func TestMoveDirectoryPreservesSubtree(t *testing.T) {
	tree := NewTree()
	require.NoError(t, tree.CreateFile("/src/a.jsx", "a", false))
	require.NoError(t, tree.CreateFile("/src/deep/b.jsx", "b", false))

	require.NoError(t, tree.Move("/src", "/lib"))

	assert.False(t, tree.Exists("/src"))
	assert.False(t, tree.Exists("/src/deep/b.jsx"))
	for path, want := range map[string]string{"/lib/a.jsx": "a", "/lib/deep/b.jsx": "b"} {
		content, err := tree.ReadFile(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, content, path)
	}
}

func TestMoveErrors(t *testing.T) {
	tree := NewTree()
	require.NoError(t, tree.CreateFile("/a.txt", "a", false))
	require.NoError(t, tree.CreateFile("/b.txt", "b", false))
	require.NoError(t, tree.CreateDirectory("/dir"))

	assert.ErrorIs(t, tree.Move("/missing", "/x"), ErrNotFound)
	assert.ErrorIs(t, tree.Move("/a.txt", "/b.txt"), ErrAlreadyExists)
	assert.ErrorIs(t, tree.Move("/", "/x"), ErrRootForbidden)
	assert.ErrorIs(t, tree.Move("/dir", "/dir/child"), ErrInvalidPath)
	assert.ErrorIs(t, tree.Move("/a.txt", "/a.txt"), ErrInvalidPath)
}

func TestListInsertionOrder(t *testing.T) {
	tree := NewTree()
	require.NoError(t, tree.CreateFile("/z.txt", "", false))
	require.NoError(t, tree.CreateFile("/a.txt", "", false))
	require.NoError(t, tree.CreateDirectory("/m"))

	entries, err := tree.List("/")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "z.txt", entries[0].Name)
	assert.Equal(t, "a.txt", entries[1].Name)
	assert.Equal(t, "m", entries[2].Name)

	_, err = tree.List("/z.txt")
	assert.ErrorIs(t, err, ErrNotDirectory)
	_, err = tree.List("/missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGlob(t *testing.T) {
	tree := NewTree()
	require.NoError(t, tree.CreateFile("/App.jsx", "", false))
	require.NoError(t, tree.CreateFile("/src/Button.jsx", "", false))
	require.NoError(t, tree.CreateFile("/src/api.ts", "", false))

	paths, err := tree.Glob("*.jsx")
	require.NoError(t, err)
	assert.Equal(t, []string{"/App.jsx", "/src/Button.jsx"}, paths)

	paths, err = tree.Glob("/src/*")
	require.NoError(t, err)
	assert.Equal(t, []string{"/src/Button.jsx", "/src/api.ts"}, paths)

	_, err = tree.Glob("[")
	assert.Error(t, err)
}

func TestStat(t *testing.T) {
	tree := NewTree()
	require.NoError(t, tree.CreateFile("/a.txt", "hello", false))

	d, err := tree.Stat("a.txt")
	require.NoError(t, err)
	assert.Equal(t, NodeTypeFile, d.Type)
	assert.Equal(t, "/a.txt", d.Path)
	assert.Equal(t, "hello", d.Content)
	assert.Equal(t, len("hello"), d.Size)

	_, err = tree.Stat("/missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRevisionAndDirtyTracking(t *testing.T) {
	tree := NewTree()
	assert.Equal(t, uint64(0), tree.Revision())

	require.NoError(t, tree.CreateFile("/a.txt", "1", false))
	require.NoError(t, tree.WriteFile("/a.txt", "2"))

	select {
	case <-tree.Changes():
	default:
		t.Fatal("expected a pending change signal")
	}

	paths, revision := tree.TakeDirty()
	assert.Equal(t, []string{"/a.txt"}, paths)
	assert.Equal(t, uint64(2), revision)

	// Drained; nothing new until the next mutation.
	paths, _ = tree.TakeDirty()
	assert.Empty(t, paths)

	require.NoError(t, tree.Delete("/a.txt"))
	paths, revision = tree.TakeDirty()
	assert.Equal(t, []string{"/a.txt"}, paths)
	assert.Equal(t, uint64(3), revision)
}

func TestMoveMarksWholeSubtreeDirty(t *testing.T) {
	tree := NewTree()
	require.NoError(t, tree.CreateFile("/src/a.jsx", "a", false))
	tree.TakeDirty()

	require.NoError(t, tree.Move("/src", "/lib"))
	paths, _ := tree.TakeDirty()
	assert.Equal(t, []string{"/lib", "/lib/a.jsx", "/src", "/src/a.jsx"}, paths)
}

func TestFilesSnapshot(t *testing.T) {
	tree := NewTree()
	require.NoError(t, tree.CreateFile("/App.jsx", "app", false))
	require.NoError(t, tree.CreateFile("/src/a.ts", "a", false))
	require.NoError(t, tree.CreateDirectory("/empty"))

	files := tree.Files()
	assert.Equal(t, map[string]string{"/App.jsx": "app", "/src/a.ts": "a"}, files)
}
