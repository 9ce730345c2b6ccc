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

func TestSerializeIncludesRootAndAllNodes(t *testing.T) {
	tree := NewTree()
	require.NoError(t, tree.CreateFile("/App.jsx", "app", false))
	require.NoError(t, tree.CreateFile("/src/Button.jsx", "btn", false))
	require.NoError(t, tree.CreateDirectory("/assets"))

	snapshot := tree.Serialize()
	require.Len(t, snapshot, 5)

	root := snapshot["/"]
	require.NotNil(t, root)
	assert.Equal(t, NodeTypeDirectory, root.Type)
	assert.Equal(t, 0, root.Index)

	app := snapshot["/App.jsx"]
	require.NotNil(t, app)
	assert.Equal(t, NodeTypeFile, app.Type)
	assert.Equal(t, "App.jsx", app.Name)
	assert.Equal(t, "app", app.Content)
	assert.Equal(t, len("app"), app.Size)

	assert.Equal(t, NodeTypeDirectory, snapshot["/src"].Type)
	assert.Equal(t, 0, snapshot["/src"].Size)
	assert.Equal(t, "btn", snapshot["/src/Button.jsx"].Content)
	assert.Equal(t, NodeTypeDirectory, snapshot["/assets"].Type)
}

func TestRoundTripPreservesInsertionOrder(t *testing.T) {
	tree := NewTree()
	// Deliberately non-lexicographic creation order.
	require.NoError(t, tree.CreateFile("/zeta.jsx", "z", false))
	require.NoError(t, tree.CreateFile("/alpha.jsx", "a", false))
	require.NoError(t, tree.CreateFile("/src/late.ts", "l", false))
	require.NoError(t, tree.CreateFile("/src/early.ts", "e", false))

	restored, err := Deserialize(tree.Serialize())
	require.NoError(t, err)

	want, err := tree.List("/")
	require.NoError(t, err)
	got, err := restored.List("/")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	want, err = tree.List("/src")
	require.NoError(t, err)
	got, err = restored.List("/src")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	for _, path := range []string{"/zeta.jsx", "/alpha.jsx", "/src/late.ts", "/src/early.ts"} {
		wantContent, err := tree.ReadFile(path)
		require.NoError(t, err)
		gotContent, err := restored.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, wantContent, gotContent, path)
	}
}

func TestDeserializeStartsClean(t *testing.T) {
	tree := NewTree()
	require.NoError(t, tree.CreateFile("/a.txt", "a", false))

	restored, err := Deserialize(tree.Serialize())
	require.NoError(t, err)

	assert.Equal(t, uint64(0), restored.Revision())
	paths, _ := restored.TakeDirty()
	assert.Empty(t, paths)
	select {
	case <-restored.Changes():
		t.Fatal("restored tree must not carry a pending change signal")
	default:
	}
}

func TestDeserializeHandWrittenSnapshot(t *testing.T) {
	// No Index fields; path order is the fallback, so parents still
	// land before children.
	snapshot := map[string]*Descriptor{
		"/":            {Type: NodeTypeDirectory, Path: "/"},
		"/src":         {Type: NodeTypeDirectory, Name: "src", Path: "/src"},
		"/src/App.jsx": {Type: NodeTypeFile, Name: "App.jsx", Path: "/src/App.jsx", Content: "x"},
	}
	tree, err := Deserialize(snapshot)
	require.NoError(t, err)

	content, err := tree.ReadFile("/src/App.jsx")
	require.NoError(t, err)
	assert.Equal(t, "x", content)
}

func TestDeserializeRejectsMalformedSnapshots(t *testing.T) {
	cases := map[string]map[string]*Descriptor{
		"nil descriptor": {
			"/a.txt": nil,
		},
		"key path mismatch": {
			"/a.txt": {Type: NodeTypeFile, Path: "/b.txt"},
		},
		"file at root": {
			"/": {Type: NodeTypeFile, Path: "/"},
		},
		"unknown type": {
			"/a.txt": {Type: NodeType("symlink"), Path: "/a.txt"},
		},
	}
	for name, snapshot := range cases {
		_, err := Deserialize(snapshot)
		assert.Error(t, err, name)
	}
}

func TestDeserializeRestoresMeta(t *testing.T) {
	snapshot := map[string]*Descriptor{
		"/a.txt": {
			Type: NodeTypeFile, Name: "a.txt", Path: "/a.txt",
			Content: "a", Meta: map[string]string{"origin": "upload"},
		},
	}
	tree, err := Deserialize(snapshot)
	require.NoError(t, err)

	d, err := tree.Stat("/a.txt")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"origin": "upload"}, d.Meta)
}
