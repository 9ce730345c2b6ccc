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

// NodeType tags the two node variants of the tree.
type NodeType string

const (
	NodeTypeFile      NodeType = "file"
	NodeTypeDirectory NodeType = "directory"
)

// RootPath is the fixed path of the tree root directory.
const RootPath = "/"

// node is a single entry in the tree. Directories own their children
// through the children map; the parent pointer is lookup-only and never
// an ownership edge.
type node struct {
	name     string
	nodeType NodeType
	parent   *node

	// file fields
	content string
	meta    map[string]string

	// directory fields; order tracks child insertion
	children map[string]*node
	order    []string
}

func newFileNode(name, content string) *node {
	return &node{
		name:     name,
		nodeType: NodeTypeFile,
		content:  content,
	}
}

func newDirNode(name string) *node {
	return &node{
		name:     name,
		nodeType: NodeTypeDirectory,
		children: make(map[string]*node),
	}
}

func (n *node) isDir() bool {
	return n.nodeType == NodeTypeDirectory
}

func (n *node) isRoot() bool {
	return n.parent == nil
}

// path rebuilds the absolute path by walking parent pointers.
func (n *node) path() string {
	if n.isRoot() {
		return RootPath
	}
	return Join(n.parent.path(), n.name)
}

func (n *node) child(name string) (*node, bool) {
	if !n.isDir() {
		return nil, false
	}
	c, ok := n.children[name]
	return c, ok
}

// addChild links a child under n, keeping insertion order. The caller
// guarantees the name is free among siblings.
func (n *node) addChild(c *node) {
	n.children[c.name] = c
	n.order = append(n.order, c.name)
	c.parent = n
}

func (n *node) removeChild(name string) (*node, bool) {
	c, ok := n.children[name]
	if !ok {
		return nil, false
	}
	delete(n.children, name)
	for i, existing := range n.order {
		if existing == name {
			n.order = append(n.order[:i], n.order[i+1:]...)
			break
		}
	}
	c.parent = nil
	return c, true
}

// childrenInOrder returns the directory's children in insertion order.
func (n *node) childrenInOrder() []*node {
	out := make([]*node, 0, len(n.order))
	for _, name := range n.order {
		out = append(out, n.children[name])
	}
	return out
}

// Entry describes one immediate child of a directory.
type Entry struct {
	Name string   `json:"name"`
	Type NodeType `json:"type"`
}
