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

import "sort"

// Descriptor is the flat persistence form of one node. Index records
// the node's position in a pre-order walk so sibling insertion order
// survives the round trip through an unordered map.
type Descriptor struct {
	Type    NodeType          `json:"type"`
	Name    string            `json:"name"`
	Path    string            `json:"path"`
	Content string            `json:"content,omitempty"`
	Size    int               `json:"size"`
	Meta    map[string]string `json:"meta,omitempty"`
	Index   int               `json:"index"`
}

// descriptorOf flattens a node. Size is derived from the content and
// ignored on deserialization; directories report zero.
func descriptorOf(n *node, path string, index int) *Descriptor {
	d := &Descriptor{
		Type:  n.nodeType,
		Name:  n.name,
		Path:  path,
		Index: index,
	}
	if !n.isDir() {
		d.Content = n.content
		d.Size = len(n.content)
		d.Meta = n.meta
	}
	return d
}

// Serialize flattens the tree to a path-keyed descriptor map. The root
// directory is included under "/". This map is the sole persistence
// contract; external storage returns it unchanged on reload.
func (t *Tree) Serialize() map[string]*Descriptor {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]*Descriptor)
	index := 0
	t.walk(t.root, RootPath, func(n *node, p string) {
		out[p] = descriptorOf(n, p, index)
		index++
	})
	return out
}

// Deserialize rebuilds a tree from a serialized descriptor map.
// Descriptors are applied in Index order (path order as a fallback for
// maps written by hand), so parents precede children and sibling
// insertion order is restored.
func Deserialize(descriptors map[string]*Descriptor) (*Tree, error) {
	ordered := make([]*Descriptor, 0, len(descriptors))
	for path, d := range descriptors {
		if d == nil {
			return nil, errInvalidPath(path)
		}
		if Normalize(d.Path) != Normalize(path) {
			return nil, errInvalidPath(path)
		}
		ordered = append(ordered, d)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Index != ordered[j].Index {
			return ordered[i].Index < ordered[j].Index
		}
		return Normalize(ordered[i].Path) < Normalize(ordered[j].Path)
	})

	t := NewTree()
	for _, d := range ordered {
		p := Normalize(d.Path)
		if p == RootPath {
			if d.Type != NodeTypeDirectory {
				return nil, errInvalidPath(p)
			}
			continue
		}
		switch d.Type {
		case NodeTypeDirectory:
			if err := t.CreateDirectory(p); err != nil {
				return nil, err
			}
		case NodeTypeFile:
			if err := t.CreateFile(p, d.Content, false); err != nil {
				return nil, err
			}
			if len(d.Meta) > 0 {
				t.mu.Lock()
				if n, ok := t.lookup(p); ok {
					n.meta = d.Meta
				}
				t.mu.Unlock()
			}
		default:
			return nil, errInvalidPath(p)
		}
	}

	// A rebuilt tree starts clean; restoring a snapshot is not an edit.
	t.mu.Lock()
	t.dirty = make(map[string]struct{})
	t.revision = 0
	select {
	case <-t.changes:
	default:
	}
	t.mu.Unlock()
	return t, nil
}
