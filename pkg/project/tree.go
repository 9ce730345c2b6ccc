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
	"sort"
	"sync"

	"github.com/alibaba/opensandbox/previewd/pkg/util/glob"
)

// Tree is the canonical in-memory project store. All mutations are
// serialized behind one mutex and run to completion before the next
// operation is observed; the tree assumes a single active agent session.
//
// Every mutation bumps the revision, records the touched paths, and
// signals the change channel. A single consumer drains pending paths
// with TakeDirty.
type Tree struct {
	mu       sync.RWMutex
	root     *node
	revision uint64

	dirty   map[string]struct{}
	changes chan struct{}
}

// NewTree creates an empty tree containing only the root directory.
func NewTree() *Tree {
	return &Tree{
		root:    newDirNode(""),
		dirty:   make(map[string]struct{}),
		changes: make(chan struct{}, 1),
	}
}

// Changes exposes the change signal. The channel is level-triggered:
// one pending signal stands for any number of coalesced mutations.
func (t *Tree) Changes() <-chan struct{} {
	return t.changes
}

// TakeDirty drains and returns the paths touched since the last call,
// together with the current revision.
func (t *Tree) TakeDirty() ([]string, uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.dirty) == 0 {
		return nil, t.revision
	}
	paths := make([]string, 0, len(t.dirty))
	for p := range t.dirty {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	t.dirty = make(map[string]struct{})
	return paths, t.revision
}

// Revision returns the current mutation counter.
func (t *Tree) Revision() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.revision
}

// markChanged must be called with t.mu held for writing.
func (t *Tree) markChanged(paths ...string) {
	t.revision++
	for _, p := range paths {
		t.dirty[p] = struct{}{}
	}
	select {
	case t.changes <- struct{}{}:
	default:
	}
}

// lookup resolves a normalized path to its node. Must hold t.mu.
func (t *Tree) lookup(path string) (*node, bool) {
	cur := t.root
	for _, seg := range Split(path) {
		next, ok := cur.child(seg)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Exists reports whether any node lives at the path.
func (t *Tree) Exists(path string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.lookup(Normalize(path))
	return ok
}

// ReadFile returns the content of the file at path.
func (t *Tree) ReadFile(path string) (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p := Normalize(path)
	n, ok := t.lookup(p)
	if !ok {
		return "", errNotFound(p)
	}
	if n.isDir() {
		return "", errIsDirectory(p)
	}
	return n.content, nil
}

// Stat returns a descriptor for the node at path.
func (t *Tree) Stat(path string) (*Descriptor, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p := Normalize(path)
	n, ok := t.lookup(p)
	if !ok {
		return nil, errNotFound(p)
	}
	return descriptorOf(n, p, 0), nil
}

// mkdirAll walks the directory segments, creating any that are missing,
// and returns the final directory. Fails with NotDirectory when a file
// occupies an intermediate segment. Must hold t.mu for writing.
func (t *Tree) mkdirAll(segments []string) (*node, error) {
	cur := t.root
	for _, seg := range segments {
		next, ok := cur.child(seg)
		if ok {
			if !next.isDir() {
				return nil, errNotDirectory(next.path())
			}
			cur = next
			continue
		}
		dir := newDirNode(seg)
		cur.addChild(dir)
		cur = dir
	}
	return cur, nil
}

// CreateFile creates a file at path, auto-creating missing ancestor
// directories. An existing node at the exact path fails with
// AlreadyExists unless overwrite is set and the node is a file.
func (t *Tree) CreateFile(path, content string, overwrite bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := Normalize(path)
	if p == RootPath {
		return errInvalidPath(p)
	}
	if existing, ok := t.lookup(p); ok {
		if existing.isDir() {
			return errIsDirectory(p)
		}
		if !overwrite {
			return errAlreadyExists(p)
		}
		existing.content = content
		t.markChanged(p)
		return nil
	}
	segments := Split(p)
	parent, err := t.mkdirAll(segments[:len(segments)-1])
	if err != nil {
		return err
	}
	parent.addChild(newFileNode(segments[len(segments)-1], content))
	t.markChanged(p)
	return nil
}

// CreateDirectory creates a directory at path, auto-creating missing
// ancestors. Fails with AlreadyExists when the exact path is taken.
func (t *Tree) CreateDirectory(path string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := Normalize(path)
	if p == RootPath {
		return errAlreadyExists(p)
	}
	if _, ok := t.lookup(p); ok {
		return errAlreadyExists(p)
	}
	if _, err := t.mkdirAll(Split(p)); err != nil {
		return err
	}
	t.markChanged(p)
	return nil
}

// WriteFile replaces the content of an existing file.
func (t *Tree) WriteFile(path, content string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := Normalize(path)
	n, ok := t.lookup(p)
	if !ok {
		return errNotFound(p)
	}
	if n.isDir() {
		return errIsDirectory(p)
	}
	n.content = content
	t.markChanged(p)
	return nil
}

// Delete removes the node at path, recursively for directories.
func (t *Tree) Delete(path string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := Normalize(path)
	if p == RootPath {
		return ErrRootForbidden
	}
	n, ok := t.lookup(p)
	if !ok {
		return errNotFound(p)
	}
	touched := collectPaths(n, p)
	n.parent.removeChild(n.name)
	t.markChanged(touched...)
	return nil
}

// Move relocates a node and its subtree to a new path, auto-creating
// destination ancestors. The destination must not exist; the source
// must not be the root or an ancestor of the destination.
func (t *Tree) Move(oldPath, newPath string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	src, dst := Normalize(oldPath), Normalize(newPath)
	if src == RootPath {
		return ErrRootForbidden
	}
	if dst == RootPath || IsDescendant(src, dst) || src == dst {
		return errInvalidPath(dst)
	}
	n, ok := t.lookup(src)
	if !ok {
		return errNotFound(src)
	}
	if _, ok := t.lookup(dst); ok {
		return errAlreadyExists(dst)
	}
	segments := Split(dst)
	parent, err := t.mkdirAll(segments[:len(segments)-1])
	if err != nil {
		return err
	}
	touched := collectPaths(n, src)
	n.parent.removeChild(n.name)
	n.name = segments[len(segments)-1]
	parent.addChild(n)
	touched = append(touched, collectPaths(n, dst)...)
	t.markChanged(touched...)
	return nil
}

// List returns the immediate children of a directory in insertion order.
func (t *Tree) List(path string) ([]Entry, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p := Normalize(path)
	n, ok := t.lookup(p)
	if !ok {
		return nil, errNotFound(p)
	}
	if !n.isDir() {
		return nil, errNotDirectory(p)
	}
	entries := make([]Entry, 0, len(n.order))
	for _, c := range n.childrenInOrder() {
		entries = append(entries, Entry{Name: c.name, Type: c.nodeType})
	}
	return entries, nil
}

// Glob returns every path in the tree matching the doublestar pattern,
// in pre-order insertion order.
func (t *Tree) Glob(pattern string) ([]string, error) {
	if err := glob.Validate(pattern); err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []string
	t.walk(t.root, RootPath, func(n *node, p string) {
		if p == RootPath {
			return
		}
		if ok, _ := glob.Match(pattern, p); ok {
			out = append(out, p)
		}
	})
	return out, nil
}

// Files returns a snapshot of every file path to its content. The
// pipeline compiles against this copy outside the tree lock.
func (t *Tree) Files() map[string]string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]string)
	t.walk(t.root, RootPath, func(n *node, p string) {
		if !n.isDir() {
			out[p] = n.content
		}
	})
	return out
}

// walk visits nodes pre-order, children in insertion order. Must hold t.mu.
func (t *Tree) walk(n *node, path string, fn func(*node, string)) {
	fn(n, path)
	if !n.isDir() {
		return
	}
	for _, c := range n.childrenInOrder() {
		t.walk(c, Join(path, c.name), fn)
	}
}

// collectPaths lists the path of n and every descendant.
func collectPaths(n *node, path string) []string {
	out := []string{path}
	if n.isDir() {
		for _, c := range n.childrenInOrder() {
			out = append(out, collectPaths(c, Join(path, c.name))...)
		}
	}
	return out
}
