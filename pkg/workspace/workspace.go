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

// Package workspace ties one agent session together: one project tree,
// the tool protocols that mutate it and the pipeline that compiles it.
package workspace

import (
	"context"
	"sync"

	"github.com/alibaba/opensandbox/previewd/pkg/log"
	"github.com/alibaba/opensandbox/previewd/pkg/preview"
	"github.com/alibaba/opensandbox/previewd/pkg/project"
	"github.com/alibaba/opensandbox/previewd/pkg/tooling"
	"github.com/alibaba/opensandbox/previewd/pkg/transform"
	"github.com/alibaba/opensandbox/previewd/pkg/util/safego"
)

// Config carries the workspace construction parameters.
type Config struct {
	EntryPoint        string
	ModuleRegistryURL string
	NpmRegistryURL    string
}

// Workspace owns the tree exclusively for one agent session. All tool
// calls are applied strictly in arrival order behind one mutex; the
// pipeline runs on its own goroutine and observes the tree through its
// change channel only.
type Workspace struct {
	mu  sync.Mutex
	cfg Config

	tree     *project.Tree
	editor   *tooling.Editor
	manager  *tooling.Manager
	registry *transform.RegistryClient
	pipeline *transform.Pipeline
	hub      *preview.Hub
	cancel   context.CancelFunc
}

// New creates a workspace around an empty tree and starts its pipeline.
func New(cfg Config) *Workspace {
	w := &Workspace{
		cfg:      cfg,
		hub:      preview.NewHub(),
		registry: transform.NewRegistryClient(cfg.ModuleRegistryURL, cfg.NpmRegistryURL),
	}
	w.attach(project.NewTree())
	return w
}

// attach wires a tree to a fresh pipeline. Replacing the tree discards
// the old pipeline together with its compile cache, wholesale. The old
// pipeline is stopped before the new one exists, so a rebuild still in
// flight against the replaced tree can never broadcast to the hub.
func (w *Workspace) attach(tree *project.Tree) {
	if w.pipeline != nil {
		w.pipeline.Stop()
	}
	if w.cancel != nil {
		w.cancel()
	}
	w.tree = tree
	w.editor = tooling.NewEditor(tree)
	w.manager = tooling.NewManager(tree)
	w.pipeline = transform.NewPipeline(tree, w.registry, w.cfg.EntryPoint)
	w.pipeline.OnPublish = func(pub *transform.Publication) {
		w.hub.Broadcast(preview.FromPublication(pub))
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	pipeline := w.pipeline
	safego.Go(func() { pipeline.Run(ctx) })
}

// Edit applies one editor protocol command.
func (w *Workspace) Edit(req tooling.EditRequest) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.editor.Apply(req)
}

// Manage applies one entry manager protocol command.
func (w *Workspace) Manage(req tooling.EntryRequest) tooling.EntryResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.manager.Apply(req)
}

// Stat returns the descriptor for one tree path.
func (w *Workspace) Stat(path string) (*project.Descriptor, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tree.Stat(path)
}

// List returns the immediate entries of a directory in insertion order.
func (w *Workspace) List(path string) ([]project.Entry, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tree.List(path)
}

// Search returns all tree paths matching a doublestar pattern.
func (w *Workspace) Search(pattern string) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tree.Glob(pattern)
}

// Snapshot serializes the whole tree; the sole persistence contract.
func (w *Workspace) Snapshot() map[string]*project.Descriptor {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tree.Serialize()
}

// Restore replaces the tree from a snapshot. The previous pipeline and
// its memoization cache are dropped and a full rebuild is triggered.
func (w *Workspace) Restore(snapshot map[string]*project.Descriptor) error {
	tree, err := project.Deserialize(snapshot)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.attach(tree)
	log.Info("workspace restored from snapshot: %d nodes", len(snapshot))
	return nil
}

// Binding returns the current preview contract.
func (w *Workspace) Binding() preview.Binding {
	w.mu.Lock()
	pipeline := w.pipeline
	w.mu.Unlock()
	return preview.FromPublication(pipeline.Current())
}

// Artifact looks up a compiled module by its ephemeral ID.
func (w *Workspace) Artifact(id string) (*transform.Artifact, bool) {
	w.mu.Lock()
	pipeline := w.pipeline
	w.mu.Unlock()
	return pipeline.ArtifactByID(id)
}

// Hub exposes the preview push channel for the watch endpoint.
func (w *Workspace) Hub() *preview.Hub {
	return w.hub
}

// Close stops the pipeline goroutine and retires pending publications.
func (w *Workspace) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pipeline != nil {
		w.pipeline.Stop()
	}
	if w.cancel != nil {
		w.cancel()
	}
}
