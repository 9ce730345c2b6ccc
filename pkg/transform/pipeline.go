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

// Package transform compiles project tree sources into loadable ES
// module artifacts and maintains the import map the preview surface
// resolves against. Compilation is file-local; local imports resolve
// against the tree, bare imports against a remote module registry.
package transform

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/puzpuzpuz/xsync/v4"

	"github.com/alibaba/opensandbox/previewd/pkg/log"
	"github.com/alibaba/opensandbox/previewd/pkg/project"
)

const compileCacheSize = 1024

// Artifact is one compiled module. Identity is ephemeral: a file that
// recompiles gets a fresh ID, so no caller may hold onto a URL across
// edits.
type Artifact struct {
	ID   string `json:"id"`
	Path string `json:"path"`
	Code string `json:"-"`
}

// URL is the ephemeral address the artifact is served from.
func (a *Artifact) URL() string {
	return "/artifacts/" + a.ID + ".mjs"
}

// Publication is one complete, atomic pipeline output: the full import
// map, the entry artifact and every per-file failure. It is always
// republished whole, never patched incrementally.
type Publication struct {
	Revision    uint64            `json:"revision"`
	Entry       string            `json:"entry"`
	EntryURL    string            `json:"entry_url"`
	ImportMap   map[string]string `json:"import_map"`
	Errors      map[string]string `json:"errors,omitempty"`
	GeneratedAt time.Time         `json:"generated_at"`

	artifacts map[string]*Artifact
}

// Pipeline owns no tree state beyond a compile cache keyed by
// (path, content hash, dependency fingerprint); the cache is evicted
// wholesale when the tree is replaced (a new Pipeline is built).
type Pipeline struct {
	tree     *project.Tree
	registry *RegistryClient
	entry    string

	cache     *lru.Cache[string, *Artifact]
	artifacts *xsync.Map[string, *Artifact]
	current   atomic.Pointer[Publication]

	// publishMu orders publications against Stop: once Stop returns,
	// no further publication can reach the store or OnPublish.
	publishMu sync.Mutex
	stopped   bool

	// OnPublish, when set before Run, observes every publication.
	OnPublish func(*Publication)
}

// NewPipeline creates a pipeline for the tree. entry is the fixed
// project path the preview surface mounts.
func NewPipeline(tree *project.Tree, registry *RegistryClient, entry string) *Pipeline {
	cache, _ := lru.New[string, *Artifact](compileCacheSize)
	return &Pipeline{
		tree:      tree,
		registry:  registry,
		entry:     project.Normalize(entry),
		cache:     cache,
		artifacts: xsync.NewMap[string, *Artifact](),
	}
}

// Current returns the last publication, nil before the first build.
func (p *Pipeline) Current() *Publication {
	return p.current.Load()
}

// ArtifactByID looks up a served artifact.
func (p *Pipeline) ArtifactByID(id string) (*Artifact, bool) {
	return p.artifacts.Load(id)
}

// Stop retires the pipeline: whatever build is still in flight is
// discarded at the publish step instead of reaching consumers. A
// replaced tree must never push a pre-replacement publication.
func (p *Pipeline) Stop() {
	p.publishMu.Lock()
	p.stopped = true
	p.publishMu.Unlock()
}

// Run consumes tree change signals until the context is cancelled,
// rebuilding on every change. Results computed against a tree revision
// that has since advanced are discarded; the pending change signal
// drives the next rebuild against the newer state.
func (p *Pipeline) Run(ctx context.Context) {
	p.Rebuild()
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.tree.Changes():
			p.Rebuild()
		}
	}
}

// Rebuild compiles the current tree snapshot and atomically publishes
// the result. Returns false when the result was discarded as stale.
func (p *Pipeline) Rebuild() bool {
	changed, revision := p.tree.TakeDirty()
	if len(changed) > 0 {
		log.Debug("rebuilding after change to %s", strings.Join(changed, ", "))
	}

	files := p.tree.Files()
	build := p.compileAll(files)

	// A batch of edits that arrived mid-compile wins; never publish
	// results for a superseded revision.
	if p.tree.Revision() != revision {
		log.Debug("discarding stale build for revision %d", revision)
		return false
	}

	return p.publish(p.assemble(build, revision))
}

// buildState carries one compilation pass over a tree snapshot.
type buildState struct {
	files    map[string]string
	imports  map[string][]string          // path -> raw specifiers
	resolved map[string]map[string]string // path -> specifier -> dep path
	bare     map[string]struct{}
	bareURLs map[string]string // bare specifier -> pinned CDN URL
	compiled map[string]*Artifact
	errors   map[string]string
	mu       sync.Mutex
}

func (p *Pipeline) compileAll(files map[string]string) *buildState {
	b := &buildState{
		files:    files,
		imports:  make(map[string][]string),
		resolved: make(map[string]map[string]string),
		bare:     make(map[string]struct{}),
		compiled: make(map[string]*Artifact),
		errors:   make(map[string]string),
	}

	var sources []string
	for path := range files {
		if isCompilable(path) {
			sources = append(sources, path)
		}
	}
	sort.Strings(sources)

	// Resolve the local import graph first; unresolvable imports are
	// terminal for the importing file only.
	for _, path := range sources {
		specs := parseImports(files[path])
		b.imports[path] = specs
		b.resolved[path] = make(map[string]string)
		for _, spec := range specs {
			if !isLocalSpecifier(spec) {
				b.bare[spec] = struct{}{}
				continue
			}
			dep, err := resolveLocal(files, path, spec)
			if err != nil {
				b.errors[path] = err.Error()
				continue
			}
			b.resolved[path][spec] = dep
		}
	}

	// Pin every bare specifier before compiling so no registry lookup
	// ever runs inside the per-level compile path; version lookups are
	// network I/O and must not serialize the parallel levels.
	b.bareURLs = make(map[string]string, len(b.bare))
	var pins sync.WaitGroup
	var pinMu sync.Mutex
	for spec := range b.bare {
		pins.Add(1)
		go func(spec string) {
			defer pins.Done()
			url := p.registry.URLFor(spec)
			pinMu.Lock()
			b.bareURLs[spec] = url
			pinMu.Unlock()
		}(spec)
	}
	pins.Wait()

	for _, level := range topoLevels(sources, b.resolved, b.errors) {
		var wg sync.WaitGroup
		for _, path := range level {
			wg.Add(1)
			go func(path string) {
				defer wg.Done()
				p.compileOne(b, path)
			}(path)
		}
		wg.Wait()
	}
	return b
}

// compileOne compiles a single file against its already-compiled
// dependencies. Independent files in the same level run concurrently.
func (p *Pipeline) compileOne(b *buildState, path string) {
	b.mu.Lock()
	if _, failed := b.errors[path]; failed {
		b.mu.Unlock()
		return
	}
	mapping := make(map[string]string)
	for _, spec := range b.imports[path] {
		if isLocalSpecifier(spec) {
			dep := b.resolved[path][spec]
			depArtifact, ok := b.compiled[dep]
			if !ok {
				b.errors[path] = fmt.Sprintf("compile %s: dependency %s failed to compile", path, dep)
				b.mu.Unlock()
				return
			}
			mapping[spec] = depArtifact.URL()
		} else {
			mapping[spec] = b.bareURLs[spec]
		}
	}
	source := b.files[path]
	b.mu.Unlock()

	key := cacheKey(path, source, mapping)
	if cached, ok := p.cache.Get(key); ok {
		b.mu.Lock()
		b.compiled[path] = cached
		b.mu.Unlock()
		return
	}

	code, err := compileSource(path, source)
	if err != nil {
		b.mu.Lock()
		b.errors[path] = err.Error()
		b.mu.Unlock()
		return
	}
	artifact := &Artifact{
		ID:   uuid.NewString(),
		Path: path,
		Code: rewriteImports(code, mapping),
	}
	p.cache.Add(key, artifact)
	b.mu.Lock()
	b.compiled[path] = artifact
	b.mu.Unlock()
}

// assemble builds the full publication from one compilation pass.
func (p *Pipeline) assemble(b *buildState, revision uint64) *Publication {
	pub := &Publication{
		Revision:    revision,
		Entry:       p.entry,
		ImportMap:   make(map[string]string),
		Errors:      b.errors,
		GeneratedAt: time.Now(),
		artifacts:   make(map[string]*Artifact),
	}

	for spec, url := range b.bareURLs {
		pub.ImportMap[spec] = url
	}
	for path, artifact := range b.compiled {
		pub.ImportMap[path] = artifact.URL()
		pub.artifacts[artifact.ID] = artifact
		// Extensionless alias so "/components/Button" resolves too,
		// unless another file owns that exact path.
		if alias := strings.TrimSuffix(path, extensionOf(path)); alias != path {
			if _, taken := b.files[alias]; !taken {
				pub.ImportMap[alias] = artifact.URL()
			}
		}
	}

	entryArtifact, ok := b.compiled[p.entry]
	if !ok {
		message, failed := b.errors[p.entry]
		if !failed {
			message = fmt.Sprintf("entry %s not found in project", p.entry)
		}
		entryArtifact = &Artifact{
			ID:   uuid.NewString(),
			Path: p.entry,
			Code: errorModule(message),
		}
		pub.artifacts[entryArtifact.ID] = entryArtifact
		pub.ImportMap[p.entry] = entryArtifact.URL()
	}
	pub.EntryURL = entryArtifact.URL()
	return pub
}

// publish atomically swaps in the new publication and retires the
// addresses of superseded artifacts. Returns false when the pipeline
// was stopped while the build was in flight; nothing is published.
func (p *Pipeline) publish(pub *Publication) bool {
	p.publishMu.Lock()
	defer p.publishMu.Unlock()
	if p.stopped {
		log.Debug("discarding build for revision %d: pipeline stopped", pub.Revision)
		return false
	}
	for id, artifact := range pub.artifacts {
		p.artifacts.Store(id, artifact)
	}
	p.current.Store(pub)
	p.artifacts.Range(func(id string, _ *Artifact) bool {
		if _, live := pub.artifacts[id]; !live {
			p.artifacts.Delete(id)
		}
		return true
	})
	log.Info("published revision %d: %d modules, %d errors", pub.Revision, len(pub.artifacts), len(pub.Errors))
	if p.OnPublish != nil {
		p.OnPublish(pub)
	}
	return true
}

// topoLevels orders source files so dependencies compile before their
// importers, grouped into levels of mutually independent files. Files
// on an import cycle fail with a compile error instead of an order.
func topoLevels(sources []string, resolved map[string]map[string]string, errors map[string]string) [][]string {
	deps := make(map[string][]string, len(sources))
	for _, path := range sources {
		for _, dep := range resolved[path] {
			if dep != path {
				deps[path] = append(deps[path], dep)
			}
		}
	}

	placed := make(map[string]bool)
	var levels [][]string
	remaining := append([]string(nil), sources...)
	for len(remaining) > 0 {
		var level, next []string
		for _, path := range remaining {
			ready := true
			for _, dep := range deps[path] {
				if !placed[dep] {
					ready = false
					break
				}
			}
			if ready {
				level = append(level, path)
			} else {
				next = append(next, path)
			}
		}
		if len(level) == 0 {
			// Everything left depends on something unplaced: a cycle.
			for _, path := range next {
				if _, failed := errors[path]; !failed {
					errors[path] = fmt.Sprintf("compile %s: import cycle detected", path)
				}
			}
			break
		}
		for _, path := range level {
			placed[path] = true
		}
		levels = append(levels, level)
		remaining = next
	}
	return levels
}

func cacheKey(path, source string, mapping map[string]string) string {
	specs := make([]string, 0, len(mapping))
	for spec, target := range mapping {
		specs = append(specs, spec+"\x01"+target)
	}
	sort.Strings(specs)
	h := sha256.New()
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write([]byte(source))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(specs, "\x02")))
	return hex.EncodeToString(h.Sum(nil))
}
