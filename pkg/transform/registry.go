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

package transform

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/alibaba/opensandbox/previewd/pkg/log"
)

// versionLookupBackoff bounds the best-effort npm registry probes; a
// registry outage must never stall a recompilation for long.
var versionLookupBackoff = wait.Backoff{
	Steps:    3,
	Duration: 200 * time.Millisecond,
	Factor:   2.0,
	Jitter:   0.1,
}

const versionCacheSize = 512

// RegistryClient binds bare package specifiers to module CDN URLs,
// pinning versions through a best-effort npm registry lookup.
type RegistryClient struct {
	cdnBase  string
	npmBase  string
	client   *http.Client
	versions *lru.Cache[string, string]
}

// NewRegistryClient creates a client for the given module CDN and npm
// registry base URLs.
func NewRegistryClient(cdnBase, npmBase string) *RegistryClient {
	versions, _ := lru.New[string, string](versionCacheSize)
	return &RegistryClient{
		cdnBase:  strings.TrimRight(cdnBase, "/"),
		npmBase:  strings.TrimRight(npmBase, "/"),
		client:   &http.Client{Timeout: 5 * time.Second},
		versions: versions,
	}
}

// URLFor returns the CDN URL for a bare specifier, e.g.
// "react-dom/client" => "https://esm.sh/react-dom@18.3.1/client".
func (r *RegistryClient) URLFor(spec string) string {
	name, subpath := packageName(spec)
	return fmt.Sprintf("%s/%s@%s%s", r.cdnBase, name, r.ResolveVersion(name), subpath)
}

// ResolveVersion pins a package to its latest published version. On
// any lookup failure it falls back to the literal "latest" tag so a
// compile never fails on registry trouble.
func (r *RegistryClient) ResolveVersion(name string) string {
	if v, ok := r.versions.Get(name); ok {
		return v
	}

	version := "latest"
	err := wait.ExponentialBackoff(versionLookupBackoff, func() (bool, error) {
		v, err := r.fetchLatest(name)
		if err != nil {
			log.Debug("version lookup for %s failed, retrying: %v", name, err)
			return false, nil
		}
		version = v
		return true, nil
	})
	if err != nil {
		log.Warn("version lookup for %s gave up, using latest: %v", name, err)
	}

	r.versions.Add(name, version)
	return version
}

func (r *RegistryClient) fetchLatest(name string) (string, error) {
	// Scoped names keep their "@" but the "/" must be escaped.
	escaped := strings.ReplaceAll(url.PathEscape(name), "%40", "@")
	resp, err := r.client.Get(fmt.Sprintf("%s/%s/latest", r.npmBase, escaped))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("registry returned %d for %s", resp.StatusCode, name)
	}

	var payload struct {
		Version string `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if payload.Version == "" {
		return "", fmt.Errorf("registry returned no version for %s", name)
	}
	return payload.Version, nil
}

// Reset drops all pinned versions; used when the tree is replaced.
func (r *RegistryClient) Reset() {
	r.versions.Purge()
}
