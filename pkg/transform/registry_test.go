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
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeNpm serves /{package}/latest lookups from a fixed version table
// and counts requests.
func fakeNpm(versions map[string]string, hits *atomic.Int64) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		name := r.URL.Path[1 : len(r.URL.Path)-len("/latest")]
		v, ok := versions[name]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, `{"version":%q}`, v)
	}))
}

func TestURLForPinsVersion(t *testing.T) {
	var hits atomic.Int64
	server := fakeNpm(map[string]string{"react": "18.3.1", "react-dom": "18.3.1"}, &hits)
	defer server.Close()

	registry := NewRegistryClient("https://esm.sh/", server.URL)
	assert.Equal(t, "https://esm.sh/react@18.3.1", registry.URLFor("react"))
	assert.Equal(t, "https://esm.sh/react-dom@18.3.1/client", registry.URLFor("react-dom/client"))
}

func TestResolveVersionCaches(t *testing.T) {
	var hits atomic.Int64
	server := fakeNpm(map[string]string{"react": "18.3.1"}, &hits)
	defer server.Close()

	registry := NewRegistryClient("https://esm.sh", server.URL)
	assert.Equal(t, "18.3.1", registry.ResolveVersion("react"))
	assert.Equal(t, "18.3.1", registry.ResolveVersion("react"))
	assert.Equal(t, int64(1), hits.Load())

	registry.Reset()
	assert.Equal(t, "18.3.1", registry.ResolveVersion("react"))
	assert.Equal(t, int64(2), hits.Load())
}

func TestResolveVersionFallsBackToLatest(t *testing.T) {
	var hits atomic.Int64
	server := fakeNpm(map[string]string{}, &hits)
	defer server.Close()

	registry := NewRegistryClient("https://esm.sh", server.URL)
	assert.Equal(t, "latest", registry.ResolveVersion("no-such-package"))
	// Exhausted the bounded retries, then cached the fallback.
	assert.Equal(t, int64(versionLookupBackoff.Steps), hits.Load())
	assert.Equal(t, "latest", registry.ResolveVersion("no-such-package"))
	assert.Equal(t, int64(versionLookupBackoff.Steps), hits.Load())
}

func TestResolveVersionScopedPackage(t *testing.T) {
	var hits atomic.Int64
	server := fakeNpm(map[string]string{"@scope/pkg": "2.0.0"}, &hits)
	defer server.Close()

	registry := NewRegistryClient("https://esm.sh", server.URL)
	assert.Equal(t, "https://esm.sh/@scope/pkg@2.0.0/sub", registry.URLFor("@scope/pkg/sub"))
}

func TestResolveVersionUnreachableRegistry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	registry := NewRegistryClient("https://esm.sh", server.URL)
	assert.Equal(t, "latest", registry.ResolveVersion("react"))
}
