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

package controller

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/alibaba/opensandbox/previewd/pkg/preview"
	"github.com/alibaba/opensandbox/previewd/pkg/workspace"
)

// Controller tests share one workspace through the package global;
// each test works on its own paths.
func TestMain(m *testing.M) {
	npm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"version":"1.0.0"}`)
	}))
	InitWorkspace(workspace.Config{
		EntryPoint:        "/App.jsx",
		ModuleRegistryURL: "https://esm.sh",
		NpmRegistryURL:    npm.URL,
	})
	code := m.Run()
	npm.Close()
	os.Exit(code)
}

// waitForCompiled polls until a publication carries an artifact URL
// for the given tree path.
func waitForCompiled(t *testing.T, path string) preview.Binding {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		b := ws.Binding()
		if b.Ready && b.ImportMap[path] != "" {
			return b
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("%s was not compiled within deadline", path)
	return preview.Binding{}
}
