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
	"regexp"
	"strings"

	"github.com/alibaba/opensandbox/previewd/pkg/project"
)

// Import specifier scanning. The esbuild transform API is file-local
// and does not expose the import graph, so specifiers are collected
// from the module syntax directly: static imports, re-exports and
// dynamic import() calls.
var importPatterns = []*regexp.Regexp{
	// import defaultExport, { named } from "spec"; export { x } from "spec";
	regexp.MustCompile(`(?m)^\s*(?:import|export)\s+[^'"();]*?from\s*(['"])([^'"]+)(['"])`),
	// import "spec";
	regexp.MustCompile(`(?m)^\s*import\s*(['"])([^'"]+)(['"])`),
	// import("spec")
	regexp.MustCompile(`import\(\s*(['"])([^'"]+)(['"])\s*\)`),
}

// parseImports returns the module specifiers of source in first-seen
// order, deduplicated.
func parseImports(source string) []string {
	seen := make(map[string]struct{})
	var specs []string
	for _, pattern := range importPatterns {
		for _, m := range pattern.FindAllStringSubmatch(source, -1) {
			spec := m[2]
			if _, ok := seen[spec]; ok {
				continue
			}
			seen[spec] = struct{}{}
			specs = append(specs, spec)
		}
	}
	return specs
}

// isLocalSpecifier reports whether a specifier addresses the project
// tree rather than a registry package.
func isLocalSpecifier(spec string) bool {
	return strings.HasPrefix(spec, "./") ||
		strings.HasPrefix(spec, "../") ||
		strings.HasPrefix(spec, "/")
}

// resolveExtensions is the local resolution priority order: an exact
// path wins, then inferred extensions, then directory index files.
var resolveExtensions = []string{"", ".jsx", ".tsx", ".js", ".ts"}

// resolveLocal maps a local specifier, relative to the importing file,
// onto a concrete tree path. files is the tree snapshot being compiled.
func resolveLocal(files map[string]string, importer, spec string) (string, error) {
	var base string
	if strings.HasPrefix(spec, "/") {
		base = project.Normalize(spec)
	} else {
		base = project.Join(project.Dir(importer), spec)
	}
	for _, ext := range resolveExtensions {
		if _, ok := files[base+ext]; ok {
			return base + ext, nil
		}
	}
	for _, ext := range resolveExtensions[1:] {
		if _, ok := files[base+"/index"+ext]; ok {
			return base + "/index" + ext, nil
		}
	}
	return "", fmt.Errorf("unresolved import %q in %s", spec, importer)
}

// packageName splits a bare specifier into its registry package name
// and subpath: "react-dom/client" => ("react-dom", "/client"),
// "@scope/pkg/sub" => ("@scope/pkg", "/sub").
func packageName(spec string) (name, subpath string) {
	parts := strings.Split(spec, "/")
	n := 1
	if strings.HasPrefix(spec, "@") && len(parts) > 1 {
		n = 2
	}
	name = strings.Join(parts[:n], "/")
	if len(parts) > n {
		subpath = "/" + strings.Join(parts[n:], "/")
	}
	return name, subpath
}

// rewriteImports replaces module specifiers in compiled output using
// the per-file mapping. Only specifiers inside import syntax are
// touched; ordinary string literals are left alone.
func rewriteImports(code string, mapping map[string]string) string {
	replace := func(pattern *regexp.Regexp, in string) string {
		return pattern.ReplaceAllStringFunc(in, func(stmt string) string {
			m := pattern.FindStringSubmatch(stmt)
			target, ok := mapping[m[2]]
			if !ok {
				return stmt
			}
			quoted := m[1] + m[2] + m[3]
			return strings.Replace(stmt, quoted, m[1]+target+m[3], 1)
		})
	}
	for _, pattern := range importPatterns {
		code = replace(pattern, code)
	}
	return code
}
