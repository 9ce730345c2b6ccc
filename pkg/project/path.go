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
	"path"
	"strings"
)

// Normalize returns the canonical absolute form of a project path:
// leading slash, duplicate separators collapsed, "." and ".." resolved
// lexically without escaping the root, no trailing slash except for "/".
// Callers keep the raw string for messages; only the normalized form is
// a valid tree lookup key.
func Normalize(p string) string {
	return path.Clean("/" + p)
}

// Split breaks a path into its segments. The root path yields nil.
func Split(p string) []string {
	p = Normalize(p)
	if p == RootPath {
		return nil
	}
	return strings.Split(strings.TrimPrefix(p, "/"), "/")
}

// Base returns the last segment of the path, or "/" for the root.
func Base(p string) string {
	return path.Base(Normalize(p))
}

// Dir returns the parent path, "/" when the path is a root-level entry.
func Dir(p string) string {
	return path.Dir(Normalize(p))
}

// Join appends a child name to a normalized directory path.
func Join(dir, name string) string {
	return path.Join(Normalize(dir), name)
}

// IsDescendant reports whether p lies strictly beneath ancestor.
func IsDescendant(ancestor, p string) bool {
	ancestor, p = Normalize(ancestor), Normalize(p)
	if ancestor == RootPath {
		return p != RootPath
	}
	return strings.HasPrefix(p, ancestor+"/")
}
