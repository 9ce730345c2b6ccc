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

package glob

import (
	"fmt"

	globutil "github.com/bmatcuk/doublestar/v4"
)

// Validate reports whether the pattern is well-formed doublestar syntax.
func Validate(pattern string) error {
	if !globutil.ValidatePattern(pattern) {
		return fmt.Errorf("invalid glob pattern: %q", pattern)
	}
	return nil
}

// Match matches a slash-separated path against a doublestar pattern.
// Patterns without a leading slash match anywhere below the root, so
// "*.jsx" and "/**/*.jsx" behave alike against absolute project paths.
func Match(pattern, path string) (bool, error) {
	if err := Validate(pattern); err != nil {
		return false, err
	}
	if len(pattern) > 0 && pattern[0] != '/' {
		pattern = "/**/" + pattern
	}
	return globutil.Match(pattern, path)
}
