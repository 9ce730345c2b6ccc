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
	"errors"
	"fmt"
)

// Sentinel errors for tree operations. Callers branch on these with
// errors.Is; the wrapped form carries the offending path.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrIsDirectory   = errors.New("is a directory")
	ErrNotDirectory  = errors.New("not a directory")
	ErrInvalidPath   = errors.New("invalid path")
	ErrRootForbidden = errors.New("operation not permitted on root")
)

func errNotFound(path string) error {
	return fmt.Errorf("%s: %w", path, ErrNotFound)
}

func errAlreadyExists(path string) error {
	return fmt.Errorf("%s: %w", path, ErrAlreadyExists)
}

func errIsDirectory(path string) error {
	return fmt.Errorf("%s: %w", path, ErrIsDirectory)
}

func errNotDirectory(path string) error {
	return fmt.Errorf("%s: %w", path, ErrNotDirectory)
}

func errInvalidPath(path string) error {
	return fmt.Errorf("%s: %w", path, ErrInvalidPath)
}
