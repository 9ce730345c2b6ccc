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
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// compilableExtensions maps a file suffix to its esbuild loader. Files
// outside this set are plain assets and never enter the pipeline.
var compilableExtensions = map[string]api.Loader{
	".jsx": api.LoaderJSX,
	".tsx": api.LoaderTSX,
	".ts":  api.LoaderTS,
	".js":  api.LoaderJSX, // plain .js files may still carry JSX
	".mjs": api.LoaderJSX,
}

// isCompilable reports whether the path holds module source the
// pipeline compiles.
func isCompilable(path string) bool {
	_, ok := compilableExtensions[extensionOf(path)]
	return ok
}

func extensionOf(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i:]
	}
	return ""
}

// compileSource lowers one file's JSX/TSX source to a plain ES module.
// The transform is file-local and pure: identical source yields
// identical output.
func compileSource(path, source string) (string, error) {
	result := api.Transform(source, api.TransformOptions{
		Loader:     compilableExtensions[extensionOf(path)],
		Format:     api.FormatESModule,
		Target:     api.ES2020,
		Sourcefile: path,
		JSX:        api.JSXTransform,
	})
	if len(result.Errors) > 0 {
		msgs := make([]string, 0, len(result.Errors))
		for _, e := range result.Errors {
			loc := ""
			if e.Location != nil {
				loc = fmt.Sprintf("%d:%d: ", e.Location.Line, e.Location.Column)
			}
			msgs = append(msgs, loc+e.Text)
		}
		return "", fmt.Errorf("compile %s: %s", path, strings.Join(msgs, "; "))
	}
	return string(result.Code), nil
}

// errorModule builds the degraded entry artifact: when the entry file
// cannot be compiled the preview surface still gets a loadable module
// that surfaces the failure instead of stale content.
func errorModule(message string) string {
	escaped := strings.ReplaceAll(message, "\\", "\\\\")
	escaped = strings.ReplaceAll(escaped, "`", "\\`")
	escaped = strings.ReplaceAll(escaped, "${", "\\${")
	return fmt.Sprintf("const compileError = `%s`;\nconsole.error(compileError);\nexport default compileError;\n", escaped)
}
