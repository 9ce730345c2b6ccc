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

package flag

import (
	"flag"
	stdlog "log"
	"os"
	"strings"

	"github.com/alibaba/opensandbox/previewd/pkg/log"
)

const (
	moduleRegistryEnv = "PREVIEWD_MODULE_REGISTRY"
	npmRegistryEnv    = "PREVIEWD_NPM_REGISTRY"
	entryPointEnv     = "PREVIEWD_ENTRY_POINT"
)

// InitFlags registers CLI flags and env overrides.
func InitFlags() {
	// Set default values
	ServerPort = 44773
	ServerLogLevel = 6
	ServerAccessToken = ""
	EntryPoint = "/App.jsx"
	ModuleRegistryURL = "https://esm.sh"
	NpmRegistryURL = "https://registry.npmjs.org"

	// First, set default values from environment variables
	if registryFromEnv := os.Getenv(moduleRegistryEnv); registryFromEnv != "" {
		if !strings.HasPrefix(registryFromEnv, "http://") && !strings.HasPrefix(registryFromEnv, "https://") {
			stdlog.Panic("Invalid PREVIEWD_MODULE_REGISTRY format: must start with http:// or https://")
		}
		ModuleRegistryURL = registryFromEnv
	}

	if npmFromEnv := os.Getenv(npmRegistryEnv); npmFromEnv != "" {
		if !strings.HasPrefix(npmFromEnv, "http://") && !strings.HasPrefix(npmFromEnv, "https://") {
			stdlog.Panic("Invalid PREVIEWD_NPM_REGISTRY format: must start with http:// or https://")
		}
		NpmRegistryURL = npmFromEnv
	}

	if entryFromEnv := os.Getenv(entryPointEnv); entryFromEnv != "" {
		if !strings.HasPrefix(entryFromEnv, "/") {
			stdlog.Panic("Invalid PREVIEWD_ENTRY_POINT format: must be an absolute project path")
		}
		EntryPoint = entryFromEnv
	}

	// Then define flags with current values as defaults
	flag.IntVar(&ServerPort, "port", ServerPort, "Server listening port (default: 44773)")
	flag.IntVar(&ServerLogLevel, "log-level", ServerLogLevel, "Server log level (0=LevelEmergency, 1=LevelAlert, 2=LevelCritical, 3=LevelError, 4=LevelWarning, 5=LevelNotice, 6=LevelInformational, 7=LevelDebug, default: 6)")
	flag.StringVar(&ServerAccessToken, "access-token", ServerAccessToken, "Server access token for API authentication")
	flag.StringVar(&EntryPoint, "entry-point", EntryPoint, "Project entry module mounted by the preview surface (e.g., /App.jsx)")
	flag.StringVar(&ModuleRegistryURL, "module-registry", ModuleRegistryURL, "Module CDN base URL for third-party import map entries (e.g., https://esm.sh)")
	flag.StringVar(&NpmRegistryURL, "npm-registry", NpmRegistryURL, "npm registry base URL used for version pinning lookups")

	// Parse flags - these will override environment variables if provided
	flag.Parse()

	// Log final values
	log.Info("Module registry is: %s", ModuleRegistryURL)
	log.Info("Preview entry point is: %s", EntryPoint)
}
