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

package safego

import (
	runtimeutil "k8s.io/apimachinery/pkg/util/runtime"
)

func init() {
	// A panicking compile or push goroutine must not take the daemon down;
	// the agent session keeps running on the last published state.
	runtimeutil.ReallyCrash = false
}

// Go runs f on a new goroutine with panic recovery and stack logging.
func Go(f func()) {
	go func() {
		defer runtimeutil.HandleCrash()

		f()
	}()
}
