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

package model

// ApiAccessTokenHeader authenticates API calls when the server runs
// with an access token.
const ApiAccessTokenHeader = "X-Api-Access-Token"

// ErrorCode classifies API-level failures. Protocol-level failures
// (a str_replace miss, a rename of a missing path) are NOT API errors;
// they come back inside a 200 response so the agent loop can continue.
type ErrorCode string

const (
	ErrorCodeInvalidRequest  ErrorCode = "INVALID_REQUEST"
	ErrorCodeInvalidSnapshot ErrorCode = "INVALID_SNAPSHOT"
	ErrorCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrorCodeRuntimeError    ErrorCode = "RUNTIME_ERROR"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message,omitempty"`
}
