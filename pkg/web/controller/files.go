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

	"github.com/gin-gonic/gin"

	"github.com/alibaba/opensandbox/previewd/pkg/web/model"
)

// FilesController serves the entry manager protocol plus path metadata
// and glob search.
type FilesController struct {
	*basicController
}

func NewFilesController(ctx *gin.Context) *FilesController {
	return &FilesController{basicController: newBasicController(ctx)}
}

// Apply runs one entry manager command. The structured
// {success,message|error} result is the response body either way;
// the agent branches on it, not on the HTTP status.
func (c *FilesController) Apply() {
	var request model.EntryRequest
	if err := c.bindJSON(&request); err != nil {
		c.RespondError(
			http.StatusBadRequest,
			model.ErrorCodeInvalidRequest,
			fmt.Sprintf("error parsing request, MAYBE invalid body format. %v", err),
		)
		return
	}

	if err := request.Validate(); err != nil {
		c.RespondError(
			http.StatusBadRequest,
			model.ErrorCodeInvalidRequest,
			fmt.Sprintf("invalid request, validation error %v", err),
		)
		return
	}

	c.RespondSuccess(ws.Manage(request.ToToolRequest()))
}

// GetInfo returns the descriptor of one tree path.
func (c *FilesController) GetInfo() {
	path := c.ctx.Query("path")
	if path == "" {
		c.RespondError(http.StatusBadRequest, model.ErrorCodeInvalidRequest, "missing path query parameter")
		return
	}

	descriptor, err := ws.Stat(path)
	if err != nil {
		c.RespondError(http.StatusNotFound, model.ErrorCodeNotFound, err.Error())
		return
	}
	c.RespondSuccess(descriptor)
}

// Search lists tree paths matching a doublestar glob pattern.
func (c *FilesController) Search() {
	pattern := c.ctx.Query("pattern")
	if pattern == "" {
		c.RespondError(http.StatusBadRequest, model.ErrorCodeInvalidRequest, "missing pattern query parameter")
		return
	}

	paths, err := ws.Search(pattern)
	if err != nil {
		c.RespondError(http.StatusBadRequest, model.ErrorCodeInvalidRequest, err.Error())
		return
	}
	if paths == nil {
		paths = []string{}
	}
	c.RespondSuccess(model.SearchResponse{Pattern: pattern, Paths: paths})
}
