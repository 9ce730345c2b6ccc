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

	"github.com/alibaba/opensandbox/previewd/pkg/project"
	"github.com/alibaba/opensandbox/previewd/pkg/web/model"
)

// ProjectController serves the persistence contract: the whole tree as
// a flat path-to-descriptor map, out and back in.
type ProjectController struct {
	*basicController
}

func NewProjectController(ctx *gin.Context) *ProjectController {
	return &ProjectController{basicController: newBasicController(ctx)}
}

// GetListing lists the immediate entries of one directory, the root by
// default.
func (c *ProjectController) GetListing() {
	path := c.ctx.DefaultQuery("path", "/")
	entries, err := ws.List(path)
	if err != nil {
		c.RespondError(http.StatusNotFound, model.ErrorCodeNotFound, err.Error())
		return
	}
	c.RespondSuccess(model.ListingResponse{Path: path, Entries: entries})
}

// GetSnapshot serializes the current tree.
func (c *ProjectController) GetSnapshot() {
	c.RespondSuccess(ws.Snapshot())
}

// PutSnapshot replaces the tree from a serialized snapshot. External
// storage is expected to return the map exactly as it received it.
func (c *ProjectController) PutSnapshot() {
	var snapshot map[string]*project.Descriptor
	if err := c.bindJSON(&snapshot); err != nil {
		c.RespondError(
			http.StatusBadRequest,
			model.ErrorCodeInvalidRequest,
			fmt.Sprintf("error parsing request, MAYBE invalid body format. %v", err),
		)
		return
	}

	if err := ws.Restore(snapshot); err != nil {
		c.RespondError(
			http.StatusBadRequest,
			model.ErrorCodeInvalidSnapshot,
			fmt.Sprintf("error restoring snapshot. %v", err),
		)
		return
	}
	c.RespondSuccess(nil)
}
