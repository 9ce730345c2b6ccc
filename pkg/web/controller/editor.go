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

// EditorController serves the editor protocol.
type EditorController struct {
	*basicController
}

func NewEditorController(ctx *gin.Context) *EditorController {
	return &EditorController{basicController: newBasicController(ctx)}
}

// Apply runs one editor command. Protocol failures ("Error: ..."
// results) are successful API calls; only malformed requests get an
// HTTP error.
func (c *EditorController) Apply() {
	var request model.EditRequest
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

	result := ws.Edit(request.ToToolRequest())
	c.RespondSuccess(model.EditResponse{Result: result})
}
