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
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/alibaba/opensandbox/previewd/pkg/log"
	"github.com/alibaba/opensandbox/previewd/pkg/web/model"
)

// The rendering surface is typically served from another origin.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// PreviewController serves the preview binding, the publication push
// channel and the compiled module artifacts.
type PreviewController struct {
	*basicController
}

func NewPreviewController(ctx *gin.Context) *PreviewController {
	return &PreviewController{basicController: newBasicController(ctx)}
}

// GetBinding returns the current import map and entry module URL.
func (c *PreviewController) GetBinding() {
	c.RespondSuccess(ws.Binding())
}

// Watch upgrades to a websocket and streams every publication. The
// first frame is always the current binding.
func (c *PreviewController) Watch() {
	conn, err := upgrader.Upgrade(c.ctx.Writer, c.ctx.Request, nil)
	if err != nil {
		log.Error("preview watch upgrade failed: %v", err)
		return
	}
	ws.Hub().Serve(conn, ws.Binding())
}

// GetArtifact serves one compiled module body. Artifact addresses are
// ephemeral; a miss means the client holds a URL from a superseded
// publication and must refetch the binding.
func (c *PreviewController) GetArtifact() {
	id := strings.TrimSuffix(c.ctx.Param("id"), ".mjs")
	artifact, ok := ws.Artifact(id)
	if !ok {
		c.RespondError(http.StatusNotFound, model.ErrorCodeNotFound, "artifact not found or superseded")
		return
	}
	c.ctx.Header("Cache-Control", "no-store")
	c.ctx.Data(http.StatusOK, "application/javascript; charset=utf-8", []byte(artifact.Code))
}
