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

package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alibaba/opensandbox/previewd/pkg/log"
	"github.com/alibaba/opensandbox/previewd/pkg/web/controller"
	"github.com/alibaba/opensandbox/previewd/pkg/web/model"
)

// NewRouter builds a Gin engine with all previewd routes.
func NewRouter(accessToken string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logMiddleware(), accessTokenMiddleware(accessToken))

	r.GET("/ping", controller.PingHandler)

	editor := r.Group("/editor")
	{
		editor.POST("", withEditor(func(c *controller.EditorController) { c.Apply() }))
	}

	files := r.Group("/files")
	{
		files.POST("", withFiles(func(c *controller.FilesController) { c.Apply() }))
		files.GET("/info", withFiles(func(c *controller.FilesController) { c.GetInfo() }))
		files.GET("/search", withFiles(func(c *controller.FilesController) { c.Search() }))
	}

	project := r.Group("/project")
	{
		project.GET("", withProject(func(c *controller.ProjectController) { c.GetListing() }))
		project.GET("/snapshot", withProject(func(c *controller.ProjectController) { c.GetSnapshot() }))
		project.PUT("/snapshot", withProject(func(c *controller.ProjectController) { c.PutSnapshot() }))
	}

	previews := r.Group("/preview")
	{
		previews.GET("", withPreview(func(c *controller.PreviewController) { c.GetBinding() }))
		previews.GET("/watch", withPreview(func(c *controller.PreviewController) { c.Watch() }))
	}

	r.GET("/artifacts/:id", withPreview(func(c *controller.PreviewController) { c.GetArtifact() }))

	metric := r.Group("/metrics")
	{
		metric.GET("", withMetric(func(c *controller.MetricController) { c.GetMetrics() }))
		metric.GET("/watch", withMetric(func(c *controller.MetricController) { c.WatchMetrics() }))
	}

	return r
}

func withEditor(fn func(*controller.EditorController)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		fn(controller.NewEditorController(ctx))
	}
}

func withFiles(fn func(*controller.FilesController)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		fn(controller.NewFilesController(ctx))
	}
}

func withProject(fn func(*controller.ProjectController)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		fn(controller.NewProjectController(ctx))
	}
}

func withPreview(fn func(*controller.PreviewController)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		fn(controller.NewPreviewController(ctx))
	}
}

func withMetric(fn func(*controller.MetricController)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		fn(controller.NewMetricController(ctx))
	}
}

func accessTokenMiddleware(token string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if token == "" {
			ctx.Next()
			return
		}

		requestedToken := ctx.GetHeader(model.ApiAccessTokenHeader)
		if requestedToken == "" || requestedToken != token {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, map[string]any{
				"error": "Unauthorized: invalid or missing header " + model.ApiAccessTokenHeader,
			})
			return
		}

		ctx.Next()
	}
}

func logMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		log.Info("Requested: %v - %v", ctx.Request.Method, ctx.Request.URL.String())
		ctx.Next()
	}
}
