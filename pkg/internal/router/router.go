// Package router 把 handle 包中的处理器绑定到 gin 路由组.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/docchat/pkg/internal/handle"
)

// Register 在 group 上注册全部业务路由.
// 同一组路由会分别挂载在根路径与 /api 下：
//
//	POST   /upload                  -> UploadDocument
//	GET    /documents               -> ListDocuments
//	DELETE /document/:id            -> DeleteDocument
//	PATCH  /document/:id/embedding  -> SetEmbedding
//	GET    /document/:id/queries    -> ListQueries
//	POST   /query/log               -> LogQuery
//	POST   /ask                     -> Ask
func Register(group *gin.RouterGroup) {
	RegisterDocumentRoutes(group)
	RegisterQueryRoutes(group)
	RegisterHealthCheckRoute(group)
	RegisterSchedulerRoutes(group)
}

// RegisterDocumentRoutes 注册文档上传与管理路由.
func RegisterDocumentRoutes(g *gin.RouterGroup) {
	g.POST("/upload", handle.UploadDocument)
	g.GET("/documents", handle.ListDocuments)

	doc := g.Group("/document/:id")
	{
		doc.DELETE("", handle.DeleteDocument)
		doc.PATCH("/embedding", handle.SetEmbedding)
		doc.GET("/queries", handle.ListQueries)
	}
}

// RegisterQueryRoutes 注册查询日志与问答路由.
func RegisterQueryRoutes(g *gin.RouterGroup) {
	g.POST("/query/log", handle.LogQuery)
	g.POST("/ask", handle.Ask)
}
