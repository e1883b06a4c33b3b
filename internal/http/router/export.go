package router

import (
	"github.com/gin-gonic/gin"

	"github.com/mario1918/testCaseGenie-NG/internal/http/handler"
)

func ExportRouter(router *gin.RouterGroup, handler *handler.ExportHandler) {
	router.POST("/export", handler.Export)
}
