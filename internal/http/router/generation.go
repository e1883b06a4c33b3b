package router

import (
	"github.com/gin-gonic/gin"

	"github.com/mario1918/testCaseGenie-NG/internal/http/handler"
)

func GenerateRouter(router *gin.RouterGroup, handler *handler.GenerationHandler) {
	router.POST("/generate", handler.Generate)
}

func GenerationRouter(router *gin.RouterGroup, handler *handler.GenerationHandler) {
	router.GET("", handler.ListRuns)
}
