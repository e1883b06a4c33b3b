package router

import (
	"github.com/gin-gonic/gin"

	"github.com/mario1918/testCaseGenie-NG/internal/http/handler"
	"github.com/mario1918/testCaseGenie-NG/internal/service"
)

func SetupRoutes(router *gin.Engine, services *service.Services) {
	router.GET("/health", handler.Health)

	// The browser clients call these at the root, without a version prefix.
	generationHandler := handler.NewGenerationHandler(services.Generation())
	GenerateRouter(router.Group(""), generationHandler)

	exportHandler := handler.NewExportHandler(nil)
	ExportRouter(router.Group(""), exportHandler)

	v1 := router.Group("/api/v1")
	{
		GenerationRouter(v1.Group("/generations"), generationHandler)
	}
}
