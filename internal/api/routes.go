package api

import "github.com/gin-gonic/gin"

// Config holds the server settings the handlers need.
type Config struct {
	MaxUploadSize int64
	DeviceScale   float64
	BatchWorkers  int
}

func RegisterRoutes(r *gin.Engine, config *Config) {
	api := r.Group("/api")
	{
		api.GET("/health", health)
		api.GET("/sample", sampleHandler)
		api.POST("/composite", func(c *gin.Context) { compositeHandler(c, config) })
		api.POST("/watermark", func(c *gin.Context) { watermarkHandler(c, config) })
		api.POST("/preview", func(c *gin.Context) { previewHandler(c, config) })
		api.POST("/batch", func(c *gin.Context) { batchHandler(c, config) })
	}
}
