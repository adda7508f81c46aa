package handlers

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the API on r
func RegisterRoutes(r *gin.Engine, chatHandler *ChatHandler, regulationHandler *RegulationHandler, adminPasswordHash string) {
	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	api := r.Group("/api")
	{
		api.GET("/status", chatHandler.GetStatus)

		// Chat endpoints
		api.GET("/chat/messages", chatHandler.ListMessages)
		api.POST("/chat/messages", chatHandler.SendMessage)
		api.DELETE("/chat/messages", chatHandler.ResetMessages)

		// Regulation endpoints (admin only)
		admin := api.Group("/regulations", AdminAuth(adminPasswordHash))
		admin.GET("", regulationHandler.ListRegulations)
		admin.POST("/upload", regulationHandler.UploadRegulations)
		admin.PUT("/:id", regulationHandler.UpdateRegulation)
		admin.DELETE("/:id", regulationHandler.DeleteRegulation)
	}
}
