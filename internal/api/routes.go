package api

import (
	"net/http"

	"paper_summaries_go_backend/internal/services"
	"paper_summaries_go_backend/internal/wsocket"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, paperService *services.PaperService, wsHandler *wsocket.Handler) {
	api := r.Group("/api")
	{
		api.GET("/health", healthHandler)
		api.GET("/papers", listPapersHandler(paperService))
		api.GET("/papers/:id", getPaperHandler(paperService))
		api.POST("/papers", createPaperHandler(paperService))
		api.PUT("/papers/:id", updatePaperHandler(paperService))
		api.DELETE("/papers/:id", deletePaperHandler(paperService))
		api.GET("/papers/:id/bibtex", paperBibTeXHandler(paperService))
		api.GET("/papers/:id/pdf", paperPDFHandler(paperService))
		if wsHandler != nil {
			api.GET("/events", func(c *gin.Context) {
				wsHandler.HandleWebSocket(c.Writer, c.Request)
			})
		}
	}
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
