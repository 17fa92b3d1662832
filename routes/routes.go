package routes

import (
	"github.com/gin-gonic/gin"

	config "github.com/phillip/events-console-go/config"
	controllers "github.com/phillip/events-console-go/controllers"
	middleware "github.com/phillip/events-console-go/middleware"
)

func SetupRoutes(r *gin.Engine, cfg *config.Config) {
	auth := middleware.AuthMiddleware(cfg)

	// Events
	events := r.Group("/events")
	events.Use(auth)
	{
		events.POST("", controllers.CreateEvent(cfg))
		events.GET("", controllers.ListEvents(cfg))
		events.GET("/:id", controllers.GetEvent(cfg))
		events.PATCH("/:id", controllers.UpdateEvent(cfg))
		events.DELETE("/:id", controllers.DeleteEvent(cfg))
		events.DELETE("/:id/images/:index", controllers.DeleteEventImage(cfg))
	}
}
