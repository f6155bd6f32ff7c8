package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"officescheduler/handlers"
)

// RegisterHealthRoute registers the health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
}

// RegisterTeamRoutes registers the team listing.
func RegisterTeamRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/api/teams", hb.ListTeamsHandler)
}

// RegisterSessionRoutes sets up the endpoints of the weekly form session.
func RegisterSessionRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/sessions")
	{
		api.POST("", hb.StartSessionHandler)
		api.GET("/:id", hb.GetSessionHandler)
		api.DELETE("/:id", hb.EndSessionHandler)

		api.PUT("/:id/team", hb.ChangeTeamHandler)
		api.PUT("/:id/staff", hb.SelectStaffHandler)
		api.PUT("/:id/email", hb.SetEmailHandler)
		api.PUT("/:id/target", hb.SetTargetHandler)
		api.PUT("/:id/date", hb.SetDateHandler)
		api.POST("/:id/toggle", hb.ToggleBlockHandler)

		api.POST("/:id/submit", hb.SubmitHandler)
		api.GET("/:id/export.ics", hb.ExportICSHandler)
	}
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r, hb)
	RegisterTeamRoutes(r, hb)
	RegisterSessionRoutes(r, hb)
}
