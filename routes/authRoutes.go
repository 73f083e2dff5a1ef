package routes

import (
	"citycompass/controllers"
	"citycompass/middlewares"

	"github.com/gin-gonic/gin"
)

// AdminRoutes sets up department login and the token-protected routes
func AdminRoutes(api *gin.RouterGroup, gate *middlewares.Gate, auth *controllers.AuthController, admin *controllers.AdminController) {
	a := api.Group("/admin")
	a.POST("/login", auth.Login)

	protected := a.Group("", gate.AuthMiddleware())
	{
		protected.GET("/me", auth.GetMe)
		protected.GET("/issues", admin.ListIssues)
		protected.PUT("/issues/:id/status", admin.UpdateStatus)
		protected.POST("/issues/:id/reopen", admin.Reopen)
		protected.GET("/issues/:id/updates", admin.GetUpdates)
	}
}
