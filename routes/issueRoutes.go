package routes

import (
	"citycompass/controllers"
	"citycompass/middlewares"

	"github.com/gin-gonic/gin"
)

// IssueRoutes sets up the public issue and dashboard routes
func IssueRoutes(api *gin.RouterGroup, ic *controllers.IssueController, limiter *middlewares.IssueRateLimiter) {
	issues := api.Group("/issues")
	{
		issues.POST("", limiter.Middleware(), ic.CreateIssue)
		issues.GET("", ic.GetIssues)
		issues.GET("/:id", ic.GetIssue)
	}
	api.GET("/stats", ic.GetStats)
}
