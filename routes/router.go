package routes

import (
	"net/http"

	"citycompass/config"
	"citycompass/controllers"
	"citycompass/middlewares"
	"citycompass/pkg/resp"
	"citycompass/repository"
	"citycompass/services"
	"citycompass/storage"
	"citycompass/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// NewRouter wires services and controllers on top of store and returns
// the HTTP handler. rdb may be nil, which disables rate limiting.
func NewRouter(cfg *config.Config, store repository.Store, rdb *redis.Client) (*gin.Engine, error) {
	blobs, err := storage.NewDiskStore(cfg.UploadDir, cfg.UploadMaxBytes)
	if err != nil {
		return nil, err
	}

	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	creds := services.NewCredentialStore(store.Departments())
	issues := services.NewIssueService(store, cfg.ListMaxLimit)
	engine := services.NewTransitionEngine(store, cfg.StrictTransitions)

	issueCtrl := controllers.NewIssueController(issues, blobs, cfg.PublicPageSize)
	authCtrl := controllers.NewAuthController(services.NewAuthService(creds, tokens))
	adminCtrl := controllers.NewAdminController(issues, engine, cfg.AdminPageSize)
	limiter := middlewares.NewIssueRateLimiter(rdb, cfg.IssueRateLimit, cfg.IssueRateWindow)

	r := gin.New()
	r.Use(gin.Logger(), resp.Recovery(), middlewares.CORS(cfg.CORSOrigins))
	r.MaxMultipartMemory = cfg.UploadMaxBytes + 1<<20

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.Static("/uploads", blobs.Dir())

	api := r.Group("/api")
	IssueRoutes(api, issueCtrl, limiter)
	AdminRoutes(api, middlewares.NewGate(tokens), authCtrl, adminCtrl)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})
	return r, nil
}
