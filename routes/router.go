package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/aagaur/studiocms/config"
	"github.com/aagaur/studiocms/controllers"
	"github.com/aagaur/studiocms/media"
	"github.com/aagaur/studiocms/middleware"
	"github.com/aagaur/studiocms/records"
	"github.com/aagaur/studiocms/utils"
)

// Services are the record services the router exposes.
type Services struct {
	Projects *records.Service
	Events   *records.Service
	Team     *records.Service
	Interns  *records.Service
}

// SetupRouter wires routes, middlewares, and controllers.
// mediaDir is served under /media when the local media host is in use.
func SetupRouter(svc Services, limits media.Limits, mediaDir string) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = 64 << 20
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err != nil {
		gl = utils.Logger
	}
	r.Use(utils.Ginzap(gl, time.RFC3339, true))
	r.Use(utils.RecoveryWithZap(gl, true))
	r.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	if mediaDir != "" {
		r.Static("/media", mediaDir)
	}

	r.GET("/", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"message": "studio backend running"})
	})
	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute)
	protect := []gin.HandlerFunc{limiter.Middleware(), middleware.AdminRequired()}

	api := r.Group("/api")

	admin := controllers.NewAdminController()
	adminGroup := api.Group("/admin")
	adminGroup.POST("/login", limiter.Middleware(), admin.Login)
	adminGroup.POST("/logout", guarded(protect, admin.Logout)...)
	adminGroup.GET("/me", guarded(protect, admin.Me)...)

	mount(api.Group("/projects"), controllers.NewRecordController(svc.Projects, limits), protect)
	mount(api.Group("/events"), controllers.NewRecordController(svc.Events, limits), protect)
	mount(api.Group("/team"), controllers.NewRecordController(svc.Team, limits), protect)
	mount(api.Group("/careers/interns"), controllers.NewRecordController(svc.Interns, limits), protect)

	stats := controllers.NewStatsController(svc.Projects, svc.Events, svc.Team, svc.Interns)
	api.GET("/stats", stats.GetStats)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}

// mount registers public reads and protected writes for one collection.
func mount(g *gin.RouterGroup, c *controllers.RecordController, protect []gin.HandlerFunc) {
	g.GET("", c.List)
	g.GET("/:id", c.Get)
	g.POST("", guarded(protect, c.Create)...)
	g.PUT("/:id", guarded(protect, c.Update)...)
	g.DELETE("/:id", guarded(protect, c.Delete)...)
}

func guarded(protect []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(protect)+1)
	return append(append(out, protect...), h)
}

func corsConfig(origins []string) cors.Config {
	cc := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Range", "X-Content-Range"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cc.AllowAllOrigins = true
		cc.AllowCredentials = false
	} else {
		cc.AllowOrigins = origins
	}
	return cc
}
