package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/aridlab/labsite/config"
	"github.com/aridlab/labsite/controllers"
	"github.com/aridlab/labsite/middleware"
	"github.com/aridlab/labsite/models"
	"github.com/aridlab/labsite/storage"
	"github.com/aridlab/labsite/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, store storage.Store) *gin.Engine {
	// Load config and set Gin mode from configuration
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
	r.MaxMultipartMemory = 8 << 20

	// Access log goes to its own rolling file; without a path it joins the app log
	accessLog := utils.Logger
	if cfg.GinPath != "" {
		gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
		if err != nil {
			utils.Logger.Warn("gin access log unavailable, using app logger", zap.String("path", cfg.GinPath), zap.Error(err))
		} else {
			accessLog = gl
		}
	}
	r.Use(utils.Ginzap(accessLog, time.RFC3339, true))
	r.Use(utils.RecoveryWithZap(accessLog, true))
	r.Use(middleware.Tracing(nil))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
		// browsers reject credentials with a wildcard origin
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Uploaded files are served from disk only for the local store
	if local, ok := store.(*storage.LocalStore); ok {
		r.Static(cfg.UploadURLPrefix, local.Dir())
	}

	authController := controllers.NewAuthController(db)
	postController := controllers.NewPostController(db, store)
	categoryController := controllers.NewCategoryController(db)
	fileController := controllers.NewFileController(db, store, int64(cfg.MaxUploadMB)<<20)
	teamController := controllers.NewTeamController(db)
	publicationController := controllers.NewPublicationController(db)
	projectController := controllers.NewProjectController(db)
	statsController := controllers.NewStatsController(db)
	siteController := controllers.NewSiteController()

	r.GET("/health", siteController.Health)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	// Public
	api.GET("/site", siteController.GetSite)
	api.GET("/public/posts", postController.ListPublishedPosts)
	api.GET("/public/posts/:slug", postController.GetPublishedPost)
	api.GET("/files", fileController.ListFiles)
	api.GET("/team-members", teamController.ListTeamMembers)
	api.GET("/publications", publicationController.ListPublications)
	api.GET("/projects", projectController.ListProjects)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired())

	protected.GET("/posts", postController.ListPosts)
	protected.POST("/posts", postController.CreatePost)
	protected.GET("/posts/:id", postController.GetPost)
	protected.PUT("/posts/:id", postController.UpdatePost)
	protected.DELETE("/posts/:id", postController.DeletePost)

	protected.GET("/categories", categoryController.ListCategories)
	protected.POST("/categories", categoryController.CreateCategory)

	protected.POST("/files", fileController.UploadFile)
	protected.DELETE("/files/:id", fileController.DeleteFile)
	protected.POST("/upload", fileController.UploadAsset)

	protected.POST("/team-members", teamController.CreateTeamMember)
	protected.POST("/publications", publicationController.CreatePublication)
	protected.POST("/projects", projectController.CreateProject)

	protected.GET("/stats", statsController.GetStats)
	protected.GET("/users", middleware.RequireRole(models.RoleAdmin), authController.ListUsers)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "接口不存在")
			return
		}
		utils.Error(ctx, http.StatusNotFound, 40400, "页面不存在")
	})

	return r
}
