package app

import (
	"net/http"

	"buildhub/internal/config"
	"buildhub/internal/logger"
	"buildhub/internal/middleware"
	"buildhub/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// Handler builds the full HTTP handler for the container, CORS included
func (c *Container) Handler(log *zap.Logger) http.Handler {
	r := NewRouter(c.Config, log, c.Services, websocket.NewServer(c.Hub, allowedOrigins(c.Config)), c.HealthChecks())
	return WithCORS(c.Config, r)
}

// WithCORS wraps the engine so preflight requests never reach gin
func WithCORS(cfg *config.Config, h http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowCredentials: true,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept", "X-Requested-With"},
		MaxAge:           600,
	}).Handler(h)
}

func allowedOrigins(cfg *config.Config) []string {
	origins := []string{cfg.ClientURL}
	for _, o := range cfg.CORSOrigins {
		if o != cfg.ClientURL {
			origins = append(origins, o)
		}
	}
	return origins
}

// NewRouter registers every route. ws may be nil, in which case the live
// comment stream is not served.
func NewRouter(cfg *config.Config, log *zap.Logger, svc Services, ws *websocket.Server, checks map[string]HealthCheck) *gin.Engine {
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// X-Forwarded-For is only honoured from TrustedProxies
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Error("invalid trusted proxies, trusting none", zap.Strings("proxies", cfg.TrustedProxies), zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery())
	r.Use(logger.GinMiddleware(log))
	r.Use(middleware.SecureHeaders())

	// Rate limiting applies to the endpoints anonymous visitors can write to
	var limit gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if cfg.RateLimitEnabled {
		limit = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware()
		log.Info("rate limiting enabled", zap.Int("rps", cfg.RateLimitRPS), zap.Int("burst", cfg.RateLimitBurst))
	}

	authHandler := NewAuthHandler(svc.Auth, cfg.JWTSecret)
	postHandler := NewPostHandler(svc.Post)
	commentHandler := NewCommentHandler(svc.Comment, svc.Reaction)
	projectHandler := NewProjectHandler(svc.Project, svc.Diary)
	newsletterHandler := NewNewsletterHandler(svc.Newsletter)
	ruleHandler := NewModerationRuleHandler(svc.ModerationRule)
	userHandler := NewUserHandler(svc.Auth, svc.Stats)
	siteHandler := NewSiteHandler(svc.Search, svc.Sitemap, checks)

	requireAuth := authHandler.AuthMiddleware()
	optionalAuth := authHandler.OptionalAuthMiddleware()
	staffOnly := authHandler.StaffMiddleware()

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", limit, authHandler.Register)
			auth.POST("/login", limit, authHandler.Login)
			auth.GET("/me", requireAuth, authHandler.GetMe)
		}

		// Public GETs take the slug in :id, staff writes take the ID
		posts := api.Group("/posts")
		{
			posts.GET("", postHandler.ListPosts)
			posts.GET("/popular", postHandler.PopularPosts)
			posts.GET("/:id", optionalAuth, postHandler.GetPost)
			posts.GET("/:id/comments", commentHandler.GetCommentTree)
			posts.GET("/:id/comments/count", commentHandler.GetCommentCount)

			staff := posts.Group("", requireAuth, staffOnly)
			{
				staff.POST("", postHandler.CreatePost)
				staff.PUT("/:id", postHandler.UpdatePost)
				staff.DELETE("/:id", postHandler.DeletePost)
				staff.POST("/:id/publish", postHandler.PublishPost)
				staff.POST("/:id/unpublish", postHandler.UnpublishPost)
				staff.POST("/:id/cover", postHandler.UploadCover)
			}
		}

		api.GET("/categories", postHandler.ListCategories)
		api.POST("/categories", requireAuth, staffOnly, postHandler.CreateCategory)
		api.GET("/tags", postHandler.ListTags)
		api.POST("/tags", requireAuth, staffOnly, postHandler.CreateTag)

		comments := api.Group("/comments")
		{
			comments.POST("", limit, optionalAuth, commentHandler.CreateComment)
			comments.GET("/:id", optionalAuth, commentHandler.GetComment)
			comments.PUT("/:id", requireAuth, commentHandler.UpdateComment)
			comments.DELETE("/:id", requireAuth, commentHandler.DeleteComment)
			comments.POST("/:id/react", limit, optionalAuth, commentHandler.React)
		}

		projects := api.Group("/projects")
		{
			projects.GET("", projectHandler.ListProjects)
			projects.GET("/:id", optionalAuth, projectHandler.GetProject)
			projects.GET("/:id/diary", requireAuth, projectHandler.ListDiary)

			staff := projects.Group("", requireAuth, staffOnly)
			{
				staff.POST("", projectHandler.CreateProject)
				staff.PUT("/:id", projectHandler.UpdateProject)
				staff.DELETE("/:id", projectHandler.DeleteProject)
				staff.POST("/:id/images", projectHandler.AddImage)
				staff.POST("/:id/diary", projectHandler.CreateDiaryEntry)
			}
		}

		diary := api.Group("/diary", requireAuth, staffOnly)
		{
			diary.PUT("/:id", projectHandler.UpdateDiaryEntry)
			diary.DELETE("/:id", projectHandler.DeleteDiaryEntry)
		}

		api.GET("/dashboard", requireAuth, projectHandler.Dashboard)

		newsletter := api.Group("/newsletter")
		{
			newsletter.POST("/subscribe", limit, newsletterHandler.Subscribe)
			newsletter.GET("/confirm", newsletterHandler.Confirm)
			newsletter.GET("/unsubscribe", newsletterHandler.Unsubscribe)
		}

		api.GET("/search", siteHandler.Search)

		admin := api.Group("/admin", requireAuth, staffOnly)
		{
			admin.GET("/comments", commentHandler.ListForModeration)
			admin.POST("/comments/bulk", commentHandler.BulkModerate)
			admin.POST("/comments/rescore", commentHandler.Rescore)
			admin.POST("/comments/:id/moderate", commentHandler.Moderate)

			admin.GET("/moderation-rules", ruleHandler.ListRules)
			admin.POST("/moderation-rules", ruleHandler.CreateRule)
			admin.POST("/moderation-rules/preview", ruleHandler.Preview)
			admin.GET("/moderation-rules/:id", ruleHandler.GetRule)
			admin.PUT("/moderation-rules/:id", ruleHandler.UpdateRule)
			admin.DELETE("/moderation-rules/:id", ruleHandler.DeleteRule)

			admin.GET("/newsletters", newsletterHandler.ListNewsletters)
			admin.POST("/newsletters", newsletterHandler.CreateNewsletter)
			admin.GET("/newsletters/:id", newsletterHandler.GetNewsletter)
			admin.PUT("/newsletters/:id", newsletterHandler.UpdateNewsletter)
			admin.POST("/newsletters/:id/send", newsletterHandler.SendNewsletter)

			admin.GET("/posts", postHandler.ListAllPosts)
			admin.GET("/projects", projectHandler.ListAllProjects)
			admin.GET("/stats", userHandler.GetStats)

			owner := admin.Group("/users", authHandler.AdminMiddleware())
			{
				owner.GET("", userHandler.GetAllUsers)
				owner.PUT("/:id/role", userHandler.UpdateUserRole)
			}
		}
	}

	if ws != nil {
		r.GET("/ws/posts/:id", func(c *gin.Context) {
			ws.ServeRoom(c.Writer, c.Request, c.Param("id"))
		})
	}

	r.GET("/sitemap.xml", siteHandler.Sitemap)
	r.GET("/health", siteHandler.Health)

	return r
}
