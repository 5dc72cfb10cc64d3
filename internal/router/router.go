package router

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"flamewars/internal/handlers"
	"flamewars/internal/middleware"
)

type Deps struct {
	Comments    *handlers.CommentHandler
	Health      *handlers.HealthHandler
	Auth        middleware.Authenticator
	Metrics     http.Handler
	CORSOrigins []string
	Logger      *zap.Logger
}

// New builds the engine. Page urls travel URL-escaped inside one path
// segment, so routing runs on the raw path.
func New(d Deps) *gin.Engine {
	r := gin.New()
	r.UseRawPath = true
	r.UnescapePathValues = true

	r.Use(gin.Recovery())
	if d.Logger != nil {
		r.Use(middleware.RequestLogger(d.Logger.Named("http")))
	}
	r.Use(cors.New(corsConfig(d.CORSOrigins)))

	RegisterRoutes(r, d)
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Accept", "Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length", "Location"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	if d.Health != nil {
		r.GET("/health", d.Health.Health) // 健康检查
	}
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics))
	}

	r.GET("/comment-count", d.Comments.Count) // 批量评论数

	comments := r.Group("/comments")
	comments.Use(middleware.LoadCaller(d.Auth))
	{
		comments.GET("/:url", d.Comments.List)               // 评论树
		comments.POST("/:url", d.Comments.Add)               // 发表评论
		comments.PUT("/:url/:comment", d.Comments.Edit)      // 编辑评论
		comments.DELETE("/:url/:comment", d.Comments.Delete) // 软删除评论
	}
}
