package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/noah-isme/phonebook-api/internal/middleware"
	"github.com/noah-isme/phonebook-api/internal/models"
)

type pinger interface {
	PingContext(ctx context.Context) error
}

type tokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// RouterConfig selects which optional routes are mounted.
type RouterConfig struct {
	APIPrefix   string
	AuthEnabled bool
	Docs        bool
	Metrics     bool
}

// Handlers bundles everything RegisterRoutes mounts. Auth and Tokens are only needed with auth enabled.
type Handlers struct {
	Contacts *ContactHandler
	Zodiac   *ZodiacHandler
	Auth     *AuthHandler
	Metrics  *MetricsHandler
	Tokens   tokenValidator
	DB       pinger
}

// RegisterRoutes mounts ops endpoints at the root and the phone book API under cfg.APIPrefix.
func RegisterRoutes(r *gin.Engine, cfg RouterConfig, h Handlers) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", Ready(h.DB))
	if cfg.Metrics {
		r.GET("/metrics", h.Metrics.Prometheus)
	}
	if cfg.Docs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.WithResponseMeta())

	var guards []gin.HandlerFunc
	if cfg.AuthEnabled {
		api.POST("/auth/login", h.Auth.Login)
		guards = []gin.HandlerFunc{middleware.JWT(h.Tokens), middleware.RequireRoles(models.RoleAdmin)}
	}
	write := func(final gin.HandlerFunc) []gin.HandlerFunc {
		chain := make([]gin.HandlerFunc, 0, len(guards)+1)
		chain = append(chain, guards...)
		return append(chain, final)
	}

	contacts := api.Group("/contacts")
	contacts.GET("", h.Contacts.List)
	contacts.GET("/export", h.Contacts.Export)
	contacts.GET("/:id", h.Contacts.Get)
	contacts.POST("", write(h.Contacts.Create)...)
	contacts.PUT("/:id", write(h.Contacts.Update)...)
	contacts.DELETE("/:id", write(h.Contacts.Delete)...)

	api.GET("/zodiac", h.Zodiac.Classify)
	if cfg.Metrics {
		api.GET("/ops/metrics", h.Metrics.Snapshot)
	}
}

// Ready reports whether the database answers a ping.
func Ready(db pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ready"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
