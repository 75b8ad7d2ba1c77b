package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"persona-llm/internal/metrics"
	"persona-llm/internal/service"
)

// RouterOptions agrupa lo que no es un handler: auth, límite de generación y CORS.
type RouterOptions struct {
	JWT          *service.JWTService
	Limiter      service.RequestLimiter
	AllowOrigins []string
}

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	opts RouterOptions,
	personaH *PersonaHandler,
	chatH *ChatHandler,
	authH *AuthHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares básicos: logging, recovery y CORS.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), corsMiddleware(opts.AllowOrigins))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/questions", personaH.Questions)

	api := r.Group("")
	if opts.JWT.Enabled() {
		api.Use(JWTAuthMiddleware(opts.JWT))
		api.POST("/auth/revoke", authH.Revoke)
	}
	generation := RateLimitMiddleware(opts.Limiter)

	personas := api.Group("/personas")
	personas.GET("", personaH.List)
	personas.GET("/:id", personaH.Get)
	personas.DELETE("/:id", personaH.Delete)
	personas.POST("/synthesize", generation, personaH.Synthesize)
	personas.POST("/import", personaH.Import)
	personas.POST("/:id/export", personaH.Export)

	sessions := api.Group("/sessions")
	sessions.POST("", chatH.CreateSession)
	sessions.GET("/:id", chatH.GetSession)
	sessions.POST("/:id/messages", generation, chatH.PostMessage)
	sessions.POST("/:id/evolve", generation, chatH.Evolve)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", passwordHeader}
	cfg.ExposeHeaders = []string{"Content-Disposition"}
	return cors.New(cfg)
}

// RateLimitMiddleware frena las rutas que llaman al modelo. La clave es el sujeto del JWT o la IP.
func RateLimitMiddleware(limiter service.RequestLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		key := c.ClientIP()
		if claims, ok := GetAuthClaims(c); ok && claims.Subject != "" {
			key = "sub:" + claims.Subject
		}
		if !limiter.Allow(key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
