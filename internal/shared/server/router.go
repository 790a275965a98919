package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AmruthSrivatsan/BLOOD-TEST-ANALYSIS/internal/account"
	googleauth "github.com/AmruthSrivatsan/BLOOD-TEST-ANALYSIS/internal/auth"
	"github.com/AmruthSrivatsan/BLOOD-TEST-ANALYSIS/internal/reports"
	"github.com/AmruthSrivatsan/BLOOD-TEST-ANALYSIS/internal/services/health"
	"github.com/AmruthSrivatsan/BLOOD-TEST-ANALYSIS/internal/shared/config"
	"github.com/AmruthSrivatsan/BLOOD-TEST-ANALYSIS/internal/shared/metrics"
	"github.com/AmruthSrivatsan/BLOOD-TEST-ANALYSIS/internal/shared/server/middleware"
	"github.com/AmruthSrivatsan/BLOOD-TEST-ANALYSIS/internal/shared/server/respond"
	"github.com/AmruthSrivatsan/BLOOD-TEST-ANALYSIS/internal/users"
)

// RouterDeps carries the handlers the router wires up.
type RouterDeps struct {
	Config         config.Config
	Health         *health.Service
	ReportsHandler *reports.Handler
	UsersHandler   *users.Handler
	AccountHandler *account.Handler
	GoogleAuth     *googleauth.GoogleService
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Config.Env),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(uploadRateLimit()))

	api.GET("/health", func(c *gin.Context) {
		if deps.Health != nil {
			respond.JSON(c, http.StatusOK, deps.Health.Status(c.Request.Context()))
			return
		}
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.ReportsHandler != nil {
		deps.ReportsHandler.RegisterRoutes(api)
	}
	if deps.UsersHandler != nil {
		deps.UsersHandler.RegisterRoutes(api)
	}
	if deps.AccountHandler != nil {
		deps.AccountHandler.RegisterRoutes(api)
	}

	return r
}

// uploadRateLimit throttles report submission; reads stay unlimited.
func uploadRateLimit() middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			"UPLOAD": {Rate: 0.5, Burst: 5},
		},
		GroupFor: func(c *gin.Context) string {
			if c.Request.Method == http.MethodPost && strings.HasPrefix(c.Request.URL.Path, "/api/v1/reports") {
				return "UPLOAD"
			}
			return ""
		},
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
