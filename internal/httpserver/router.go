package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"maturity-dashboard/internal/handler"
	"maturity-dashboard/pkg/rbac"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Connection is satisfied by *mq.Publisher and *mq.Consumer.
type Connection interface {
	IsConnected() bool
}

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	authHandler *handler.AuthHandler,
	projectHandler *handler.ProjectHandler,
	statusHandler *handler.StatusHandler,
	jwtSecret string,
	db Pinger,
	mqConn Connection,
	logger *zap.Logger,
) *Router {
	r := gin.New()
	r.Use(gin.Recovery(), TraceMiddleware(), RequestLogger(logger), MetricsMiddleware())

	RegisterHealth(r, db, mqConn)

	// Public
	r.POST("/login", authHandler.Login)

	// Protected
	authed := r.Group("/")
	authed.Use(AuthMiddleware(jwtSecret))
	{
		authed.GET("/projects", RequirePermission(rbac.PermissionReadProject), projectHandler.ListProjects)
		authed.GET("/projects/:id/timeline", RequirePermission(rbac.PermissionReadTimeline), projectHandler.GetTimeline)
		authed.GET("/projects/:id/alerts", RequirePermission(rbac.PermissionReadAlerts), projectHandler.GetAlerts)
		authed.GET("/projects/:id/alerts/digest", RequirePermission(rbac.PermissionReadAlerts), projectHandler.GetDigest)
		authed.POST("/projects/:id/refresh", RequirePermission(rbac.PermissionRefreshProject), projectHandler.Refresh)
		authed.PATCH("/milestones/:id/status", RequirePermission(rbac.PermissionUpdateMilestone), statusHandler.UpdateMilestone)
		authed.PATCH("/action-plans/:id/status", RequirePermission(rbac.PermissionUpdateActionPlan), statusHandler.UpdateActionPlan)
	}

	return &Router{Engine: r}
}

// RegisterHealth adds liveness, readiness and metrics endpoints. db and
// mqConn may be nil.
func RegisterHealth(r gin.IRoutes, db Pinger, mqConn Connection) {
	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) }
	head := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.GET("/healthz", ok)
	r.HEAD("/healthz", head)
	r.GET("/health", ok)
	r.HEAD("/health", head)

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()

		if db != nil {
			if err := db.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_not_ready", "error": err.Error()})
				return
			}
		}
		if mqConn != nil && !mqConn.IsConnected() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "mq_not_ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
