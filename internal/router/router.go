// Package router assembles the HTTP surface of the service.
package router

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mmynk/shoplist/internal/access"
	"github.com/mmynk/shoplist/internal/auth"
	"github.com/mmynk/shoplist/internal/metrics"
	"github.com/mmynk/shoplist/internal/middleware"
	"github.com/mmynk/shoplist/internal/service"
	"github.com/mmynk/shoplist/internal/storage"
)

// Deps are the collaborators the routes are built from.
type Deps struct {
	Store         storage.Store
	JWTManager    *auth.JWTManager
	Authenticator auth.Authenticator
	Metrics       *metrics.Metrics
	Logger        *slog.Logger
}

// New returns a gin engine serving every route.
func New(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}

	authSvc := service.NewAuthService(d.Authenticator, d.JWTManager, d.Logger)
	listSvc := service.NewListService(d.Store, d.Logger)
	resolver := access.NewResolver(d.Store, d.Store)
	m := d.Metrics

	r := gin.New()
	r.Use(middleware.Recovery(), middleware.RequestLogger(), middleware.Instrument(m))

	r.GET("/healthz", func(c *gin.Context) {
		if err := d.Store.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	user := r.Group("/user")
	user.POST("/register", authSvc.Register)
	user.POST("/login", authSvc.Login)

	member := func() gin.HandlerFunc { return middleware.RequireRole(resolver, access.Member, m) }
	owner := func() gin.HandlerFunc { return middleware.RequireRole(resolver, access.Owner, m) }

	lists := r.Group("/shoppingList", middleware.RequireAuth(d.JWTManager, m))
	lists.POST("", middleware.Bind[service.CreateListRequest](), listSvc.Create)
	lists.GET("", listSvc.List)
	lists.GET("/:id", member(), listSvc.Get)
	lists.DELETE("/:id", owner(), listSvc.Delete)

	lists.POST("/:id/members", middleware.Bind[service.AddMemberRequest](), owner(), listSvc.AddMember)
	lists.DELETE("/:id/members/:idMember", member(), listSvc.RemoveMember)

	lists.POST("/:id/items", middleware.Bind[service.AddItemRequest](), member(), listSvc.AddItem)
	lists.DELETE("/:id/items/:idItem", member(), listSvc.RemoveItem)
	lists.PATCH("/:id/items/:idItem", middleware.Bind[service.UpdateItemStatusRequest](), member(), listSvc.UpdateItem)

	return r
}
