package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gatherhq/gather-api/internal/container"
	handlers "github.com/gatherhq/gather-api/internal/interface/http"
	"github.com/gatherhq/gather-api/internal/interface/middleware"
	"github.com/gatherhq/gather-api/pkg/helpers"
)

// EventModule wires the event roster routes. Everything here requires a
// logged-in caller.

type EventModule struct {
	Handler *handlers.EventHandler
	JWT     *helpers.JWTManager
}

func NewEventModule(h *handlers.EventHandler, jwt *helpers.JWTManager) *EventModule {
	return &EventModule{Handler: h, JWT: jwt}
}

func (m *EventModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/events")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)

	// Static paths before the :id routes so gin does not shadow them.
	auth.GET("/organized", m.Handler.Organized)
	auth.GET("/invited", m.Handler.Invited)
	auth.GET("/my-events", m.Handler.MyEvents)
	auth.GET("/feed", m.Handler.Feed)

	auth.POST("", m.Handler.Create)
	auth.GET("/:id", m.Handler.GetOne)
	auth.DELETE("/:id", m.Handler.Delete)
	auth.GET("/:id/participants", m.Handler.Participants)
	auth.POST("/:id/invite", m.Handler.Invite)
	auth.PUT("/:id/status", m.Handler.UpdateStatus)
}
