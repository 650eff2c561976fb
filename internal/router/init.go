package router

import (
	"github.com/gatherhq/gather-api/internal/application"
	"github.com/gatherhq/gather-api/internal/container"
	pginfra "github.com/gatherhq/gather-api/internal/infrastructure/postgres"
	handlers "github.com/gatherhq/gather-api/internal/interface/http"
	"github.com/gatherhq/gather-api/internal/router/modules"
)

// InitModules builds every feature module from the container singletons and
// registers it with the router registry. Called once during startup.
func InitModules(r *Registry) {
	userRepo := pginfra.NewUserRepository(container.GetPGPool())
	eventRepo := pginfra.NewEventRepository(container.GetPGPool())

	userService := application.NewUserService(
		userRepo,
		container.GetJWT(),
		container.GetGCS(),
		container.GetRedis(),
		container.GetLogger(),
		container.GetES(),
		container.GetRabbitPub(),
		container.GetConfig(),
	)
	rosterService := application.NewRosterService(
		eventRepo,
		userRepo,
		container.GetRabbitPub(),
		container.GetLogger(),
		container.GetConfig(),
	)

	userHandler := handlers.NewUserHandler(userService, container.GetLogger())
	eventHandler := handlers.NewEventHandler(rosterService, container.GetLogger())

	r.Add(modules.NewUserModule(userHandler, container.GetJWT()))
	r.Add(modules.NewEventModule(eventHandler, container.GetJWT()))
	if container.GetConfig() != nil && container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
