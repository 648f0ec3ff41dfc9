// Package di provides dependency injection configuration for the TeamLoop server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/teamloop/teamloop-server/internal/auth"
	"github.com/teamloop/teamloop-server/internal/config"
	"github.com/teamloop/teamloop-server/internal/di/providers"
	"github.com/teamloop/teamloop-server/internal/logger"
	"github.com/teamloop/teamloop-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideSessionService)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideFriendService)
	do.Provide(injector, providers.ProvideInviteService)
	do.Provide(injector, providers.ProvideMemberService)
	do.Provide(injector, providers.ProvideProjectService)
	do.Provide(injector, providers.ProvideDMService)

	// Workers
	do.Provide(injector, providers.ProvideSessionCleanupJob)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services. This triggers lazy initialization
// of the full dependency graph.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)

	// Business services
	_ = do.MustInvoke[*service.SessionService](injector)
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.FriendService](injector)
	_ = do.MustInvoke[*service.InviteService](injector)
	_ = do.MustInvoke[*service.MemberService](injector)
	_ = do.MustInvoke[*service.ProjectService](injector)
	_ = do.MustInvoke[*service.DMService](injector)

	// Workers
	_ = do.MustInvoke[*providers.SessionCleanupJob](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
