package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/teamloop/teamloop-server/internal/api"
	"github.com/teamloop/teamloop-server/internal/config"
	"github.com/teamloop/teamloop-server/internal/logger"
	"github.com/teamloop/teamloop-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	handler *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.handler.Close()
	return err
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	authService := do.MustInvoke[*service.AuthService](i)
	friendService := do.MustInvoke[*service.FriendService](i)
	inviteService := do.MustInvoke[*service.InviteService](i)
	memberService := do.MustInvoke[*service.MemberService](i)
	projectService := do.MustInvoke[*service.ProjectService](i)
	dmService := do.MustInvoke[*service.DMService](i)

	handler := api.NewServer(
		storeHandle.Store,
		authService,
		friendService,
		inviteService,
		memberService,
		projectService,
		dmService,
		log.Logger,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr, "public_url", cfg.Server.PublicURL)

	return &HTTPServerHandle{Server: srv, handler: handler}, nil
}
