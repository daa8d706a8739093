package app

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"

	"spacedesk/internal/gateway/config"
	"spacedesk/internal/gateway/handler/rpc"
	"spacedesk/internal/gateway/middleware"
	"spacedesk/internal/gateway/server"
	"spacedesk/internal/gateway/service/assistant"
	gatewayworkspace "spacedesk/internal/gateway/service/workspace"
)

type App struct {
	server  *server.Server
	stores  *gatewayStores
	service *gatewayworkspace.Service
	logger  *zap.Logger
}

func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// Dependencies
	stores, err := initStores(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	opts := []gatewayworkspace.Option{gatewayworkspace.WithLogger(logger.Named("workspace"))}
	if cfg.Assistant.Enabled() {
		responder, err := assistant.NewGeminiResponder(ctx, cfg.Assistant.APIKey, cfg.Assistant.Model, logger.Named("assistant"))
		if err != nil {
			_ = stores.Close()
			return nil, fmt.Errorf("failed to initialize assistant: %w", err)
		}
		logger.Info("assistant enabled", zap.String("responder", responder.Name()))
		opts = append(opts, gatewayworkspace.WithAssistant(responder))
	} else {
		logger.Info("assistant disabled: no GEMINI_API_KEY or GOOGLE_API_KEY")
	}
	svc := gatewayworkspace.New(stores.workspace, opts...)

	origins := middleware.NewOriginPolicy(cfg.CORSOrigins)
	spaceHandler := rpc.NewSpaceHandler(svc, logger.Named("rpc"))
	watchHandler := rpc.NewWorkspaceWatchHandler(svc, origins, logger.Named("ws"))

	// Routing & Server
	mux := server.NewMux(spaceHandler, watchHandler, origins)
	srv := server.New(cfg.Port, mux, logger)

	return &App{
		server:  srv,
		stores:  stores,
		service: svc,
		logger:  logger,
	}, nil
}

func (a *App) Service() *gatewayworkspace.Service { return a.service }

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Serve(ln net.Listener) error {
	return a.server.Serve(ln)
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	if cerr := a.stores.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
