package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"log-query-translator/config"
	"log-query-translator/internal/bridge"
	"log-query-translator/internal/controller"
)

// Bridge forwards questions to the translation service for callers that
// cannot reach it directly.
func main() {
	zerolog.DefaultContextLogger = &log.Logger

	app := fx.New(
		fx.NopLogger,
		fx.Provide(
			config.NewConfig,
			bridge.NewClient,
			bridge.NewHandler,
			NewGinEngine,
		),
		fx.Invoke(RegisterRoutes),
	)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStart()
	if err := app.Start(startCtx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start bridge")
	}
	<-app.Done()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStop()
	log.Info().Msg("Shutting down bridge...")
	if err := app.Stop(stopCtx); err != nil {
		log.Error().Err(err).Msg("Forced shutdown due to error or timeout")
	}
}

func NewGinEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(controller.RequestContext())
	return r
}

func RegisterRoutes(lifecycle fx.Lifecycle, router *gin.Engine, cfg *config.Config, h *bridge.Handler) {
	bridge.RegisterRoutes(router, h)

	server := &http.Server{
		Addr:    ":" + cfg.Bridge.Port,
		Handler: router,
	}
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Str("upstream", cfg.Bridge.UpstreamURL).Msgf("Starting bridge on port %s", cfg.Bridge.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error().Err(err).Msg("Bridge ListenAndServe error")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return server.Shutdown(ctx)
		},
	})
}
