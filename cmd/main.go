package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"

	"log-query-translator/config"
	_ "log-query-translator/docs"
	"log-query-translator/internal/controller"
	"log-query-translator/internal/elasticsearch"
	"log-query-translator/internal/filestate"
	"log-query-translator/internal/kafka"
	"log-query-translator/internal/llm"
	"log-query-translator/internal/metrics"
	"log-query-translator/internal/pipeline"
	"log-query-translator/internal/prompt"
	"log-query-translator/internal/scheduler"
	"log-query-translator/internal/service"
	"log-query-translator/internal/store"
)

// @title           Log Query Translator API
// @version         1.0
// @description     Translates natural language questions about logs into Elasticsearch DSL queries and repairs queries that failed.

// @BasePath  /
// @schemes   http https

// @tag.name         query
// @tag.description  Question translation and query repair

// @tag.name         fields
// @tag.description  Discovered index fields

// @tag.name         health
// @tag.description  API health check operations

func main() {
	zerolog.DefaultContextLogger = &log.Logger

	app := fx.New(
		fx.NopLogger,
		// Core Dependencies
		fx.Provide(
			NewConfig,
		),
		// Model and pipelines
		fx.Provide(
			llm.NewModel,
			NewInvoker,
			prompt.NewRegistry,
			NewTranslator,
			NewRepairer,
		),
		// Infrastructure Dependencies
		fx.Provide(
			NewGinEngine,
			elasticsearch.NewClient,
			elasticsearch.NewFieldRepository,
			store.NewInMemoryFieldCatalogStore,
			NewFileStateManager,
			kafka.NewEventPublisher,
			service.NewFieldCatalogService,
			service.NewTranslationService,
			controller.NewQueryController,
			controller.NewFieldCatalogController,
		),
		fx.Invoke(
			RegisterAPIRoutes,
			RegisterScheduler,
		),
	)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 15*time.Second) // Timeout for startup
	defer cancelStart()
	if err := app.Start(startCtx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}
	<-app.Done()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 30*time.Second) // Timeout for graceful shutdown
	defer cancelStop()
	log.Info().Msg("Shutting down application...")
	if err := app.Stop(stopCtx); err != nil {
		log.Error().Err(err).Msg("Forced shutdown due to error or timeout")
	}
}

func NewConfig() (*config.Config, error) {
	return config.NewConfig()
}

func NewGinEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(controller.RequestContext())

	// Configure CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func RegisterAPIRoutes(
	lifecycle fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	queryController *controller.QueryController,
	fieldCatalogController *controller.FieldCatalogController,
) {
	controller.RegisterQueryRoutes(router, queryController)
	controller.RegisterFieldCatalogRoutes(router, fieldCatalogController)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Starting HTTP server on port %s", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error().Err(err).Msg("HTTP server ListenAndServe error")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Shutting down HTTP server...")
			return server.Shutdown(ctx)
		},
	})
}

// --- Factory Functions ---

func NewInvoker(model llm.Model, cfg *config.Config) *llm.Invoker {
	return llm.NewInvoker(model, cfg.LLM.Timeout)
}

func NewTranslator(invoker *llm.Invoker, prompts *prompt.Registry) *pipeline.Translator {
	return pipeline.NewTranslator(invoker, prompts, pipeline.WithObserver(metrics.PipelineObserver{}))
}

func NewRepairer(invoker *llm.Invoker, prompts *prompt.Registry) *pipeline.Repairer {
	return pipeline.NewRepairer(invoker, prompts, pipeline.WithObserver(metrics.PipelineObserver{}))
}

func NewFileStateManager(cfg *config.Config) filestate.Manager {
	return filestate.NewManager(cfg.Fields.SnapshotPath)
}

// --- Invoker Functions ---

func RegisterScheduler(lc fx.Lifecycle, cfg *config.Config, catalogSvc service.FieldCatalogService) error {
	_, err := scheduler.NewScheduler(lc, cfg, catalogSvc)
	return err
}
