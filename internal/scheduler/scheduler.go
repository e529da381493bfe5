package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"log-query-translator/config"
	"log-query-translator/internal/service"
)

// NewScheduler refreshes the field catalog on FIELDS_REFRESH_SCHEDULE. It
// schedules nothing unless auto-discovery is on.
func NewScheduler(lc fx.Lifecycle, cfg *config.Config, catalogSvc service.FieldCatalogService) (*cron.Cron, error) {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.DowOptional | cron.Descriptor)
	c := cron.New(cron.WithParser(parser), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	if !cfg.Fields.AutoDiscover {
		log.Info().Msg("Field auto-discovery disabled, catalog refresh not scheduled")
		return c, nil
	}

	schedule := cfg.Fields.RefreshSchedule
	_, err := c.AddFunc(schedule, func() {
		if _, err := catalogSvc.Refresh(context.Background()); err != nil {
			log.Error().Err(err).Msg("Error during scheduled field catalog refresh")
		}
	})
	if err != nil {
		log.Error().Err(err).Str("schedule", schedule).Msg("Failed to add cron job")
		return nil, err
	}
	log.Info().Str("schedule", schedule).Msg("Scheduled field catalog refresh")

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msg("Starting cron scheduler")
			c.Start()
			// Warm the catalog without holding up startup.
			go func() {
				if _, err := catalogSvc.Refresh(context.Background()); err != nil {
					log.Warn().Err(err).Msg("Initial field catalog refresh failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Stopping cron scheduler...")
			stopCtx := c.Stop()
			select {
			case <-stopCtx.Done():
				log.Info().Msg("Cron scheduler stopped gracefully.")
				return nil
			case <-ctx.Done():
				log.Error().Msg("Context cancelled while waiting for cron scheduler to stop.")
				return ctx.Err()
			}
		},
	})

	return c, nil
}
