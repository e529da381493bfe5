package elasticsearch

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"log-query-translator/config"
)

// NewClient builds the cluster client. It returns nil when no addresses are
// configured; field discovery is then disabled.
func NewClient(lc fx.Lifecycle, cfg *config.Config) (*elasticsearch.Client, error) {
	if len(cfg.Elasticsearch.Addresses) == 0 {
		log.Warn().Msg("Elasticsearch addresses are not configured, field discovery disabled.")
		return nil, nil
	}
	transport := &http.Transport{
		MaxIdleConnsPerHost:   10,
		ResponseHeaderTimeout: time.Second * 10,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		TLSHandshakeTimeout:   5 * time.Second,
	}
	esCfg := elasticsearch.Config{
		Addresses: cfg.Elasticsearch.Addresses,
		Username:  cfg.Elasticsearch.Username,
		Password:  cfg.Elasticsearch.Password,
		Transport: transport,
	}

	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		log.Error().Err(err).Msg("Error creating the Elasticsearch client")
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// An unreachable cluster only disables discovery; it never blocks startup.
			if err := ping(ctx, client); err != nil {
				log.Warn().Err(err).Msg("Elasticsearch not reachable at startup")
			}
			return nil
		},
	})
	return client, nil
}

func ping(ctx context.Context, client *elasticsearch.Client) error {
	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch Info() returned error status: %s", res.Status())
	}
	log.Info().Str("server_info", res.String()).Msg("Elasticsearch connection verified")
	return nil
}
