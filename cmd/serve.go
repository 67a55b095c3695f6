package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"flipnews/internal/api"
	"flipnews/internal/cache"
	"flipnews/internal/config"
	"flipnews/internal/poller"
	"flipnews/internal/proxy"
	"flipnews/internal/upstream"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var envFiles []string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the news proxy",
		RunE: func(cmd *cobra.Command, args []string) error {
			config.LoadDotEnv(envFiles...)
			cfg := config.Load()
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			return runServe(cfg)
		},
	}
	cmd.Flags().StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load (default .env)")
	cmd.Flags().IntVar(&port, "port", 0, "port to listen on (overrides PORT)")
	return cmd
}

func runServe(cfg *config.Config) error {
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	fetcher, err := newFetcher(cfg)
	if err != nil {
		return err
	}

	if source, ok := fetcher.(*upstream.FeedSource); ok && cfg.FeedPollInterval > 0 {
		feedPoller := poller.New(source, cfg.FeedPollInterval)
		feedPoller.Start()
		defer feedPoller.Stop()
	}

	service := proxy.NewService(fetcher, cfg.NewsAPIToken)
	server := api.NewServer(service, cfg)

	log.Printf("Starting news proxy on port %d", cfg.Port)
	log.Printf("Upstream: %s", cfg.Upstream)
	if !service.Configured() {
		log.Printf("Warning: no API token configured, /api/news/all will answer 500")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.StartWithContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server: %w", err)
	}
	log.Println("Server stopped")
	return nil
}

func newFetcher(cfg *config.Config) (upstream.Fetcher, error) {
	switch cfg.Upstream {
	case config.UpstreamTheNewsAPI:
		return upstream.NewTheNewsAPI(cfg.NewsAPIURL, cfg.UpstreamTimeout), nil
	case config.UpstreamFeeds:
		log.Printf("Serving %d feed categories, snapshot TTL %v", len(cfg.Feeds), cfg.FeedCacheTTL)
		return upstream.NewFeedSource(cfg.Feeds, cache.NewManager(cfg.FeedCacheTTL)), nil
	}
	return nil, fmt.Errorf("unknown upstream %q (want %s or %s)", cfg.Upstream, config.UpstreamTheNewsAPI, config.UpstreamFeeds)
}
