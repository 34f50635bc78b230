package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"roundel.dev/transit"
	"roundel.dev/transit/config"
	"roundel.dev/transit/feedcache"
	"roundel.dev/transit/model"
	"roundel.dev/transit/parse"
)

var rootCmd = &cobra.Command{
	Use:          "transit",
	Short:        "RAPTOR journey planner",
	Long:         "Plans public transit journeys over a GTFS feed",
	SilenceUsage: true,
}

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(rematchCmd)
}

func main() {
	// A .env file may carry TRANSIT_FEED_URL; missing is fine.
	godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	paths := []string{"transit.yml", "transit.yaml"}
	if configPath != "" {
		paths = []string{configPath}
	}

	cfg, err := config.Load(paths...)
	if err != nil {
		return nil, err
	}

	if cfg.Feed.URL == "" && cfg.Feed.Path == "" {
		cfg.Feed.URL = os.Getenv("TRANSIT_FEED_URL")
	}

	return cfg, nil
}

func loadEngine() (*transit.Engine, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	logger.SetLevel(level)

	feed, err := loadFeed(cfg, logger)
	if err != nil {
		return nil, err
	}

	return transit.New(feed, transit.Options{
		MinInterchange: cfg.Planner.MinInterchange,
		MaxRounds:      cfg.Planner.MaxRounds,
		MaxSearchDays:  cfg.Planner.MaxSearchDays,
		Logger:         logger,
	})
}

func loadFeed(cfg *config.Config, logger *logrus.Logger) (feed *model.Feed, err error) {
	if cfg.Feed.Path != "" {
		buf, err := os.ReadFile(cfg.Feed.Path)
		if err != nil {
			return nil, fmt.Errorf("reading feed: %w", err)
		}
		return parse.ParseStatic(buf)
	}

	if cfg.Feed.URL == "" {
		return nil, fmt.Errorf("feed.path or feed.url is required")
	}

	var cache feedcache.Storage
	switch cfg.Cache.Driver {
	case "memory":
		cache = feedcache.NewMemory()
	default:
		cache, err = feedcache.NewSQL(cfg.Cache.Driver, cfg.Cache.DSN)
		if err != nil {
			return nil, err
		}
	}

	manager := transit.NewManager(cache)
	manager.Logger = logger

	return manager.LoadFeed(context.Background(), cfg.Feed.URL, cfg.Feed.Headers)
}
