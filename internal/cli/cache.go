package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gdpmap/pkg/cache"
	"github.com/matzehuels/gdpmap/pkg/config"
)

func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the cache of downloads, font metrics, layouts and renders",
	}
	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	return cmd
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Cache.Backend == config.CacheNone {
				printInfo("Caching is disabled")
				return nil
			}
			store, err := newCache(ctx, cfg.Cache, false)
			if err != nil {
				return err
			}
			defer store.Close()

			clearer, ok := store.(cache.Clearer)
			if !ok {
				return fmt.Errorf("the %s cache cannot be cleared", cfg.Cache.Backend)
			}
			n, err := clearer.Clear(ctx)
			if err != nil {
				return err
			}
			if n == 0 {
				printInfo("Cache is empty")
				return nil
			}
			printSuccess("Cleared %d cached entries", n)
			printDetail("Backend: %s", cfg.Cache.Backend)
			return nil
		},
	}
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache lives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			switch cfg.Cache.Backend {
			case config.CacheRedis:
				fmt.Fprintln(cmd.OutOrStdout(), cfg.Cache.RedisURL)
			case config.CacheMongo:
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s.%s)\n", cfg.Cache.MongoURI, cfg.Cache.MongoDatabase, cfg.Cache.MongoCollection)
			case config.CacheNone:
				printInfo("Caching is disabled")
			default:
				dir := cfg.Cache.Dir
				if dir == "" {
					if dir, err = cacheDir(); err != nil {
						return fmt.Errorf("get cache dir: %w", err)
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), dir)
			}
			return nil
		},
	}
}
