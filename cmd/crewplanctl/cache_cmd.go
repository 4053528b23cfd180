package main

import (
	"github.com/spf13/cobra"

	"github.com/iota-uz/crewplan/modules/planning/services"
)

func newCacheCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the response cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Print entry count, expired entries and total size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := service[services.CacheService](opts).Stats(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), stats)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "prune",
		Short: "Delete entries older than twice the TTL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := service[services.CacheService](opts).Prune(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]int{"deleted": n})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every cache entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := service[services.CacheService](opts).Clear(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]int{"deleted": n})
		},
	})
	return cmd
}
