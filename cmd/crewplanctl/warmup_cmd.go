package main

import (
	"github.com/spf13/cobra"

	"github.com/iota-uz/crewplan/modules/planning/services"
)

func newWarmupCmd(opts *rootOptions) *cobra.Command {
	var (
		tag  string
		days int
	)

	cmd := &cobra.Command{
		Use:   "warmup",
		Short: "Prefetch assignments, functions and projects of crew carrying a tag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := service[services.WarmupService](opts).Warm(cmd.Context(), tag, days)
			if err != nil {
				return classify(err)
			}
			return writeJSON(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().StringVar(&tag, "tag", "", "Crew tag (default: WARMUP_DEFAULT_TAG)")
	cmd.Flags().IntVar(&days, "days", services.DefaultWarmupDays, "Days ahead to warm, clamped to [7, 180]")
	return cmd
}
