package main

import (
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"example.com/timeline/internal/api"
	"example.com/timeline/internal/bootstrap"
	"example.com/timeline/internal/events"
	"example.com/timeline/internal/render"
	"example.com/timeline/internal/timeline"
)

func newWeekCmd(c *cli) *cobra.Command {
	var (
		connections  []string
		start        string
		end          string
		activityType string
		units        string
	)

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Print the weekly timeline with joint sessions highlighted.",
		Long: `Fetch the signed-in account's timeline and each connection's timeline, bucket the
activities by weekday and link activities performed together.

Without --end the window is the Monday to Sunday week containing --start, which
defaults to today.`,
		Example: "  timelinectl week --connection bob --connection carol --start 2025-03-17",
		RunE: func(cmd *cobra.Command, _ []string) error {
			values := url.Values{}
			for _, conn := range connections {
				values.Add(timeline.ParamConnections, conn)
			}
			if start != "" {
				values.Set(timeline.ParamStartDate, start)
			}
			if end != "" {
				values.Set(timeline.ParamEndDate, end)
			}
			if activityType != "" {
				values.Set(api.ParamActivityType, activityType)
			}

			q, err := api.ParseQuery(values, api.Limits{MaxConnections: c.cfg.MaxConnections, MaxWindow: c.cfg.MaxWindow}, c.now())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			client, err := c.upstream(ctx)
			if err != nil {
				return err
			}
			service := bootstrap.NewService(c.cfg, client, events.NoopPublisher{}, c.logger)

			view, err := service.Weekly(ctx, q)
			if err != nil {
				return err
			}
			return render.WriteWeekly(cmd.OutOrStdout(), view, render.Options{
				UseColors: !c.noColor,
				Units:     strings.ToLower(units),
			})
		},
	}

	cmd.Flags().StringArrayVarP(&connections, "connection", "c", nil, "connection display name (repeatable)")
	cmd.Flags().StringVar(&start, "start", "", "first date of the window (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "last date of the window (YYYY-MM-DD)")
	cmd.Flags().StringVar(&activityType, "activity-type", "", "only include this activity type in your own timeline")
	cmd.Flags().StringVar(&units, "units", render.UnitsMetric, "distance units: metric or statute_us")
	_ = cmd.MarkFlagRequired("connection")
	return cmd
}
