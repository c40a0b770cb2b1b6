package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"example.com/timeline/internal/bootstrap"
	"example.com/timeline/internal/config"
	"example.com/timeline/internal/connect"
	"example.com/timeline/internal/logger"
)

// cli carries state shared by every subcommand once the root has loaded configuration.
type cli struct {
	cfg     config.Config
	logger  zerolog.Logger
	noColor bool
	now     func() time.Time
}

func newRootCmd() *cobra.Command {
	c := &cli{now: func() time.Time { return time.Now().UTC() }}

	root := &cobra.Command{
		Use:           "timelinectl",
		Short:         "Inspect joint activity timelines from the terminal.",
		Long:          `timelinectl aggregates the timelines of the signed-in account and its connections and highlights activities performed together.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.logger = logger.NewWithWriter(cmd.ErrOrStderr(), "timelinectl", cfg.LogLevel)
			return nil
		},
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}
	root.PersistentFlags().BoolVar(&c.noColor, "no-color", false, "disable colored output")

	root.AddCommand(newWeekCmd(c), newConnectionsCmd(c), newTokenCmd(c))
	return root
}

// upstream opens the token store and returns an authenticated client.
func (c *cli) upstream(ctx context.Context) (*connect.Client, error) {
	store, closeStore, err := bootstrap.OpenTokenStore(ctx, c.cfg)
	if err != nil {
		return nil, err
	}
	defer closeStore()

	token, err := bootstrap.LoadToken(ctx, store, c.cfg.TokenAccount, c.now())
	if err != nil {
		return nil, fmt.Errorf("%w (run: timelinectl token import)", err)
	}
	return bootstrap.NewUpstreamClient(c.cfg, token, c.logger), nil
}
