package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pauljaxson/gerrit-trigger-plugin/internal/build"
	"github.com/pauljaxson/gerrit-trigger-plugin/internal/config"
	"github.com/pauljaxson/gerrit-trigger-plugin/internal/dashboard"
	"github.com/pauljaxson/gerrit-trigger-plugin/internal/gerrit"
	"github.com/pauljaxson/gerrit-trigger-plugin/internal/monitor"
	"github.com/pauljaxson/gerrit-trigger-plugin/internal/stream"
	"github.com/pauljaxson/gerrit-trigger-plugin/internal/trigger"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the event-to-builds bridge",
	Long: `Connect to the Gerrit stream-events feed, evaluate trigger rules for
each new patchset, run the matching builds, and serve the status dashboard.

Runs until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		rules, err := trigger.CompileRules(cfg.Rules)
		if err != nil {
			return err
		}

		mon := monitor.New()
		executor := build.NewExecutor(cfg.Builds.MaxConcurrent)
		scanner := trigger.NewScanner(rules, executor, cfg.Builds.TimeoutDuration)
		handler, err := dashboard.NewHandler(mon, cfg.Dashboard.RefreshSeconds)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		client := stream.NewClient(func(event gerrit.Event) {
			pc, ok := event.(*gerrit.PatchsetCreated)
			if !ok {
				return
			}
			log.Printf("watch: patchset-created %s/%s change %s",
				pc.Change.Project, pc.Change.Branch, pc.Change.Number)
			mon.Add(pc)
			go scanner.Scan(ctx, pc)
		}, cfg.Gerrit.ReconnectsPerMinute)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return client.Run(gctx, stream.TCPDialer(cfg.Gerrit.Address))
		})
		g.Go(func() error {
			return dashboard.Serve(gctx, cfg.Dashboard.Listen, handler)
		})

		err = g.Wait()
		log.Printf("watch: shutting down, waiting for running builds")
		executor.Wait()
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
