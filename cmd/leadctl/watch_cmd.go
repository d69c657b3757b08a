package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"leadflow-be/pkg/client/notify"
	"leadflow-be/pkg/client/realtime"
	"leadflow-be/pkg/events"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var pollInterval time.Duration

// watchCmd follows lead activity until interrupted
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow lead notifications live",
	Long: `Follow lead notifications of the current session until interrupted.

Events arrive over the realtime socket when broadcasting is enabled. The
unread count is polled regardless, so nothing is missed while offline.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

// readAllCmd marks every notification read
var readAllCmd = &cobra.Command{
	Use:   "read-all",
	Short: "Mark every notification as read",
	Args:  cobra.NoArgs,
	RunE:  runReadAll,
}

func init() {
	watchCmd.Flags().DurationVar(&pollInterval, "poll", notify.DefaultPollInterval, "Unread count polling interval")
}

func printToast(t notify.Toast) {
	stamp := time.Now().Format("15:04:05")
	switch t.Type {
	case events.LeadAssigned:
		color.Cyan("[%s] ● %s", stamp, t.Message)
	case events.LeadStatusUpdated:
		color.Yellow("[%s] ↻ %s", stamp, t.Message)
	default:
		color.White("[%s] ✎ %s", stamp, t.Message)
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := newLogger()
	defer log.Sync()

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	c, err := connect(connectCtx, log)
	cancel()
	if err != nil {
		return err
	}

	center := notify.NewCenter(c,
		notify.WithPollInterval(pollInterval),
		notify.WithLogger(log),
		notify.WithToaster(printToast),
		notify.WithRefetch(func(e events.Event) {
			log.Debug("lead changed", zap.Uint("lead_id", e.Lead().Id), zap.String("event", string(e.EventType())))
		}),
	)
	if err := center.Refresh(ctx); err != nil {
		return fmt.Errorf("load notifications: %w", err)
	}
	color.White("%d unread notifications", center.Unread())

	sub := realtime.New(c, realtime.WithLogger(log))
	channel := c.Session().Channel()
	release, err := center.Bind(ctx, sub, channel)
	if err != nil {
		return err
	}
	defer release()

	switch err := sub.Connect(ctx); {
	case errors.Is(err, realtime.ErrDisabled):
		color.Yellow("Realtime is disabled, polling every %s", pollInterval)
	case err != nil:
		color.Yellow("Realtime unavailable (%v), polling every %s", err, pollInterval)
	default:
		color.Green("Listening on %s", channel)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		center.Run(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return sub.Close()
	})
	return g.Wait()
}

func runReadAll(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	log := newLogger()
	defer log.Sync()

	c, err := connect(ctx, log)
	if err != nil {
		return err
	}
	n, err := c.MarkAllRead(ctx)
	if err != nil {
		return err
	}
	color.Green("✔ Marked %d notifications as read", n)
	return nil
}
