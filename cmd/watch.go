package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sophiie/orbit/cli"
	"github.com/sophiie/orbit/pkg/coordinator"
	"github.com/sophiie/orbit/tui/theme"
)

// NewWatchCmd creates the `watch` command.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the sync client and stream state changes to the terminal",
		Long: `Connects to the server's session and leads channels and prints every
state change as it happens: workspace patches, new enquiries, status
transitions, call activity and connection health.`,
		Example: `  # Watch with human-readable output
  orbit watch

  # Emit JSON lines for piping into jq or a log collector
  orbit watch --json`,
		RunE: runWatchE,
	}
	return cmd
}

func runWatchE(cmd *cobra.Command, args []string) error {
	logger := cli.GetLogger(cmd)
	opts := cli.GetOptions(cmd)

	coord, cleanup, err := newCoordinator(cmd)
	if err != nil {
		return cli.NewErrorHandler(opts.Verbose).Handle(err)
	}
	defer cleanup()

	updates, stopSub := coord.Subscribe()
	defer stopSub()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	coord.Start()
	defer coord.Stop()
	logger.WithField("session_id", coord.SessionID()).Debug("Watching")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case snap, ok := <-updates:
				if !ok {
					return nil
				}
				if opts.JSONOutput {
					printSnapshotJSON(snap)
				} else {
					printSnapshotText(snap)
				}
			}
		}
	})
	return g.Wait()
}

func printSnapshotJSON(snap coordinator.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	fmt.Println(string(data))
}

func printSnapshotText(snap coordinator.Snapshot) {
	t := theme.DefaultTheme
	line := fmt.Sprintf("session=%s leads=%s stage=%s components=%d enquiries=%d",
		snap.SessionStatus, snap.LeadsStatus, snap.AgentStage,
		len(snap.Components), len(snap.Leads))
	if snap.CallActive {
		line += " " + t.Warning.Render("call-active")
	}
	if snap.PendingPush != nil {
		line += " " + t.Accent.Render("new-lead="+snap.PendingPush.ID)
	}
	fmt.Println(line)
}
