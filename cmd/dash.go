package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sophiie/orbit/cli"
	"github.com/sophiie/orbit/tui"
	"github.com/sophiie/orbit/tui/dash"
)

// NewDashCmd creates the `dash` command.
func NewDashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dash",
		Short: "Interactive dashboard of enquiries, notifications and sync health",
		Long: `Opens a full-screen terminal dashboard fed by the live sync state:
the enquiry list with coarse statuses, the notification feed, the agent
stage indicator and per-channel connection health. Enquiries in review
can be approved or rejected from the keyboard.`,
		RunE: runDashE,
	}
	return cmd
}

func runDashE(cmd *cobra.Command, args []string) error {
	opts := cli.GetOptions(cmd)

	coord, cleanup, err := newCoordinator(cmd)
	if err != nil {
		return cli.NewErrorHandler(opts.Verbose).Handle(err)
	}
	defer cleanup()

	tui.InitializeTUI()

	coord.Start()
	defer coord.Stop()

	p := tea.NewProgram(dash.New(coord), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
