package main

import (
	"os"

	"github.com/sophiie/orbit/cli"
	"github.com/sophiie/orbit/cmd"
	"github.com/sophiie/orbit/version"
)

func main() {
	rootCmd := cli.NewStandardCommand(
		"orbit",
		"Real-time workspace and enquiry sync client for Sophiie Orbit",
	)
	rootCmd.Version = version.Version

	rootCmd.AddCommand(cmd.NewWatchCmd())
	rootCmd.AddCommand(cmd.NewDashCmd())
	rootCmd.AddCommand(cmd.NewLogsCmd())
	rootCmd.AddCommand(cmd.NewConfigCmd())
	rootCmd.AddCommand(cmd.NewVersionCmd())

	cli.ApplyStyledHelpRecursive(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
