package cmd

import (
	"bufio"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/hpcloud/tail"
	"github.com/spf13/cobra"

	"github.com/sophiie/orbit/cli"
)

// NewLogsCmd creates the `logs` command.
func NewLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Display logs written by orbit components",
		Long: `Reads the per-component log files under .orbit/logs in the current
directory. Each component writes one file per day.

Examples:
  # Show all of today's logs
  orbit logs

  # Follow log output as it is written
  orbit logs -f

  # Only the coordinator's logs, last 50 lines
  orbit logs --component coordinator --tail 50`,
		RunE: runLogsE,
	}

	cmd.Flags().BoolP("follow", "f", false, "Follow log output")
	cmd.Flags().Int("tail", -1, "Number of lines to show from the end of each file (default: all)")
	cmd.Flags().String("component", "", "Only show logs from this component")

	return cmd
}

func runLogsE(cmd *cobra.Command, args []string) error {
	logger := cli.GetLogger(cmd)

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}
	logsDir := filepath.Join(cwd, ".orbit", "logs")

	component, _ := cmd.Flags().GetString("component")
	follow, _ := cmd.Flags().GetBool("follow")
	tailLines, _ := cmd.Flags().GetInt("tail")

	pattern := "*.log"
	if component != "" {
		pattern = component + "-*.log"
	}
	files, err := filepath.Glob(filepath.Join(logsDir, pattern))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logger.WithField("dir", logsDir).Info("No log files found")
		return nil
	}
	sort.Strings(files)

	if !follow {
		for _, file := range files {
			if err := printFile(file, tailLines); err != nil {
				logger.WithError(err).Debugf("Skipping %s", file)
			}
		}
		return nil
	}

	lineChan := make(chan string, 100)
	var wg sync.WaitGroup
	for _, file := range files {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			t, err := tail.TailFile(path, tail.Config{
				Follow:   true,
				ReOpen:   true,
				MustExist: true,
				Logger:   stdlog.New(io.Discard, "", 0), // Suppress tail library output
			})
			if err != nil {
				logger.Debugf("Cannot tail file %s: %v", path, err)
				return
			}
			for line := range t.Lines {
				if line.Err != nil {
					continue
				}
				lineChan <- line.Text
			}
		}(file)
	}

	go func() {
		wg.Wait()
		close(lineChan)
	}()

	for line := range lineChan {
		fmt.Println(line)
	}
	return nil
}

func printFile(path string, tailLines int) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if tailLines < 0 {
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			fmt.Println(scanner.Text())
		}
		return scanner.Err()
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return err
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	start := len(lines) - tailLines
	if start < 0 {
		start = 0
	}
	for _, line := range lines[start:] {
		fmt.Println(line)
	}
	return nil
}
