package main

import (
	"github.com/spf13/cobra"

	"mindcanvas/internal/shell"
	"mindcanvas/internal/summarize"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Open the interactive shell",
	Long:  "Start a readline session with mindmap, node and canvas commands. This is also what running mindcanvas without a subcommand does.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func runShell(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.startWatcher(ctx); err != nil {
		a.logger.Warn("file watcher unavailable", "error", err)
	}

	summarizer := summarize.NewClient(a.cfg.Summarize, a.logger)
	sh := shell.New(nil, a.mgr, summarizer, a.cfg.Canvas, a.logger)
	return sh.Run(ctx)
}
