package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mindcanvas/internal/shell"
	"mindcanvas/internal/summarize"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <mindmap> <node>",
	Short: "Summarize one node's content with the configured service",
	Long:  "Send a node's description to the summarization endpoint and print the result. Nothing is written back; apply the summary yourself if you want to keep it.",
	Args:  cobra.ExactArgs(2),
	RunE:  runSummarize,
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	client := summarize.NewClient(a.cfg.Summarize, a.logger)
	if !client.Enabled() {
		return fmt.Errorf("summarization is not configured (set summarize.endpoint)")
	}

	mm, err := shell.FindMindmap(a.mgr, args[0])
	if err != nil {
		return err
	}
	node, err := shell.FindNode(mm, args[1])
	if err != nil {
		return err
	}

	summary, err := client.Summarize(ctx, node.Description)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), summary)
	return nil
}
