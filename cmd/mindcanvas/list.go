package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mindcanvas/internal/shell"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all mindmaps",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Fprintln(cmd.OutOrStdout(), shell.RenderMindmapList(a.mgr.Mindmaps(), ""))
	return nil
}
