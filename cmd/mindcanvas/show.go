package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mindcanvas/internal/shell"
)

var showCmd = &cobra.Command{
	Use:   "show <mindmap>",
	Short: "Print a mindmap as a tree",
	Long:  "Print the node tree of one mindmap. The mindmap is addressed by id, unique id prefix, or name.",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	mm, err := shell.FindMindmap(a.mgr, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), shell.RenderTree(mm))
	return nil
}
