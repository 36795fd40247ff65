package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var importFormat string

var importCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Read a mindmap file into the collection",
	Long:  "Import a mindmap from a JSON, YAML or XML file. The imported map is repaired if its structure is inconsistent and gets a fresh id when its own would collide.",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	importCmd.Flags().StringVar(&importFormat, "format", "", "file format (json, yaml, xml; default: inferred from extension)")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	mm, err := a.mgr.ImportMindmap(ctx, args[0], importFormat)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "imported %q [%s] with %d nodes\n", mm.Name, mm.ID, len(mm.Data.Nodes))
	return nil
}
