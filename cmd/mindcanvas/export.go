package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mindcanvas/internal/shell"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export <mindmap>",
	Short: "Write a mindmap to a JSON, YAML or XML file",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "export format (json, yaml, xml)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output path (default: derived from the mindmap name)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	mm, err := shell.FindMindmap(a.mgr, args[0])
	if err != nil {
		return err
	}

	path, err := a.mgr.ExportMindmap(mm.ID, exportOut, exportFormat)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "exported %q to %s\n", mm.Name, path)
	return nil
}
