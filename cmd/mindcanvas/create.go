package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var createCategory string

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an empty mindmap",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreate,
}

func init() {
	createCmd.Flags().StringVar(&createCategory, "category", "", "category label for the new mindmap")
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	mm, err := a.mgr.CreateMindmap(ctx, args[0], createCategory)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "created %q [%s]\n", mm.Name, mm.ID)
	return nil
}
