package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mindcanvas/internal/config"
	"mindcanvas/internal/logging"
	"mindcanvas/internal/storage"
)

var (
	migrateFrom string
	migrateTo   string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate --to <driver>",
	Short: "Copy the collection between storage backends",
	Long:  "Copy every mindmap from one storage backend to another, for example from the JSON file to SQLite. Paths come from the configuration; only the driver changes.",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&migrateFrom, "from", "", "source driver (default: the configured driver)")
	migrateCmd.Flags().StringVar(&migrateTo, "to", "", "destination driver (file, sqlite)")
	_ = migrateCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(configFlag)
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		return err
	}
	defer logger.Shutdown()

	from := migrateFrom
	if from == "" {
		from = cfg.Storage.Driver
	}
	if from == migrateTo {
		return fmt.Errorf("source and destination drivers are both %q", from)
	}

	src, err := storeFor(cfg, from, logger)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := storeFor(cfg, migrateTo, logger)
	if err != nil {
		return err
	}
	defer dst.Close()

	n, err := storage.Copy(ctx, src, dst)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "copied %d mindmaps from %s to %s\n", n, from, migrateTo)
	return nil
}

// storeFor opens the backend named by driver using the paths from cfg.
func storeFor(cfg *config.Config, driver string, logger logging.Logger) (storage.Store, error) {
	sc := cfg.Storage
	sc.Driver = driver
	return storage.NewStore(sc, logger)
}
