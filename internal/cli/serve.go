package cli

import (
	"fmt"
	"log"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/moldplan/moldplan/internal/api"
	"github.com/moldplan/moldplan/internal/app/runner"
	"github.com/moldplan/moldplan/internal/daemon"
	"github.com/moldplan/moldplan/internal/infra/sqlite"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("config", "c", "", "Path to a TOML config file (defaults applied for anything unset)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg := daemon.DefaultConfig()
	if configPath != "" {
		loaded, err := daemon.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	db, err := sqlite.Open(cfg.Storage.SQLitePath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	r := runner.New(runner.Config{MaxConcurrent: cfg.Runner.MaxConcurrent}, db)
	server := api.NewServer(r, db)
	if cfg.Server.MetricsEnabled {
		server.EnableMetrics()
	}

	addr := cfg.Server.Addr()
	log.Printf("[moldplan] listening on %s", addr)
	return http.ListenAndServe(addr, server.Handler())
}
