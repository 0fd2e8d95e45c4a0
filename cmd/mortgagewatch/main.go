// mortgagewatch - mortgage rate forecast dashboard and refinancing guidance.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/seenimoa/mortgagewatch/api"
	"github.com/seenimoa/mortgagewatch/internal/config"
	"github.com/seenimoa/mortgagewatch/internal/dashboard"
	"github.com/seenimoa/mortgagewatch/internal/logging"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

var rootCmd = &cobra.Command{
	Use:   "mortgagewatch",
	Short: "mortgagewatch - mortgage rate forecasts and refinancing guidance",
	Long: `mortgagewatch combines a pre-computed mortgage indicator forecast with
live 30-year mortgage rates and 10-year Treasury yields to produce
refinancing guidance, and reports local unemployment statistics.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		if path, _ := cmd.Flags().GetString("forecast"); path != "" {
			cfg.Forecast.Path = path
		}
		return logging.Setup(cfg.Logging)
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("forecast", "", "forecast CSV path override")
	rootCmd.PersistentFlags().Bool("json", false, "print JSON instead of text")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(guidanceCmd)
	rootCmd.AddCommand(forecastCmd)
	rootCmd.AddCommand(laborCmd)
	rootCmd.AddCommand(serveCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mortgagewatch %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server and HTML dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			cfg.API.Port = port
		}
		api.Version = version
		srv, err := api.NewServer(cfg)
		if err != nil {
			return err
		}
		return srv.ListenAndServe(fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port))
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port override")
}

// newDashboard wires the dashboard from the loaded config.
func newDashboard() (*dashboard.Dashboard, dashboard.Deps, error) {
	return dashboard.NewFromConfig(cfg)
}
