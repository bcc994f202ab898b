package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ticker-desk/src/config"
	"ticker-desk/src/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	portFlag   int
)

var rootCmd = &cobra.Command{
	Use:   "tickerdesk",
	Short: "Ticker dashboard and reference backend",
	Long: `tickerdesk tracks stock tickers.

"tickerdesk web" serves the dashboard and proxies /api to the backend.
"tickerdesk backend" serves the stock API, the job workers and the gRPC
control service.`,
	SilenceUsage: true,
}

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Serve the ticker dashboard",
	RunE:  runWeb,
}

var backendCmd = &cobra.Command{
	Use:   "backend",
	Short: "Serve the ticker API and job workers",
	RunE:  runBackend,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file (defaults apply when empty)")
	webCmd.Flags().IntVarP(&portFlag, "port", "p", 0, "override the dashboard port")
	backendCmd.Flags().IntVarP(&portFlag, "port", "p", 0, "override the API port")

	rootCmd.AddCommand(webCmd, backendCmd)
}

// -----------------------------------------------------------------------------

func main() {
	// A missing .env is fine
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// -----------------------------------------------------------------------------

// setup loads the config and builds the process logger.
func setup(name string) (*config.Config, *logger.Logger, error) {
	cfg, err := config.NewConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.NewLogger(cfg.MConfig, name), nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
