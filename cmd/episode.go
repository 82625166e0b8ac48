package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/bems/app"
	"github.com/kilianp07/bems/config"
	"github.com/kilianp07/bems/infra/logger"
	"github.com/kilianp07/bems/pkg/export"
)

var (
	episodeOut    string
	episodeFormat string
)

var episodeCmd = &cobra.Command{
	Use:   "episode",
	Short: "Run a single offline episode and export the step records",
	RunE:  runEpisode,
}

func init() {
	episodeCmd.Flags().StringVarP(&episodeOut, "out", "o", "-", "output file, - for stdout")
	episodeCmd.Flags().StringVarP(&episodeFormat, "format", "f", "json", "output format: json or csv")
	rootCmd.AddCommand(episodeCmd)
}

func runEpisode(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// Offline run: telemetry transports stay local.
	cfg.MQTT.Enabled = false
	cfg.Metrics.PrometheusEnabled = false
	cfg.Metrics.InfluxEnabled = false

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("episode-command").Errorf("service close: %v", err)
		}
	}()

	report, err := svc.Run(ctx)
	if err != nil {
		return err
	}

	out := os.Stdout
	if episodeOut != "-" {
		f, err := os.Create(episodeOut)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}
	switch episodeFormat {
	case "json":
		return export.WriteJSON(out, report.StepsPerformed)
	case "csv":
		return export.WriteCSV(out, report.StepsPerformed)
	default:
		return fmt.Errorf("unknown format: %s", episodeFormat)
	}
}
