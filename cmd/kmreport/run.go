package main

import (
	"context"
	"fmt"
	"km-report-service/internal/adapters/status"
	"km-report-service/internal/app"
	"km-report-service/internal/platform/obs"
	"km-report-service/internal/services"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Read the month from the device, look up distances and write the report",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		ctx, runID := obs.WithRunID(ctx)
		pipeline := app.NewPipeline(cfg, env, status.NewLogSink(log.WithField("run_id", runID)), log)

		sum, err := pipeline.Run(ctx, month, year)
		if err != nil {
			return err
		}

		failed := 0
		for _, d := range sum.Days {
			if d.Err != nil {
				failed++
			}
		}

		fmt.Printf("%d drives, %s km, %s of visits, %d pages",
			sum.Drives, services.FormatKm(sum.Kilometers), services.FormatDuration(sum.Duration), len(sum.Render.Files))
		if failed > 0 {
			fmt.Printf(" (%d days skipped, see log)", failed)
		}
		fmt.Println()
		return nil
	},
}
