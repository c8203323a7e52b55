package main

import (
	"fmt"
	"km-report-service/internal/adapters/status"
	"km-report-service/internal/app"
	"km-report-service/internal/services"

	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Regenerate the PDF pages from an existing ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		pipeline := app.NewPipeline(cfg, env, status.NewLogSink(log), log)

		res, err := pipeline.Render(cmd.Context(), month, year)
		if err != nil {
			return err
		}

		for _, f := range res.Files {
			fmt.Println(f)
		}
		fmt.Printf("%d pages, %s km\n", len(res.Files), services.FormatKm(res.Total))
		return nil
	},
}
