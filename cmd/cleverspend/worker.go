package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"cleverspend/internal/amqp"
	"cleverspend/internal/worker"
)

func workerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Export new expenses to the spreadsheet as they are recorded",
		Long: `Consume expense.created events from AMQP_QUEUE and append each expense to
the configured spreadsheet. Events carry the expense as committed, so the
worker never opens the store and can run beside the server.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationStoreless: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, logger := app.Config, app.Logger

			if !cfg.NotificationsEnabled() {
				return fmt.Errorf("worker requires AMQP_URL")
			}
			if !cfg.ExportEnabled() {
				return fmt.Errorf("worker requires GOOGLE_SPREADSHEET_ID")
			}

			exporter, err := app.Exporter(ctx)
			if err != nil {
				return err
			}
			client, err := amqp.NewClient(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey)
			if err != nil {
				return err
			}
			defer client.Close()

			w := worker.NewExportWorker(exporter)
			logger.Info("Starting export worker",
				"queue", cfg.AMQPQueue,
				"exchange", cfg.AMQPExchange,
				"spreadsheet_id", cfg.GoogleSpreadsheetID)

			err = client.Consume(ctx, cfg.AMQPQueue, w.Patterns(cfg.AMQPRoutingKey), w.HandleEvent)
			if errors.Is(err, context.Canceled) {
				logger.Info("Worker shutdown complete")
				return nil
			}
			return err
		},
	}
}
