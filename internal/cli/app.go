package cli

import (
	"context"
	"fmt"

	"cleverspend/internal/backend"
	"cleverspend/internal/config"
	applog "cleverspend/internal/log"
	"cleverspend/internal/services"
	"cleverspend/internal/sheets"
	gsheet "cleverspend/internal/sheets/google"
	memsheet "cleverspend/internal/sheets/memory"
	"cleverspend/internal/stats"
)

// App is the wired core shared by every command.
type App struct {
	Config   *config.Config
	Logger   *applog.Logger
	Expenses *services.ExpenseService
	Stats    *stats.Service

	backend *backend.BackendResult
}

// NewApp opens the configured backend and builds the services on top of it.
func NewApp(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*App, error) {
	return newApp(ctx, cfg, logger, backend.NewFactory(logger.WithComponent(applog.ComponentStorage).Logger))
}

// NewStorelessApp carries config and logging only, for commands that run
// beside a server such as the export worker.
func NewStorelessApp(cfg *config.Config, logger *applog.Logger) *App {
	return &App{Config: cfg, Logger: logger}
}

func newApp(ctx context.Context, cfg *config.Config, logger *applog.Logger, factory backend.Factory) (*App, error) {
	bc, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := factory.CreateBackend(ctx, bc)
	if err != nil {
		return nil, fmt.Errorf("create %s backend: %w", bc.Type, err)
	}

	return &App{
		Config:   cfg,
		Logger:   logger,
		Expenses: services.NewExpenseService(res.Store, res.Notifier),
		Stats:    stats.NewService(res.Store),
		backend:  res,
	}, nil
}

// Exporter returns the Google Sheets exporter when a spreadsheet is
// configured, and an in-memory one otherwise.
func (a *App) Exporter(ctx context.Context) (sheets.ExpenseExporter, error) {
	loc := a.Config.Location()
	if !a.Config.ExportEnabled() {
		a.Logger.Warn("No spreadsheet configured, exporting to memory")
		return memsheet.New(loc), nil
	}
	x, err := gsheet.NewFromEnv(ctx, a.Config.GoogleSpreadsheetID, a.Config.GoogleSheetName, loc)
	if err != nil {
		return nil, fmt.Errorf("google sheets: %w", err)
	}
	return x, nil
}

// Exports builds the export service over the configured exporter.
func (a *App) Exports(ctx context.Context) (*services.ExportService, error) {
	if a.backend == nil {
		return nil, fmt.Errorf("no store opened")
	}
	x, err := a.Exporter(ctx)
	if err != nil {
		return nil, err
	}
	return services.NewExportService(a.backend.Store, x), nil
}

// Close releases the store and the notifier.
func (a *App) Close() error {
	if a.backend == nil || a.backend.Cleanup == nil {
		return nil
	}
	return a.backend.Cleanup()
}
