package cli

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cleverspend/internal/config"
	"cleverspend/internal/core"
	applog "cleverspend/internal/log"
	"cleverspend/internal/services"
	memsheet "cleverspend/internal/sheets/memory"
)

func testLogger(buf *bytes.Buffer) *applog.Logger {
	return applog.New(applog.Config{
		Level:     slog.LevelDebug,
		Component: applog.ComponentApp,
		Handler:   slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
}

func memoryConfig() *config.Config {
	return &config.Config{
		Port:        "8081",
		DataBackend: config.BackendMemory,
		Timezone:    "UTC",
		LogLevel:    "info",
	}
}

func TestNewApp_MemoryBackend(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.Background()

	app, err := NewApp(ctx, memoryConfig(), testLogger(&buf))
	require.NoError(t, err)
	defer app.Close()

	seeded, err := app.Expenses.SeedDefaults(ctx, services.DefaultSeedCategories)
	require.NoError(t, err)
	assert.True(t, seeded)

	sum, err := app.Stats.Summary(ctx, core.PeriodAll)
	require.NoError(t, err)
	assert.True(t, sum.Total.IsZero())
	assert.Contains(t, buf.String(), "memory backend")
}

func TestNewApp_InvalidBackend(t *testing.T) {
	var buf bytes.Buffer
	cfg := memoryConfig()
	cfg.DataBackend = "sheets"

	_, err := NewApp(context.Background(), cfg, testLogger(&buf))
	assert.Error(t, err)
}

func TestApp_ExporterFallsBackToMemory(t *testing.T) {
	var buf bytes.Buffer
	app, err := NewApp(context.Background(), memoryConfig(), testLogger(&buf))
	require.NoError(t, err)
	defer app.Close()

	x, err := app.Exporter(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &memsheet.Exporter{}, x)
}

func TestLoadAndValidateConfig(t *testing.T) {
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("TIMEZONE", "UTC")
	cfg, err := LoadAndValidateConfig()
	require.NoError(t, err)
	assert.Equal(t, config.BackendMemory, cfg.DataBackend)

	t.Setenv("DATA_BACKEND", "postgres")
	_, err = LoadAndValidateConfig()
	assert.Error(t, err)
}

func TestNewStorelessApp(t *testing.T) {
	var buf bytes.Buffer
	app := NewStorelessApp(memoryConfig(), testLogger(&buf))

	x, err := app.Exporter(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &memsheet.Exporter{}, x)

	_, err = app.Exports(context.Background())
	assert.Error(t, err)
	assert.NoError(t, app.Close())
}
