package main

import (
	"context"
	"log/slog"

	"icaiscrape/cmd/icai-cli/commands"
	"icaiscrape/lib/serviceutil"
	"icaiscrape/lib/telemetry"
)

func main() {
	telemetry.InitSlog(false)
	ctx := serviceutil.SignalContext()

	t, err := telemetry.SetupFromEnv(ctx, "icai-cli")
	if err == nil {
		defer t.Shutdown(context.Background())
		telemetry.InstrumentPerfStats(ctx)
	} else {
		slog.Debug("telemetry disabled", "err", err)
	}

	commands.ExecuteContext(ctx)
}
