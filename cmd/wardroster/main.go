package main

import (
	"context"
	"log/slog"
	"os"
	"wardroster/cmd/wardroster/commands"
	"wardroster/lib/serviceutil"
	"wardroster/lib/telemetry"
)

func run() int {
	ctx, cancel := serviceutil.SignalContext()
	defer cancel()

	tel, err := telemetry.SetupFromEnv(ctx, "wardroster")
	if err != nil {
		slog.Warn("failed to setup telemetry, continuing without it", "err", err)
	}
	defer func() {
		err := tel.Shutdown(context.Background())
		if err != nil {
			slog.Warn("failed to shutdown telemetry", "err", err)
		}
	}()

	return commands.ExecuteContext(ctx, os.Args[1:])
}

func main() {
	os.Exit(run())
}
