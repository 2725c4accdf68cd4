// Command cryptopulse serves the crypto analytics dashboard API.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"cryptopulse/internal/app"
)

func main() {
	configFile := flag.String("config", "", "path to YAML config file (optional, env vars apply on top)")
	flag.Parse()

	application, err := app.NewApplication(*configFile)
	if err != nil {
		slog.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(context.Background()); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
