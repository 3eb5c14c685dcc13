package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/sokinpui/hyfix/cli"
	"github.com/sokinpui/hyfix/internal/app"
	"github.com/sokinpui/hyfix/internal/config"
	"github.com/sokinpui/hyfix/internal/logging"
	"github.com/sokinpui/hyfix/internal/ui"
	"github.com/sokinpui/hyfix/model"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if err := config.LoadDotEnv(); err != nil {
		ui.Error("Error: %v", err)
		return 1
	}

	cfg, err := cli.ParseFlags(args)
	if err != nil {
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			if errors.Is(err, pflag.ErrHelp) {
				fmt.Fprint(os.Stdout, usageErr.Usage)
				return 0
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n\n%s", err, usageErr.Usage)
			return 2
		}
		ui.Error("Error: %v", err)
		return 1
	}
	if cfg.NoColor {
		ui.DisableColor()
	}

	logger := logging.New(cfg.Verbose)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := app.New(app.ConfigFromCLI(cfg), app.WithLogger(logger)).Execute(ctx)
	if err != nil {
		ui.Error("Error: %v", err)
		if hint := model.HintOf(err); hint != "" {
			ui.Warning("%s", hint)
		}
		var detailed *model.DetailedError
		if errors.As(err, &detailed) {
			fmt.Fprintf(os.Stderr, "\n--- Stack Trace ---\n%s\n", detailed.Stack)
		}
		return 1
	}

	ui.PrintSummary(summary)
	return 0
}
