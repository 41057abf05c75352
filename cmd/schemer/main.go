package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/adlio/schemer/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	stderr := colorable.NewColorable(os.Stderr)
	lvl := &slog.LevelVar{}
	logger := slog.New(
		tint.NewHandler(stderr, &tint.Options{
			Level:      lvl,
			NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
			TimeFormat: "2006-01-02 15:04:05.000",
		}),
	)
	slog.SetDefault(logger)

	c, err := cli.New(fmt.Sprintf("schemer %s", version))
	if err != nil {
		logger.Error(err.Error())
		return err
	}
	if err = c.Parse(args); err != nil {
		logger.Error(err.Error())
		return err
	}
	lvl.Set(c.Log.Level)

	err = c.Execute(&cli.Context{
		Ctx:    ctx,
		Logger: logger,
		Stdout: colorable.NewColorable(os.Stdout),
	})
	if err != nil {
		logger.Error(err.Error())
	}
	return err
}
