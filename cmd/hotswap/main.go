package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/wnxd/hotswap/internal/app"
	"github.com/wnxd/hotswap/internal/cli"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := run(os.Stdin, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode_Failure)
	}
}

func run(in io.Reader, outW, logW io.Writer, args []string) error {
	opts, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	} else if shouldExit {
		return nil
	}

	a := app.New(in, outW, logW, opts.Config)
	ctx := context.Background()
	if opts.History > 0 {
		return a.History(ctx, opts.History)
	}

	err = a.Run(ctx)
	var firstLoad *app.FirstLoadError
	if errors.As(err, &firstLoad) {
		return &cli.ExitError{Code: cli.ExitCode_FirstLoad, Message: firstLoad.Error()}
	}
	return err
}
