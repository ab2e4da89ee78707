package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/coachlogin/internal/buildinfo"
	"github.com/dmitrijs2005/coachlogin/internal/client/cli"
	"github.com/dmitrijs2005/coachlogin/internal/client/config"
	"github.com/dmitrijs2005/coachlogin/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// The first signal cancels ctx: a request in flight is aborted and the
	// REPL exits after its next input line. Restoring default handling lets
	// a second signal kill the process.
	go func() {
		<-ctx.Done()
		stop()
	}()

	cfg := config.LoadConfig()
	logger := logging.New(cfg.LogLevel, os.Stderr)

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
