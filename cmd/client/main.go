package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/worldacross/membership/internal/buildinfo"
	"github.com/worldacross/membership/internal/client/cli"
	"github.com/worldacross/membership/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	app, err := cli.NewApp(ctx, cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
