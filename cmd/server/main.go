package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"itemforge/server/internal/app"
)

func main() {
	var cfg app.Config
	flag.StringVar(&cfg.Addr, "addr", ":8080", "listen address")
	flag.StringVar(&cfg.ConfigDir, "config", "config", "configuration directory")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg); err != nil && ctx.Err() == nil {
		log.Fatalf("%v", err)
	}
}
