package main

import (
	"context"
	"flag"
	"log"
	"syscall"

	"itemMarket/internal/app/market"
	"itemMarket/internal/config"
	"itemMarket/internal/infra/closer"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	app, err := market.New(ctx, cfg.Market)
	if err != nil {
		log.Fatal(err)
	}

	closer.Configure(syscall.SIGINT, syscall.SIGTERM)

	if err := app.Start(ctx); err != nil {
		log.Fatal(err)
	}
}
