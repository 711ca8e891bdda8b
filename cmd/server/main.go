package main

import (
	"context"
	"log"

	"github.com/inkpost/backend/internal/app"
	"github.com/inkpost/backend/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	a, err := app.NewApp(cfg)
	if err != nil {
		log.Fatalf("init error: %v", err)
	}

	a.Run(context.Background())
}
