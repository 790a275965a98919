package main

import (
	"log"

	"github.com/AmruthSrivatsan/BLOOD-TEST-ANALYSIS/internal/bootstrap"
	"github.com/AmruthSrivatsan/BLOOD-TEST-ANALYSIS/internal/shared/config"
	"github.com/AmruthSrivatsan/BLOOD-TEST-ANALYSIS/internal/shared/server"
)

func main() {
	cfg := config.Load()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	addr := server.Addr(cfg.Port)
	log.Printf("Starting API server on %s", addr)

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
