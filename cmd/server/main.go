// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"toolshed/internal/audit"
	"toolshed/internal/config"
	"toolshed/internal/server"
	"toolshed/internal/telemetry"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	shutdown, err := telemetry.Setup(ctx, "toolshed", cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("Failed to set up telemetry: %v", err)
	}
	defer shutdown(ctx)

	activity, err := audit.New(cfg.ActivityLog)
	if err != nil {
		log.Fatalf("Failed to open activity log: %v", err)
	}

	srv, err := server.New(ctx, cfg, activity)
	if err != nil {
		log.Fatalf("Failed to build services: %v", err)
	}
	defer srv.Close()

	fmt.Printf("🚀 Starting Tool Shed server on port %s\n", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, srv.Router()))
}
