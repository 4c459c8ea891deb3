// cmd/report/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"toolshed/internal/audit"
	"toolshed/internal/config"
	"toolshed/internal/server"
)

func main() {
	out := flag.String("out", "overdue_loans.md", "output markdown file")
	flag.Parse()

	ctx := context.Background()
	cfg := config.Load()

	activity, err := audit.New(cfg.ActivityLog)
	if err != nil {
		log.Fatalf("Failed to open activity log: %v", err)
	}

	srv, err := server.New(ctx, cfg, activity)
	if err != nil {
		log.Fatalf("Failed to load data: %v", err)
	}
	defer srv.Close()

	if len(srv.Reports.Overdue(ctx)) == 0 {
		fmt.Println("No overdue loans.")
		return
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("Failed to create report file: %v", err)
	}
	defer f.Close()

	if err := srv.Reports.WriteOverdueMarkdown(ctx, f); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}
	fmt.Printf("Report written to %s\n", *out)
}
