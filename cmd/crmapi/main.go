package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"crm-api/internal/api"
	"crm-api/internal/crm"
	"crm-api/internal/data"
	"crm-api/internal/db"

	"github.com/gin-gonic/gin"
)

func main() {
	db.LoadDotEnv()

	var (
		addr       = flag.String("addr", envOr("CRM_ADDR", ":8080"), "listen address for the HTTP API")
		reset      = flag.Bool("reset", false, "delete every row before anything else runs")
		seed       = flag.Bool("seed", false, "insert the sample catalogue and customers")
		orderCount = flag.Int("orders", 0, "with -seed, top the order history up to this many orders")
		batchSize  = flag.Int("batch", 500, "batch size for seeded orders")
		report     = flag.Bool("report", false, "print row counts and integrity checks")
		list       = flag.String("list", "", "print one collection: customers, products, orders, orderItems or categories")
		serve      = flag.Bool("serve", true, "serve the HTTP API after the other steps")
	)
	flag.Parse()

	cfg := db.FromEnv()
	gdb, err := db.Open(cfg)
	if err != nil {
		log.Fatalf("failed to connect to %s: %v", cfg.Driver, err)
	}

	if err := data.EnsureSchema(gdb); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	ctx := context.Background()

	if *reset {
		if err := data.ClearDataset(ctx, gdb); err != nil {
			log.Fatalf("failed to clear dataset: %v", err)
		}
		log.Println("dataset cleared")
	}

	if *seed {
		start := time.Now()
		seedCfg := data.SeedConfig{Orders: *orderCount, BatchSize: *batchSize}
		if err := data.SeedDataset(ctx, gdb, seedCfg); err != nil {
			log.Fatalf("failed to seed dataset: %v", err)
		}
		log.Printf("dataset seeded (orders target=%d) in %s", *orderCount, time.Since(start))
	}

	svc := crm.NewService(data.NewStore(gdb))

	if *report {
		if err := printReport(os.Stdout, data.RunReport(ctx, gdb, data.Checks)); err != nil {
			log.Fatalf("failed to print report: %v", err)
		}
	}

	if *list != "" {
		if err := printCollection(ctx, os.Stdout, svc, *list); err != nil {
			log.Fatalf("failed to list %s: %v", *list, err)
		}
	}

	if !*serve {
		return
	}

	gin.SetMode(envOr("GIN_MODE", gin.ReleaseMode))
	router := api.NewRouter(svc)
	log.Printf("CRM API listening on %s (driver=%s)", *addr, cfg.Driver)
	if err := router.Run(*addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func envOr(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
