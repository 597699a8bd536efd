// cmd/tools/data-seeder/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"vehicle-insurance-pipeline/internal/common/config"
	"vehicle-insurance-pipeline/internal/common/database"
	"vehicle-insurance-pipeline/internal/models"
)

func main() {
	csvPath := flag.String("csv", "", "Path to the vehicle insurance CSV file")
	collection := flag.String("collection", "", "Target collection (defaults to the configured one)")
	timeout := flag.Duration("timeout", 2*time.Minute, "Overall seeding timeout")
	flag.Parse()

	if *csvPath == "" {
		fmt.Println("Error: -csv is required.")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error: config load failed: %v\n", err)
		os.Exit(1)
	}

	target := *collection
	if target == "" {
		target = cfg.Database.MongoDB.Collection
	}

	records, err := models.ReadRecordsCSV(*csvPath)
	if err != nil {
		fmt.Printf("Error: reading %s failed: %v\n", *csvPath, err)
		os.Exit(1)
	}
	if len(records) == 0 {
		fmt.Printf("Error: %s contains no records.\n", *csvPath)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client, err := database.NewMongo(ctx, cfg.Database.MongoDB)
	if err != nil {
		fmt.Printf("Error: MongoDB connection failed: %v\n", err)
		os.Exit(1)
	}
	defer client.Close(context.Background())

	docs := make([]map[string]interface{}, 0, len(records))
	for _, r := range records {
		docs = append(docs, r.ToMap())
	}

	inserted, err := client.InsertRecords(ctx, target, docs)
	if err != nil {
		fmt.Printf("Error: insert failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Seeded %d records into %s.%s\n", inserted, cfg.Database.MongoDB.Database, target)
}
