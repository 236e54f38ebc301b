package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/scraper-bots/receipt-data/internal/common"
	"github.com/scraper-bots/receipt-data/internal/fetch"
)

func main() {
	var (
		idsPath = flag.String("ids", "", "file with fiscal IDs, one per line (required)")
		outDir  = flag.String("out", "receipts", "directory to save downloaded images")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if *idsPath == "" {
		fmt.Fprintln(os.Stderr, "Error: --ids is required")
		os.Exit(1)
	}

	if err := godotenv.Load(); err == nil {
		logger.Debug("loaded .env")
	}
	cfg := common.LoadConfig()

	ids, err := readIDs(*idsPath)
	if err != nil {
		logger.Error("read fiscal ids", "path", *idsPath, "error", err)
		os.Exit(1)
	}
	if len(ids) == 0 {
		logger.Error("no fiscal ids in file", "path", *idsPath)
		os.Exit(1)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		logger.Error("create output dir", "dir", *outDir, "error", err)
		os.Exit(1)
	}

	client := fetch.NewClient(fetch.Config{
		BaseURL:     cfg.Fetch.BaseURL,
		Timeout:     cfg.Fetch.Timeout,
		MaxAttempts: cfg.Fetch.MaxAttempts,
		Backoff:     cfg.Fetch.Backoff,
		RequestsPer: cfg.Fetch.RequestDelay,
	}, logger)

	ctx := context.Background()
	succeeded, failed := 0, 0
	for i, id := range ids {
		logger.Info("fetch.progress", "fiscal_id", id, "n", i+1, "total", len(ids))
		if _, err := client.Download(ctx, id, *outDir); err != nil {
			logger.Error("fetch.failed", "fiscal_id", id, "error", err)
			failed++
			continue
		}
		succeeded++
	}

	logger.Info("fetch.done", "total", len(ids), "succeeded", succeeded, "failed", failed)
	fmt.Printf("Downloaded %d/%d receipts to %s (%d failed)\n", succeeded, len(ids), *outDir, failed)
}

func readIDs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var ids []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if id := strings.TrimSpace(sc.Text()); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, sc.Err()
}
