package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"github.com/scraper-bots/receipt-data/constants"
	"github.com/scraper-bots/receipt-data/internal/assemble"
	"github.com/scraper-bots/receipt-data/internal/batch"
	"github.com/scraper-bots/receipt-data/internal/common"
	"github.com/scraper-bots/receipt-data/internal/export"
	"github.com/scraper-bots/receipt-data/internal/llm/openai"
	"github.com/scraper-bots/receipt-data/internal/ocr"
	"github.com/scraper-bots/receipt-data/internal/store"
)

func main() {
	var (
		dir     = flag.String("dir", "", "directory of receipt images to process (required)")
		out     = flag.String("out", "", "output CSV path (default <dir>/../receipts.csv)")
		xlsxOut = flag.String("xlsx", "", "optional XLSX output path")
		mode    = flag.String("mode", "regex", "extraction mode: regex or llm")
		workers = flag.Int("workers", 0, "worker count (default from BATCH_WORKERS)")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if *dir == "" {
		fmt.Fprintln(os.Stderr, "Error: --dir is required")
		os.Exit(1)
	}
	if *mode != "regex" && *mode != "llm" {
		fmt.Fprintf(os.Stderr, "Error: unknown --mode %q (want regex or llm)\n", *mode)
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(*dir), "receipts.csv")
	}

	if err := godotenv.Load(); err == nil {
		logger.Debug("loaded .env")
	}
	cfg := common.LoadConfig()
	if *workers > 0 {
		cfg.Batch.Workers = *workers
	}

	docs, err := scanDocuments(*dir)
	if err != nil {
		logger.Error("scan input directory", "dir", *dir, "error", err)
		os.Exit(1)
	}
	if len(docs) == 0 {
		logger.Error("no receipt images found", "dir", *dir)
		os.Exit(1)
	}
	logger.Info("batch.start", "dir", *dir, "documents", len(docs), "mode", *mode)

	extractor := ocr.NewExtractor(ocr.Config{
		Tesseract:   cfg.OCR.Tesseract,
		Language:    cfg.OCR.Language,
		TessdataDir: cfg.OCR.TessdataDir,
		PSM:         cfg.OCR.PSM,
	}, logger)

	asm := assemble.New(cfg.Reconcile, logger)

	var opts []batch.ProcessorOption
	if *mode == "llm" {
		if err := cfg.ValidateForLLM(); err != nil {
			logger.Error("config", "error", err)
			os.Exit(1)
		}
		client := openai.NewClient(openai.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
			Timeout:     cfg.LLM.Timeout,
		}, logger)
		opts = append(opts,
			batch.WithGenerator(client),
			batch.WithLLMRetry(cfg.LLM.MaxAttempts, cfg.LLM.Backoff),
		)
	}
	if cfg.Batch.CachePath != "" {
		cache, err := store.Open(cfg.Batch.CachePath)
		if err != nil {
			logger.Error("open ocr cache", "path", cfg.Batch.CachePath, "error", err)
			os.Exit(1)
		}
		defer cache.Close()
		opts = append(opts, batch.WithCache(cache))
	}

	proc := batch.NewProcessor(extractor, asm, logger, opts...)
	pool := batch.NewPool(proc, logger,
		batch.WithWorkers(cfg.Batch.Workers),
		batch.WithDocTimeout(cfg.Batch.DocTimeout),
	)

	records, sum := pool.Run(context.Background(), docs)

	if err := export.WriteCSVFile(*out, records, logger); err != nil {
		logger.Error("write csv", "path", *out, "error", err)
		os.Exit(1)
	}
	if *xlsxOut != "" {
		data, err := export.WriteXLSX(records, logger)
		if err != nil {
			logger.Error("build xlsx", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*xlsxOut, data, 0o644); err != nil {
			logger.Error("write xlsx", "path", *xlsxOut, "error", err)
			os.Exit(1)
		}
	}

	export.Summarize(records).Log(logger)
	logger.Info("batch.done",
		"documents", sum.Documents,
		"succeeded", sum.Succeeded,
		"fallbacks", sum.Fallbacks,
		"failed", sum.Failed,
		"rows", sum.Rows,
		"output", *out,
	)

	fmt.Printf("Processed %d receipts (%d ok, %d fallback, %d failed) -> %d rows in %s\n",
		sum.Documents, sum.Succeeded, sum.Fallbacks, sum.Failed, sum.Rows, *out)
}

// scanDocuments lists receipt images in dir, sorted by name so runs are
// reproducible. The source ID is the bare filename.
func scanDocuments(dir string) ([]batch.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var docs []batch.Document
	for _, e := range entries {
		if e.IsDir() || !constants.IsReceiptImage(strings.ToLower(e.Name())) {
			continue
		}
		docs = append(docs, batch.Document{
			SourceID: e.Name(),
			Path:     filepath.Join(dir, e.Name()),
		})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].SourceID < docs[j].SourceID })
	return docs, nil
}
