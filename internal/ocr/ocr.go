package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// Config for the tesseract wrapper. Language defaults to Azerbaijani since
// that is what the e-kassa receipts are printed in; diacritics must survive
// the round trip, so the text is treated as UTF-8 throughout.
type Config struct {
	Tesseract   string // binary name or path, default "tesseract"
	Language    string // default "aze"
	TessdataDir string
	PSM         int // page segmentation mode, 0 = tesseract default
}

// Extractor turns a receipt image into raw OCR text.
type Extractor struct {
	cfg    Config
	runner Runner
	log    *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Language == "" {
		cfg.Language = "aze"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{cfg: cfg, runner: execRunner{}, log: logger}
}

var (
	reCRLF      = regexp.MustCompile(`\r\n?`)
	reBlankRuns = regexp.MustCompile(`\n{3,}`)
)

// Extract runs tesseract on one image and returns normalized text.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	args := []string{path, "stdout", "-l", e.cfg.Language}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", fmt.Sprintf("%d", e.cfg.PSM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	out, _, err := e.runner.Run(ctx, e.cfg.Tesseract, e.log, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return Normalize(string(out)), nil
}

// Normalize unifies line endings and squeezes runs of blank lines so the
// downstream grammar sees stable anchors.
func Normalize(text string) string {
	text = reCRLF.ReplaceAllString(text, "\n")
	text = reBlankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
