package batch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/scraper-bots/receipt-data/constants"
	"github.com/scraper-bots/receipt-data/internal/assemble"
	"github.com/scraper-bots/receipt-data/internal/llm"
	"github.com/scraper-bots/receipt-data/internal/llm/openai"
	"github.com/scraper-bots/receipt-data/internal/parse"
	"github.com/scraper-bots/receipt-data/internal/record"
	"github.com/scraper-bots/receipt-data/internal/store"
)

// Document is one unit of batch work: a source identifier plus the path of
// its receipt image on disk.
type Document struct {
	SourceID string
	Path     string
}

// TextExtractor produces raw OCR text for an image. Satisfied by
// ocr.Extractor; stubbed in tests.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Processor runs one document through its full pipeline. Each document is
// processed synchronously end to end; concurrency lives in the Pool.
type Processor struct {
	ocr       TextExtractor
	generator llm.Generator // nil selects the pattern-grammar path
	asm       *assemble.Assembler
	cache     *store.Store // optional

	llmAttempts int
	llmBackoff  time.Duration
	log         *slog.Logger
}

type ProcessorOption func(*Processor)

// WithGenerator switches the processor to the model-extraction front end.
func WithGenerator(g llm.Generator) ProcessorOption {
	return func(p *Processor) { p.generator = g }
}

// WithCache enables the OCR text cache.
func WithCache(s *store.Store) ProcessorOption {
	return func(p *Processor) { p.cache = s }
}

// WithLLMRetry sets the completion retry budget and initial backoff.
func WithLLMRetry(attempts int, backoff time.Duration) ProcessorOption {
	return func(p *Processor) {
		if attempts > 0 {
			p.llmAttempts = attempts
		}
		if backoff > 0 {
			p.llmBackoff = backoff
		}
	}
}

func NewProcessor(ocr TextExtractor, asm *assemble.Assembler, logger *slog.Logger, opts ...ProcessorOption) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{
		ocr:         ocr,
		asm:         asm,
		llmAttempts: 2,
		llmBackoff:  time.Second,
		log:         logger,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Process runs extract → clean → reconcile → assemble for one document.
// Every failure mode degrades to the guaranteed fallback row; nothing
// propagates out of the per-document boundary except the status.
func (p *Processor) Process(ctx context.Context, doc Document) ([]record.Record, constants.DocStatus) {
	text, err := p.ocrText(ctx, doc)
	if err != nil {
		p.log.Error("batch.ocr_failed", "source_id", doc.SourceID, "error", err)
		rec := p.asm.Fallback(doc.SourceID, parse.Fields{}, constants.FailureItemParse)
		return []record.Record{rec}, constants.DocStatusFailed
	}

	var recs []record.Record
	if p.generator != nil {
		recs = p.processLLM(ctx, doc.SourceID, text)
	} else {
		fields, rows := parse.Extract(text, doc.SourceID, p.log)
		recs = p.asm.Assemble(doc.SourceID, fields, rows)
	}

	status := constants.DocStatusOK
	if len(recs) == 1 && recs[0].Failure != nil {
		status = constants.DocStatusFallback
	}
	return recs, status
}

func (p *Processor) ocrText(ctx context.Context, doc Document) (string, error) {
	if p.cache != nil {
		if text, hit, err := p.cache.GetText(ctx, doc.SourceID); err == nil && hit {
			p.log.Debug("batch.ocr_cache_hit", "source_id", doc.SourceID)
			return text, nil
		}
	}
	text, err := p.ocr.Extract(ctx, doc.Path)
	if err != nil {
		return "", err
	}
	if p.cache != nil {
		if err := p.cache.PutText(ctx, doc.SourceID, text); err != nil {
			p.log.Warn("batch.ocr_cache_put_failed", "source_id", doc.SourceID, "error", err)
		}
	}
	return text, nil
}

// processLLM drives the completion API with a bounded retry budget.
// Retries cover transient transport failures and structurally unparseable
// responses; items that parsed but failed the gate are a data-quality
// outcome and never retried.
func (p *Processor) processLLM(ctx context.Context, sourceID, text string) []record.Record {
	system := llm.BuildSystemPrompt()
	user := llm.BuildUserPrompt(sourceID, text)

	fallback := func() []record.Record {
		fields := parse.Fields{
			parse.FieldCashless: "0.00",
			parse.FieldCash:     "0.00",
			parse.FieldBonus:    "0.00",
			parse.FieldAdvance:  "0.00",
			parse.FieldCredit:   "0.00",
		}
		return []record.Record{p.asm.Fallback(sourceID, fields, constants.FailureLLM)}
	}

	backoff := p.llmBackoff
	for attempt := 1; attempt <= p.llmAttempts; attempt++ {
		completion, err := p.generator.Generate(ctx, system, user)
		if err == nil {
			items, perr := llm.ParseItems(completion, sourceID, p.log)
			if perr == nil && len(items) > 0 {
				return p.asm.AssembleItems(sourceID, items, constants.FailureLLM)
			}
			if perr != nil && !errors.Is(perr, llm.ErrStructuralParse) {
				break
			}
			p.log.Warn("batch.llm_empty", "source_id", sourceID, "attempt", attempt, "error", perr)
		} else {
			p.log.Warn("batch.llm_generate_failed",
				"source_id", sourceID, "attempt", attempt, "error", err)
			if !openai.IsRetryable(err) {
				break
			}
		}
		if attempt == p.llmAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return fallback()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return fallback()
}
