package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/scraper-bots/receipt-data/internal/parse"
)

// Config holds all application configuration.
type Config struct {
	Fetch     FetchConfig
	OCR       OCRConfig
	LLM       LLMConfig
	Batch     BatchConfig
	Reconcile parse.Thresholds
}

// FetchConfig holds the image-download settings.
type FetchConfig struct {
	BaseURL      string
	Timeout      time.Duration
	MaxAttempts  int
	Backoff      time.Duration
	RequestDelay time.Duration
}

// OCRConfig holds the tesseract settings.
type OCRConfig struct {
	Tesseract   string
	Language    string
	TessdataDir string
	PSM         int
}

// LLMConfig holds the completion-API settings.
type LLMConfig struct {
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
	MaxAttempts int
	Backoff     time.Duration
}

// BatchConfig holds the worker-pool settings.
type BatchConfig struct {
	Workers    int
	DocTimeout time.Duration
	CachePath  string // empty disables the OCR cache
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		Fetch: FetchConfig{
			BaseURL:      getEnv("EKASSA_BASE_URL", ""),
			Timeout:      getEnvAsDuration("FETCH_TIMEOUT", 30*time.Second),
			MaxAttempts:  getEnvAsInt("FETCH_MAX_ATTEMPTS", 3),
			Backoff:      getEnvAsDuration("FETCH_BACKOFF", 500*time.Millisecond),
			RequestDelay: getEnvAsDuration("FETCH_REQUEST_DELAY", 2*time.Second),
		},
		OCR: OCRConfig{
			Tesseract:   getEnv("TESSERACT_CMD", "tesseract"),
			Language:    getEnv("TESSERACT_LANG", "aze"),
			TessdataDir: getEnv("TESSDATA_PREFIX", ""),
			PSM:         getEnvAsInt("TESSERACT_PSM", 0),
		},
		LLM: LLMConfig{
			Model:       getEnv("OPENAI_MODEL", "gpt-4o"),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			BaseURL:     getEnv("OPENAI_BASE_URL", ""),
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.05),
			MaxTokens:   getEnvAsInt("OPENAI_MAX_TOKENS", 8000),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 30*time.Second),
			MaxAttempts: getEnvAsInt("OPENAI_MAX_ATTEMPTS", 2),
			Backoff:     getEnvAsDuration("OPENAI_BACKOFF", time.Second),
		},
		Batch: BatchConfig{
			Workers:    getEnvAsInt("BATCH_WORKERS", 5),
			DocTimeout: getEnvAsDuration("BATCH_DOC_TIMEOUT", time.Minute),
			CachePath:  getEnv("OCR_CACHE_PATH", ""),
		},
		// Heuristic tuning; see parse.DefaultThresholds for what each knob
		// means. Overridable because the calibration is scanner-specific.
		Reconcile: parse.Thresholds{
			MagnitudeFloor:  getEnvAsFloat64("RECONCILE_MAGNITUDE_FLOOR", 1000),
			Tolerance:       getEnvAsFloat64("RECONCILE_TOLERANCE", 0.01),
			MaxQuantityFix:  getEnvAsFloat64("RECONCILE_MAX_QUANTITY_FIX", 100),
			SuspectQuantity: getEnvAsFloat64("RECONCILE_SUSPECT_QUANTITY", 50),
			SuspectPrice:    getEnvAsFloat64("RECONCILE_SUSPECT_PRICE", 500),
		},
	}
}

// ValidateForLLM checks the parts of the config the model path requires.
func (c *Config) ValidateForLLM() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required for the llm extraction mode")
	}
	return nil
}

// Helper functions for environment variable parsing.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
