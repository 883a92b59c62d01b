package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	OCR     OCRConfig
	Extract ExtractConfig
	XML     XMLConfig
	Batch   BatchConfig
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Languages   string // tesseract -l argument, default "eng+deu"
	DPI         int    // rasterization DPI for scanned PDFs, default 300
	MaxPages    int    // 0 = no limit
	TessdataDir string

	ArtifactCacheDir string
}

// ExtractConfig holds extraction defaults applied when neither the document
// nor the caller supplies a value.
type ExtractConfig struct {
	DefaultLabName   string
	DefaultLanguage  string // ISO 639-1 hint, default "en"
	MinDirectPDFText int    // chars of embedded text below which a PDF is treated as scanned
}

// XMLConfig holds DCC output configuration
type XMLConfig struct {
	SchemaVersion   string
	SoftwareName    string
	SoftwareRelease string
	CountryCode     string // ISO 3166-1 country of the issuing body
}

// BatchConfig holds batch processing configuration
type BatchConfig struct {
	Workers    int
	StoreDSN   string        // sqlite DSN; default in-memory
	DocTimeout time.Duration // per-document processing budget, 0 = no limit
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		OCR: OCRConfig{
			Pdftoppm:         getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:        getEnv("TESSERACT_BIN", "tesseract"),
			Languages:        getEnv("OCR_LANGUAGES", "eng+deu"),
			DPI:              getEnvAsInt("OCR_DPI", 300),
			MaxPages:         getEnvAsInt("OCR_MAX_PAGES", 0),
			TessdataDir:      getEnv("TESSDATA_PREFIX", ""),
			ArtifactCacheDir: getEnv("ARTIFACT_CACHE_DIR", "./tmp"),
		},
		Extract: ExtractConfig{
			DefaultLabName:   getEnv("DCC_DEFAULT_LAB_NAME", "Calibration Laboratory"),
			DefaultLanguage:  getEnv("DCC_DEFAULT_LANGUAGE", "en"),
			MinDirectPDFText: getEnvAsInt("DCC_MIN_DIRECT_PDF_TEXT", 100),
		},
		XML: XMLConfig{
			SchemaVersion:   getEnv("DCC_SCHEMA_VERSION", "3.0.0"),
			SoftwareName:    getEnv("DCC_SOFTWARE_NAME", "dcc-convert"),
			SoftwareRelease: getEnv("DCC_SOFTWARE_RELEASE", "0.1.0"),
			CountryCode:     getEnv("DCC_COUNTRY_CODE", "DE"),
		},
		Batch: BatchConfig{
			Workers:    getEnvAsInt("BATCH_WORKERS", 4),
			StoreDSN:   getEnv("BATCH_STORE_DSN", "file::memory:?cache=shared"),
			DocTimeout: getEnvAsDuration("BATCH_DOC_TIMEOUT", 2*time.Minute),
		},
	}
}

// Helper functions for environment variable parsing
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Extract.DefaultLanguage == "" {
		return NewAppError("CONFIG_ERROR", "DCC_DEFAULT_LANGUAGE is required", ErrInvalidInput)
	}
	if c.XML.SchemaVersion == "" {
		return NewAppError("CONFIG_ERROR", "DCC_SCHEMA_VERSION is required", ErrInvalidInput)
	}
	if c.Batch.Workers < 1 {
		return NewAppError("CONFIG_ERROR", "BATCH_WORKERS must be >= 1", ErrInvalidInput)
	}
	return nil
}
