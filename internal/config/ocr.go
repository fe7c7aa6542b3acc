package config

import (
	"sync"
)

// OCRConfig configures résumé text extraction and the tesseract fallback.
type OCRConfig struct {
	Tesseract     string
	Language      string
	TessdataDir   string
	DPI           int
	MinTextLength int
}

var (
	ocrConfig *OCRConfig
	ocrOnce   sync.Once
)

func LoadOCRConfig() *OCRConfig {
	ocrOnce.Do(func() {
		ocrConfig = newOCRConfig()
	})
	return ocrConfig
}

func newOCRConfig() *OCRConfig {
	return &OCRConfig{
		Tesseract:     getEnv("OCR_TESSERACT", "tesseract"),
		Language:      getEnv("OCR_LANGUAGE", "eng"),
		TessdataDir:   getEnv("OCR_TESSDATA_DIR", ""),
		DPI:           getEnvInt("OCR_DPI", 300),
		MinTextLength: getEnvInt("OCR_MIN_TEXT_LENGTH", 100),
	}
}
