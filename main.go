package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"pantryscan/pkg/ocr"
	"pantryscan/pkg/pipeline"
)

var scanner *pipeline.Scanner

func main() {
	// Auto-load ./.env if present (no external dependency) before reading vars
	loadDotEnv()

	// Support a lightweight migrate command: `./pantryscan migrate`
	// It runs AutoMigrate then exits. Useful for CI or manual DB setup.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		initDB()
		fmt.Println("migration completed")
		return
	}

	initDB()
	scanner = pipeline.New(newEngines())

	r := gin.Default()

	setupRoutes(r)

	r.Run(":8081")
}

// newEngines builds the OCR pair from the environment: the cloud engine as
// the high-accuracy primary when credentials are present, local tesseract as
// the always-on fallback.
func newEngines() (ocr.Engine, ocr.Engine, pipeline.Config) {
	var primary ocr.Engine
	endpoint := os.Getenv("AZURE_VISION_ENDPOINT")
	key := os.Getenv("AZURE_VISION_KEY")
	if endpoint != "" && key != "" {
		primary = ocr.NewAzure(endpoint, key)
	}
	fallback := ocr.NewTesseract(os.Getenv("TESSERACT_LANG"))
	return primary, fallback, pipeline.Config{}
}

// loadDotEnv loads key=value pairs from a local .env file into the environment
// without overwriting variables that are already set. Lines starting with # are ignored.
func loadDotEnv() {
	path := ".env"
	if _, err := os.Stat(path); err != nil {
		return // no .env file
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// split on first '='
		if eq := strings.IndexByte(line, '='); eq > 0 {
			key := strings.TrimSpace(line[:eq])
			val := strings.TrimSpace(line[eq+1:])
			if _, exists := os.LookupEnv(key); !exists {
				_ = os.Setenv(key, val)
			}
		}
	}
}
