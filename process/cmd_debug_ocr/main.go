package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/disintegration/imaging"

	"pantryscan/pkg/imgproc"
	"pantryscan/pkg/ocr"
)

func main() {
	file := flag.String("file", "", "image file to OCR")
	raw := flag.Bool("raw", false, "skip preprocessing")
	tokens := flag.Bool("tokens", false, "print every token with its box and confidence")
	flag.Parse()
	if *file == "" {
		log.Fatalf("-file required")
	}
	img, err := imaging.Open(*file)
	if err != nil {
		log.Fatalf("open: %v", err)
	}
	if !*raw {
		cleaned, _, perr := imgproc.Preprocess(context.Background(), img, imgproc.DefaultConfig())
		if perr != nil {
			log.Fatalf("preprocess: %v", perr)
		}
		img = cleaned.ToImage()
	}

	var primary ocr.Engine
	if ep, key := os.Getenv("AZURE_VISION_ENDPOINT"), os.Getenv("AZURE_VISION_KEY"); ep != "" && key != "" {
		primary = ocr.NewAzure(ep, key)
	}
	orch := ocr.New(primary, ocr.NewTesseract(os.Getenv("TESSERACT_LANG")))
	res, err := orch.Recognize(context.Background(), img)
	if err != nil {
		log.Fatalf("ocr error: %v", err)
	}
	fmt.Printf("mean_conf=%.4f tokens=%d\n", res.MeanConfidence, len(res.Tokens))
	if *tokens {
		for _, t := range res.Tokens {
			fmt.Printf("  %4d,%4d %3dx%3d %.2f %q\n", t.X, t.Y, t.W, t.H, t.Confidence, t.Text)
		}
	}
	fmt.Println(res.Text)
}
