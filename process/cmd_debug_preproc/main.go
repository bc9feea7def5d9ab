package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"pantryscan/pkg/imgproc"
)

func main() {
	file := flag.String("file", "", "image file to preprocess")
	out := flag.String("out", "/tmp", "directory for the cleaned output image")
	flag.Parse()
	if *file == "" {
		log.Fatalf("-file required")
	}
	img, err := imaging.Open(*file)
	if err != nil {
		log.Fatalf("open: %v", err)
	}
	cleaned, adjustments, err := imgproc.Preprocess(context.Background(), img, imgproc.DefaultConfig())
	if err != nil {
		log.Fatalf("preprocess: %v", err)
	}
	base := strings.TrimSuffix(filepath.Base(*file), filepath.Ext(*file))
	dst := filepath.Join(*out, base+".cleaned.png")
	if err := imaging.Save(cleaned.ToImage(), dst); err != nil {
		log.Fatalf("save: %v", err)
	}
	fmt.Printf("adjustments=%s size=%dx%d out=%s\n", strings.Join(adjustments, ","), cleaned.W, cleaned.H, dst)
}
