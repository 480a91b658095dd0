package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"
	"runtime"

	imagepkg "github.com/youruser/imgcomp/internal/image"
	"github.com/youruser/imgcomp/internal/util"
)

func main() {
	in := flag.String("in", "", "input image file or directory (required)")
	out := flag.String("out", "out", "output directory")
	settingsPath := flag.String("settings", "", "JSON style settings file")
	background := flag.String("background", "", "background image file (backgroundMode=image)")
	scale := flag.Float64("scale", 1, "device scale (max 2)")
	workers := flag.Int("workers", runtime.NumCPU(), "images processed in parallel")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}

	style := imagepkg.DefaultStyleConfig()
	if *settingsPath != "" {
		b, err := os.ReadFile(*settingsPath)
		if err != nil {
			log.Fatal(err)
		}
		if err := json.Unmarshal(b, &style); err != nil {
			log.Fatalf("settings %s: %v", *settingsPath, err)
		}
	}
	style = style.Clamp()

	if *background != "" {
		b, err := os.ReadFile(*background)
		if err != nil {
			log.Fatal(err)
		}
		if img, err := imagepkg.Decode(b); err != nil {
			log.Println("Warning: background ignored:", err)
		} else {
			style.BackgroundImage = img
		}
	}

	files, err := util.ListImages(*in)
	if err != nil {
		log.Fatal(err)
	}
	if len(files) == 0 {
		log.Fatalf("no images found in %s", *in)
	}
	if err := util.EnsureDir(*out); err != nil {
		log.Fatal(err)
	}

	jobs := make([]imagepkg.BatchJob, 0, len(files))
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			log.Printf("skipping %s: %v", f, err)
			continue
		}
		jobs = append(jobs, imagepkg.BatchJob{Name: f, Data: b})
	}

	results := imagepkg.ProcessBatch(context.Background(), jobs, style,
		imagepkg.WithWorkers(*workers),
		imagepkg.WithRenderOptions(imagepkg.WithDeviceScale(*scale)))

	failed := 0
	for i, r := range results {
		if r.Err != nil {
			failed++
			log.Printf("%d/%d %s: %v", i+1, len(results), r.Name, r.Err)
			continue
		}
		dst := filepath.Join(*out, r.Filename)
		if err := os.WriteFile(dst, r.Data, 0o644); err != nil {
			failed++
			log.Printf("%d/%d %s: %v", i+1, len(results), r.Name, err)
			continue
		}
		log.Printf("%d/%d %s -> %s", i+1, len(results), r.Name, dst)
	}
	log.Printf("processed %d images, %d failed", len(results), failed)
	if failed > 0 {
		os.Exit(1)
	}
}
