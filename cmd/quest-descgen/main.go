// quest-descgen regenerates catalogue location descriptions from reference
// photos. For each location with at least one image it sends the first image
// to the vision model and collects the answer, producing a JSON map from
// location name to description that can be folded back into the catalogue.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/questhunt/location-matcher/internal/utils"
	"github.com/questhunt/location-matcher/pkg/catalogue"
	"github.com/questhunt/location-matcher/pkg/client"
	"github.com/questhunt/location-matcher/pkg/matcher"
	"github.com/questhunt/location-matcher/pkg/ollama"
	"github.com/questhunt/location-matcher/pkg/openai"
	"github.com/questhunt/location-matcher/pkg/preprocess"
)

func main() {
	var backend, url, model, catPath, imageDir, out, keyEnv string
	var timeout time.Duration

	flag.StringVar(&backend, "backend", "openai", "backend to use: openai or ollama")
	flag.StringVar(&url, "url", "", "provider base URL")
	flag.StringVar(&model, "model", "gpt-4o", "model name")
	flag.StringVar(&catPath, "catalogue", "", "catalogue YAML path (empty uses the built-in quest)")
	flag.StringVar(&imageDir, "imagedir", "public", "directory that catalogue image paths are relative to")
	flag.StringVar(&out, "out", "descriptions.json", "output JSON file")
	flag.StringVar(&keyEnv, "keyenv", "OPENAI_API_KEY", "environment variable holding the provider API key")
	flag.DurationVar(&timeout, "timeout", 60*time.Second, "per-image inference deadline")
	flag.Parse()

	_ = godotenv.Load()

	cat := catalogue.Default()
	if catPath != "" {
		var err error
		cat, err = catalogue.Load(catPath)
		if err != nil {
			log.Fatal(err)
		}
	}

	var vc client.VisionClient
	var err error
	switch backend {
	case "openai":
		vc, err = openai.NewClient(openai.Config{BaseURL: url, APIKeyEnv: keyEnv, Timeout: timeout})
	case "ollama":
		if url == "" {
			url = "http://localhost:11434"
		}
		vc, err = ollama.NewClient(url, timeout)
	default:
		log.Fatalf("unknown backend: %s (use 'openai' or 'ollama')", backend)
	}
	if err != nil {
		log.Fatal(err)
	}

	proc := preprocess.NewProcessor()
	descriptions := map[string]string{}

	for _, loc := range cat.All() {
		if len(loc.Images) == 0 {
			log.Printf("skipping %q: no reference images", loc.Name)
			continue
		}

		imagePath := filepath.Join(imageDir, loc.Images[0])
		if !utils.FileExists(imagePath) || !utils.IsImageFile(imagePath) {
			log.Printf("skipping %q: %s is not a readable image", loc.Name, imagePath)
			continue
		}

		data, err := proc.LoadBytes(imagePath)
		if err != nil {
			log.Printf("could not read image %s: %v", imagePath, err)
			continue
		}

		prepared, err := proc.PrepareForModel(data, preprocess.DefaultSendFormat, preprocess.DefaultSendMaxDim, preprocess.DefaultSendQuality)
		if err != nil {
			log.Printf("could not process image %s: %v", imagePath, err)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		description, err := vc.Describe(ctx, model, matcher.DescribePrompt, prepared)
		cancel()
		if err != nil {
			log.Printf("describing %q failed: %v", loc.Name, err)
			continue
		}

		log.Printf("generated description for %q", loc.Name)
		descriptions[loc.Name] = description
	}

	js, err := json.MarshalIndent(descriptions, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	if err := os.WriteFile(out, js, 0o644); err != nil {
		log.Fatal(err)
	}
	log.Printf("descriptions saved to %s", out)
}
