package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	locationmatcher "github.com/questhunt/location-matcher"
	"github.com/questhunt/location-matcher/pkg/catalogue"
	"github.com/questhunt/location-matcher/pkg/client"
	"github.com/questhunt/location-matcher/pkg/ollama"
	"github.com/questhunt/location-matcher/pkg/openai"
)

func main() {
	var in, backend, url, model, catPath, keyEnv string
	var timeout time.Duration
	var asJSON bool

	flag.StringVar(&in, "in", "", "input image path or URL (jpg/png/webp)")
	flag.StringVar(&backend, "backend", "openai", "backend to use: openai or ollama")
	flag.StringVar(&url, "url", "", "provider base URL (defaults: openai=https://api.openai.com/v1, ollama=http://localhost:11434)")
	flag.StringVar(&model, "model", "gpt-4o-mini", "model name")
	flag.StringVar(&catPath, "catalogue", "", "catalogue YAML path (empty uses the built-in quest)")
	flag.StringVar(&keyEnv, "keyenv", "OPENAI_API_KEY", "environment variable holding the provider API key")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "inference deadline")
	flag.BoolVar(&asJSON, "json", false, "print the raw JSON result only")
	flag.Parse()

	if in == "" {
		log.Fatalf("usage: %s -in photo.jpg|URL [-backend openai|ollama] [-url base_url] [-model name] [-catalogue quest.yaml]", filepath.Base(os.Args[0]))
	}

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

	m := locationmatcher.New(cat, vc, locationmatcher.Options{
		Model:      model,
		SendMaxDim: 1536,
	})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	result, err := m.MatchSource(ctx, in)
	if err != nil {
		log.Fatal(err)
	}

	if asJSON {
		out, _ := json.Marshal(result)
		fmt.Println(string(out))
		return
	}

	if result.Matched() {
		loc, _ := cat.Get(result.LocationIndex)
		color.Green("matched %q (index %d, %s confidence)", loc.Name, result.LocationIndex, result.Confidence)
	} else {
		color.Yellow("no confident match")
	}
}
