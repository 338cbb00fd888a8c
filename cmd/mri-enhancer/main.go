package main

import (
	"log"
	"os"

	"mri-enhancer/internal/app"
	"mri-enhancer/internal/config"
)

// Usage: mri-enhancer [folder]
//
// Settings are read from mri-enhancer.yaml in the working directory when it
// exists. The optional argument replaces the configured folder.
func main() {
	cfg, err := config.Load(config.FileName)
	if err != nil {
		log.Fatalf("Configuration failed: %v", err)
	}
	if err := cfg.ApplyArgs(os.Args[1:]); err != nil {
		log.Fatalf("Usage: mri-enhancer [folder]: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	application, err := app.NewApplication(cfg)
	if err != nil {
		log.Fatalf("Application initialization failed: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("Application execution failed: %v", err)
	}
}
