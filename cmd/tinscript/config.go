package main

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v6"
)

// loadConfig reads defaults from the environment, falling back to the
// struct tags' envDefault values; flags (set up by newRootCmd) override
// whatever this returns.
func loadConfig() *config {
	cfg := &config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "tinscript: reading environment: %v\n", err)
	}
	return cfg
}
