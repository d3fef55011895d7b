package main

import (
	"github.com/ekotlyar/kitsu-engine/internal/config"
	"github.com/ekotlyar/kitsu-engine/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	cfg := config.NewConfig()
	entrypoint.Run(cfg, Version)
}
