// Command daapshared runs the share daemon with the default configuration
// lookup. Use `daapshare serve --config` for an explicit file.
package main

import (
	"context"
	"flag"
	"log"

	"daapshare/internal/config"
	"daapshare/internal/daemonrun"
)

func main() {
	configPath := flag.String("config", "", "Configuration file path")
	flag.Parse()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{}); err != nil {
		log.Fatalf("daapshared: %v", err)
	}
}
