package main

import (
	"context"
	"flag"
	"os"

	"github.com/tavernkeep/scribe/internal/platform/config"
	"github.com/tavernkeep/scribe/internal/tools/referenceload"
)

func main() {
	cfg, err := referenceload.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	if err := referenceload.Run(context.Background(), cfg, os.Stdout); err != nil {
		config.Exitf("Error: %v", err)
	}
}
