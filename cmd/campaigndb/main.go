package main

import (
	"context"
	"flag"
	"os"

	"github.com/tavernkeep/scribe/internal/platform/config"
	"github.com/tavernkeep/scribe/internal/tools/campaignadmin"
)

func main() {
	cfg, err := campaignadmin.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	if err := campaignadmin.Run(context.Background(), cfg, os.Stdout); err != nil {
		config.Exitf("Error: %v", err)
	}
}
