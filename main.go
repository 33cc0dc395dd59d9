package main

import (
	"fmt"
	"os"

	"github.com/tphakala/sherpa-go/cmd"
	"github.com/tphakala/sherpa-go/internal/app"
	"github.com/tphakala/sherpa-go/internal/buildinfo"
	"github.com/tphakala/sherpa-go/internal/sherpa/capi"
)

// Set through -ldflags at build time.
var (
	version   string
	buildDate string
)

func main() {
	ctx := app.New(buildinfo.NewContext(version, buildDate), capi.New())

	rootCmd, err := cmd.RootCommand(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating root command: %v\n", err)
		os.Exit(1)
	}

	err = rootCmd.Execute()
	if closeErr := ctx.Close(); closeErr != nil {
		fmt.Fprintf(os.Stderr, "error during shutdown: %v\n", closeErr)
	}
	if err != nil {
		os.Exit(1)
	}
}
