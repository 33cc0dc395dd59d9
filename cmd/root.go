// Package cmd wires the command line interface.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/sherpa-go/cmd/serve"
	"github.com/tphakala/sherpa-go/cmd/synthesize"
	"github.com/tphakala/sherpa-go/cmd/tag"
	"github.com/tphakala/sherpa-go/cmd/transcribe"
	"github.com/tphakala/sherpa-go/internal/app"
)

// RootCommand creates and returns the root command.
func RootCommand(ctx *app.Context) (*cobra.Command, error) {
	var configFile string

	rootCmd := &cobra.Command{
		Use:          "sherpa-go",
		Short:        "Offline speech synthesis, recognition and audio tagging",
		Version:      ctx.Info.String(),
		SilenceUsage: true,
	}

	if err := setupFlags(rootCmd, &configFile); err != nil {
		return nil, err
	}

	rootCmd.AddCommand(
		synthesize.Command(ctx),
		transcribe.Command(ctx),
		tag.Command(ctx),
		serve.Command(ctx),
	)

	// Setup runs after flag parsing so command line values take precedence
	// over the config file through the viper bindings.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return ctx.Setup(configFile)
	}
	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return ctx.Close()
	}

	return rootCmd, nil
}

// setupFlags defines flags that are global to the command line interface.
func setupFlags(rootCmd *cobra.Command, configFile *string) error {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(configFile, "config", "c", "", "Path to config file (default: search the standard config paths)")
	flags.BoolP("debug", "d", false, "Enable debug logging and onnxruntime debug output")
	flags.String("provider", "", "onnxruntime execution provider: cpu, cuda, coreml, directml, trt")
	flags.Int("threads", 0, "Inference threads, 0 for the model default, -1 to detect from the CPU")

	bindings := map[string]string{
		"debug":           "debug",
		"engine.provider": "provider",
		"engine.threads":  "threads",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return fmt.Errorf("error binding flag %s: %w", flag, err)
		}
	}
	return nil
}
