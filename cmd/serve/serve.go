// Package serve implements the serve command.
package serve

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/sherpa-go/internal/api"
	"github.com/tphakala/sherpa-go/internal/app"
	"github.com/tphakala/sherpa-go/internal/logger"
	"github.com/tphakala/sherpa-go/internal/mqtt"
)

// Command creates the serve command.
func Command(ctx *app.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the enabled models over HTTP",
		Long: `Load every model enabled in the configuration and serve them over a JSON/WAV
HTTP API until interrupted:

  POST /api/v1/tts         JSON {text, sid, speed} -> audio/wav
  POST /api/v1/transcribe  multipart file -> JSON transcript
  POST /api/v1/tag         multipart file [top_k] -> JSON events
  GET  /api/v1/health
  GET  /metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), ctx)
		},
	}

	cmd.Flags().String("listen", "", "Listen address (default from config)")
	_ = viper.BindPFlag("server.listen", cmd.Flags().Lookup("listen"))

	return cmd
}

func run(parent context.Context, ctx *app.Context) error {
	log := logger.Global().Module("serve")
	settings := ctx.Settings

	opts := []api.ServerOption{
		api.WithVersion(ctx.Info.Version()),
		api.WithMetrics(ctx.Metrics),
	}

	if settings.TTS.Enabled {
		tts, err := ctx.NewSynthesizer()
		if err != nil {
			return err
		}
		defer tts.Close()
		opts = append(opts, api.WithSynthesizer(tts))
	}
	if settings.ASR.Enabled {
		rec, err := ctx.NewRecognizer()
		if err != nil {
			return err
		}
		defer rec.Close()
		opts = append(opts, api.WithTranscriber(rec))
	}
	if settings.Tagging.Enabled {
		tagger, err := ctx.NewTagger()
		if err != nil {
			return err
		}
		defer tagger.Close()
		opts = append(opts, api.WithTagger(tagger))

		if settings.MQTT.Enabled {
			client, err := mqtt.NewClient(mqtt.ConfigFromSettings(&settings.MQTT), mqtt.WithMetrics(ctx.Metrics.MQTT))
			if err != nil {
				return err
			}
			if err := client.Connect(parent); err != nil {
				log.Warn("MQTT broker unavailable, tagging results will not be published",
					logger.Error(err))
			}
			defer client.Disconnect()
			opts = append(opts, api.WithPublisher(client))
		}
	}

	server, err := api.New(api.ConfigFromSettings(settings), opts...)
	if err != nil {
		return err
	}

	sigCtx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.Run(sigCtx)
}
