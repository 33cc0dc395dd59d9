// Package tag implements the tag command.
package tag

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tphakala/sherpa-go/internal/app"
	"github.com/tphakala/sherpa-go/internal/audiofile"
	"github.com/tphakala/sherpa-go/internal/mqtt"
	"github.com/tphakala/sherpa-go/internal/sherpa"
)

const publishTimeout = 10 * time.Second

type options struct {
	topK    int
	asJSON  bool
	publish bool
}

type result struct {
	File   string              `json:"file"`
	Events []sherpa.AudioEvent `json:"events"`
}

// Command creates the tag command.
func Command(ctx *app.Context) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "tag [file...]",
		Short: "Label sound events in WAV or FLAC files",
		Long: `Run the configured audio tagging model over each file and print the
top events in model order. With --publish the results are also sent to the
configured MQTT broker.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, ctx, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&opts.topK, "top-k", "k", 0, "Number of events per file (default from config)")
	flags.BoolVar(&opts.asJSON, "json", false, "Print one JSON object per file")
	flags.BoolVar(&opts.publish, "publish", false, "Publish results to the configured MQTT broker")

	return cmd
}

func run(cmd *cobra.Command, ctx *app.Context, opts *options, files []string) error {
	tagger, err := ctx.NewTagger()
	if err != nil {
		return err
	}
	defer tagger.Close()

	var publisher *mqtt.Client
	if opts.publish {
		publisher, err = connect(cmd.Context(), ctx)
		if err != nil {
			return err
		}
		defer publisher.Disconnect()
	}

	out := cmd.OutOrStdout()
	for _, path := range files {
		audio, err := audiofile.Read(path)
		if err != nil {
			return err
		}
		events, err := tagger.ComputeTopK(audio.SampleRate, audio.Samples, opts.topK)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		if opts.asJSON {
			if err := json.NewEncoder(out).Encode(result{File: path, Events: events}); err != nil {
				return err
			}
		} else if err := printEvents(out, path, events); err != nil {
			return err
		}

		if publisher != nil {
			pubCtx, cancel := context.WithTimeout(cmd.Context(), publishTimeout)
			err := publisher.PublishTags(pubCtx, path, events)
			cancel()
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func connect(ctx context.Context, appCtx *app.Context) (*mqtt.Client, error) {
	settings := &appCtx.Settings.MQTT
	if !settings.Enabled {
		return nil, fmt.Errorf("--publish needs mqtt.enabled in the configuration")
	}
	client, err := mqtt.NewClient(mqtt.ConfigFromSettings(settings), mqtt.WithMetrics(appCtx.Metrics.MQTT))
	if err != nil {
		return nil, err
	}
	if err := client.Connect(ctx); err != nil {
		return nil, err
	}
	return client, nil
}

func printEvents(w io.Writer, path string, events []sherpa.AudioEvent) error {
	fmt.Fprintf(w, "%s\n", path)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, e := range events {
		fmt.Fprintf(tw, "  %d\t%s\t%d\t%.3f\n", i+1, e.Name, e.Index, e.Prob)
	}
	return tw.Flush()
}
