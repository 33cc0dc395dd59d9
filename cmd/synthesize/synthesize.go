// Package synthesize implements the synthesize command.
package synthesize

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tphakala/sherpa-go/internal/app"
	"github.com/tphakala/sherpa-go/internal/audiofile"
	"github.com/tphakala/sherpa-go/internal/sherpa"
)

type options struct {
	output      string
	speakerID   int
	speed       float32
	numSteps    int
	promptText  string
	promptAudio string
}

// Command creates the synthesize command.
func Command(ctx *app.Context) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "synthesize [text]",
		Short: "Synthesize speech into a WAV file",
		Long: `Synthesize text with the configured TTS backend and write 16-bit mono WAV.
The zipvoice backend clones the voice of --prompt-audio, which must be
accompanied by its transcript in --prompt-text.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			applyDefaults(cmd, ctx, opts)
			return run(cmd, ctx, opts, strings.Join(args, " "))
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.output, "output", "o", "output.wav", "Output WAV file")
	flags.IntVar(&opts.speakerID, "sid", 0, "Speaker ID for multi-speaker models (default from config)")
	flags.Float32Var(&opts.speed, "speed", 1, "Speech speed, larger is faster (default from config)")
	flags.IntVar(&opts.numSteps, "num-steps", 4, "Flow matching steps for zipvoice (default from config)")
	flags.StringVar(&opts.promptText, "prompt-text", "", "Transcript of the prompt audio (zipvoice)")
	flags.StringVar(&opts.promptAudio, "prompt-audio", "", "Prompt WAV or FLAC file (zipvoice)")

	return cmd
}

// applyDefaults fills flags the user did not set from the loaded settings.
func applyDefaults(cmd *cobra.Command, ctx *app.Context, opts *options) {
	tts := &ctx.Settings.TTS
	if !cmd.Flags().Changed("sid") {
		opts.speakerID = tts.SpeakerID
	}
	if !cmd.Flags().Changed("speed") && tts.Speed > 0 {
		opts.speed = tts.Speed
	}
	if !cmd.Flags().Changed("num-steps") && tts.NumSteps > 0 {
		opts.numSteps = tts.NumSteps
	}
}

func run(cmd *cobra.Command, ctx *app.Context, opts *options, text string) error {
	tts, err := ctx.NewSynthesizer()
	if err != nil {
		return err
	}
	defer tts.Close()

	var audio *sherpa.AudioBuffer
	if tts.Backend() == "zipvoice" {
		if opts.promptAudio == "" || opts.promptText == "" {
			return fmt.Errorf("the zipvoice backend needs --prompt-audio and --prompt-text")
		}
		prompt, err := audiofile.Read(opts.promptAudio)
		if err != nil {
			return err
		}
		audio, err = tts.GenerateWithZipvoice(sherpa.ZipvoiceRequest{
			Text:             text,
			PromptText:       opts.promptText,
			PromptSamples:    prompt.Samples,
			PromptSampleRate: prompt.SampleRate,
			Speed:            opts.speed,
			NumSteps:         opts.numSteps,
		})
		if err != nil {
			return err
		}
	} else {
		audio, err = tts.Generate(text, opts.speakerID, opts.speed)
		if err != nil {
			return err
		}
	}

	if err := audiofile.WriteWAV(opts.output, audio.Samples, audio.SampleRate); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %.2f s of %d Hz audio to %s\n",
		audio.DurationExact().Seconds(), audio.SampleRate, opts.output)
	return nil
}
