// Package transcribe implements the transcribe command.
package transcribe

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tphakala/sherpa-go/internal/app"
	"github.com/tphakala/sherpa-go/internal/audiofile"
)

type result struct {
	File       string    `json:"file"`
	Text       string    `json:"text"`
	Timestamps []float32 `json:"timestamps,omitempty"`
	Lang       string    `json:"lang,omitempty"`
	Emotion    string    `json:"emotion,omitempty"`
	Event      string    `json:"event,omitempty"`
}

// Command creates the transcribe command.
func Command(ctx *app.Context) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "transcribe [file...]",
		Short: "Transcribe WAV or FLAC files",
		Long:  `Transcribe each file with the configured offline recognizer. Files are decoded and downmixed to mono first.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := ctx.NewRecognizer()
			if err != nil {
				return err
			}
			defer rec.Close()

			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, path := range args {
				audio, err := audiofile.Read(path)
				if err != nil {
					return err
				}
				r, err := rec.Transcribe(audio.SampleRate, audio.Samples)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}

				if asJSON {
					if err := enc.Encode(result{
						File: path, Text: r.Text, Timestamps: r.Timestamps,
						Lang: r.Lang, Emotion: r.Emotion, Event: r.Event,
					}); err != nil {
						return err
					}
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", path, r.Text)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print one JSON object per file")
	return cmd
}
