package cmd

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/sherpa-go/internal/app"
	"github.com/tphakala/sherpa-go/internal/audiofile"
	"github.com/tphakala/sherpa-go/internal/buildinfo"
	"github.com/tphakala/sherpa-go/internal/logger"
	"github.com/tphakala/sherpa-go/internal/sherpa"
	"github.com/tphakala/sherpa-go/internal/sherpa/enginetest"
)

const testConfig = `
engine:
  provider: cpu
tts:
  backend: vits
  model: vits.onnx
  tokens: tokens.txt
asr:
  backend: sense_voice
  model: sense-voice.onnx
  tokens: tokens.txt
tagging:
  backend: zipformer
  model: tagging.onnx
  labels: labels.csv
  topk: 3
`

// execute runs the root command with args against a fake engine.
func execute(t *testing.T, args ...string) (string, *enginetest.Engine, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(func() {
		viper.Reset()
		logger.SetGlobal(nil)
		sherpa.SetDefaultProvider("")
		sherpa.SetMetrics(nil)
	})

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(testConfig), 0o600))

	e := enginetest.New()
	ctx := app.New(buildinfo.NewContext("test", ""), e)
	root, err := RootCommand(ctx)
	require.NoError(t, err)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	err = root.Execute()
	require.NoError(t, ctx.Close())
	return out.String(), e, err
}

func writeClip(t *testing.T, seconds float64) string {
	t.Helper()
	const rate = 16000
	samples := make([]float32, int(seconds*rate))
	for i := range samples {
		samples[i] = float32(0.3 * math.Sin(2*math.Pi*220*float64(i)/rate))
	}
	path := filepath.Join(t.TempDir(), "clip.wav")
	require.NoError(t, audiofile.WriteWAV(path, samples, rate))
	return path
}

func TestSynthesizeCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "hello.wav")

	stdout, e, err := execute(t, "synthesize", "-o", out, "--speed", "2", "hello")
	require.NoError(t, err, stdout)
	assert.Contains(t, stdout, "Saved 0.25 s of 22050 Hz audio")

	audio, err := audiofile.Read(out)
	require.NoError(t, err)
	assert.Equal(t, 22050, audio.SampleRate)
	assert.Len(t, audio.Samples, 5512)

	calls := e.Calls()
	require.Len(t, calls, 1)
	assert.InDelta(t, 2.0, calls[0].Speed, 0)
	assert.Zero(t, e.LiveObjects())
}

func TestTranscribeCommand(t *testing.T) {
	clip := writeClip(t, 1)

	stdout, e, err := execute(t, "transcribe", clip)
	require.NoError(t, err, stdout)
	assert.Equal(t, clip+": the quick brown fox\n", stdout)
	assert.Equal(t, []int{16000}, e.Accepted())
	assert.Zero(t, e.LiveObjects())
}

func TestTagCommandJSON(t *testing.T) {
	clip := writeClip(t, 0.5)

	stdout, e, err := execute(t, "tag", "--json", "--top-k", "5", clip)
	require.NoError(t, err, stdout)

	var got struct {
		File   string              `json:"file"`
		Events []sherpa.AudioEvent `json:"events"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, clip, got.File)
	assert.Equal(t, []string{"event-a", "event-b", "event-c", "event-d", "event-e"}, sherpa.Names(got.Events))
	assert.Zero(t, e.LiveObjects())
}

func TestTagCommandPublishNeedsMQTT(t *testing.T) {
	clip := writeClip(t, 0.5)

	_, e, err := execute(t, "tag", "--publish", clip)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mqtt.enabled")
	assert.Zero(t, e.LiveObjects())
}

func TestProviderFlagOverridesConfig(t *testing.T) {
	_, _, err := execute(t, "--provider", "cuda", "transcribe", writeClip(t, 0.1))
	require.NoError(t, err)
	assert.Equal(t, "cuda", sherpa.DefaultProvider())
}

func TestDebugFlagEnablesEngineDebug(t *testing.T) {
	_, e, err := execute(t, "--debug", "transcribe", writeClip(t, 0.1))
	require.NoError(t, err)

	cfgs := e.Configs()
	require.Len(t, cfgs, 1)
	assert.Equal(t, int32(1), cfgs[0]["ModelConfig.Debug"])
}

func TestEngineDebugOffByDefault(t *testing.T) {
	_, e, err := execute(t, "transcribe", writeClip(t, 0.1))
	require.NoError(t, err)

	cfgs := e.Configs()
	require.Len(t, cfgs, 1)
	assert.Equal(t, int32(0), cfgs[0]["ModelConfig.Debug"])
}
