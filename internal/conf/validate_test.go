package conf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/sherpa-go/internal/sherpa"
)

func validSettings() *Settings {
	return &Settings{
		Engine:  EngineSettings{Provider: "cpu"},
		TTS:     TTSSettings{Enabled: true, Backend: "zipvoice", Speed: 1, NumSteps: 4, TargetRms: 0.5},
		ASR:     ASRSettings{Enabled: true, Backend: "whisper", Task: "transcribe"},
		Tagging: TaggingSettings{Enabled: true, Backend: "zipformer", TopK: 5},
		Server:  ServerSettings{Listen: ":8080", CacheTTL: time.Minute, MaxUploadSize: "32M"},
		MQTT:    MQTTSettings{Broker: "tcp://localhost:1883", Topic: "tags"},
	}
}

func TestValidateSettings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(s *Settings)
		wantErr string
	}{
		{"valid", func(*Settings) {}, ""},
		{"unknown provider", func(s *Settings) { s.Engine.Provider = "tpu" }, "engine.provider"},
		{"provider is case insensitive", func(s *Settings) { s.Engine.Provider = "CUDA" }, ""},
		{"auto threads", func(s *Settings) { s.Engine.Threads = -1 }, ""},
		{"negative threads", func(s *Settings) { s.Engine.Threads = -2 }, "engine.threads"},
		{"unknown tts backend", func(s *Settings) { s.TTS.Backend = "piper" }, "tts.backend"},
		{"disabled tts is not checked", func(s *Settings) { s.TTS.Enabled = false; s.TTS.Backend = "piper" }, ""},
		{"negative speed", func(s *Settings) { s.TTS.Speed = -1 }, "tts.speed"},
		{"unknown asr backend", func(s *Settings) { s.ASR.Backend = "vosk" }, "asr.backend"},
		{"whisper translate", func(s *Settings) { s.ASR.Task = "translate" }, ""},
		{"whisper bad task", func(s *Settings) { s.ASR.Task = "summarize" }, "asr.task"},
		{"unknown tagging backend", func(s *Settings) { s.Tagging.Backend = "panns" }, "tagging.backend"},
		{"top k below one", func(s *Settings) { s.Tagging.TopK = 0 }, "tagging.topk"},
		{"top k above maximum", func(s *Settings) { s.Tagging.TopK = sherpa.MaxTopK + 1 }, "tagging.topk"},
		{"listen without port", func(s *Settings) { s.Server.Listen = "localhost" }, "server.listen"},
		{"listen port out of range", func(s *Settings) { s.Server.Listen = ":70000" }, "server.listen"},
		{"bad upload size", func(s *Settings) { s.Server.MaxUploadSize = "lots" }, "server.maxuploadsize"},
		{"mqtt broker without scheme", func(s *Settings) { s.MQTT.Enabled = true; s.MQTT.Broker = "localhost:1883" }, "mqtt.broker"},
		{"mqtt qos", func(s *Settings) { s.MQTT.Enabled = true; s.MQTT.QoS = 3 }, "mqtt.qos"},
		{"telemetry without dsn", func(s *Settings) { s.Telemetry.Enabled = true }, "telemetry.dsn"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := validSettings()
			tt.mutate(s)

			err := ValidateSettings(s)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateSettingsCollectsAllErrors(t *testing.T) {
	t.Parallel()

	s := validSettings()
	s.Engine.Threads = -5
	s.Tagging.TopK = -1
	s.Server.Listen = "bad"

	err := ValidateSettings(s)
	var ve ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Errors, 3)
}

func TestEnvValidators(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validateEnvBool("true"))
	assert.Error(t, validateEnvBool("yes please"))
	assert.NoError(t, validateEnvProvider("coreml"))
	assert.Error(t, validateEnvProvider("abacus"))
	assert.NoError(t, validateEnvThreads("-1"))
	assert.Error(t, validateEnvThreads("-2"))
	assert.Error(t, validateEnvThreads("four"))
	assert.NoError(t, validateEnvTopK("3"))
	assert.Error(t, validateEnvTopK("0"))
	assert.Error(t, validateEnvTopK("4294967299"))
}
