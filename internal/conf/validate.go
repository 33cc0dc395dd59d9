// conf/validate.go

package conf

import (
	"fmt"
	"net"
	"slices"
	"strconv"
	"strings"

	"github.com/labstack/gommon/bytes"

	"github.com/tphakala/sherpa-go/internal/sherpa"
)

var (
	knownProviders    = []string{"cpu", "cuda", "coreml", "directml", "trt"}
	ttsBackends       = []string{"vits", "matcha", "kokoro", "kitten", "zipvoice"}
	asrBackends       = []string{"whisper", "transducer", "paraformer", "nemo_ctc", "tdnn", "sense_voice", "telespeech_ctc"}
	taggingBackends   = []string{"zipformer", "ced"}
	mqttBrokerSchemes = []string{"tcp://", "ssl://", "tls://", "ws://", "wss://", "mqtt://", "mqtts://"}
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("validation errors: %s", strings.Join(ve.Errors, "; "))
}

// ValidateSettings validates the entire Settings struct and reports every
// problem it finds.
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}
	collect := func(errs []string) {
		ve.Errors = append(ve.Errors, errs...)
	}

	collect(validateEngineSettings(&settings.Engine))
	if settings.TTS.Enabled {
		collect(validateTTSSettings(&settings.TTS))
	}
	if settings.ASR.Enabled {
		collect(validateASRSettings(&settings.ASR))
	}
	if settings.Tagging.Enabled {
		collect(validateTaggingSettings(&settings.Tagging))
	}
	collect(validateServerSettings(&settings.Server))
	if settings.MQTT.Enabled {
		collect(validateMQTTSettings(&settings.MQTT))
	}
	if settings.Telemetry.Enabled && settings.Telemetry.DSN == "" {
		ve.Errors = append(ve.Errors, "telemetry.dsn is required when telemetry is enabled")
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func isKnownProvider(p string) bool {
	return slices.Contains(knownProviders, strings.ToLower(p))
}

func validateEngineSettings(s *EngineSettings) []string {
	var errs []string
	if s.Provider != "" && !isKnownProvider(s.Provider) {
		errs = append(errs, fmt.Sprintf("engine.provider %q is not one of %s", s.Provider, strings.Join(knownProviders, ", ")))
	}
	if s.Threads < -1 {
		errs = append(errs, "engine.threads must be -1 (auto), 0 (default) or positive")
	}
	return errs
}

func validateTTSSettings(s *TTSSettings) []string {
	var errs []string
	if !slices.Contains(ttsBackends, s.Backend) {
		return append(errs, fmt.Sprintf("tts.backend %q is not one of %s", s.Backend, strings.Join(ttsBackends, ", ")))
	}
	if s.Speed < 0 {
		errs = append(errs, "tts.speed must not be negative")
	}
	if s.NumSteps < 0 {
		errs = append(errs, "tts.numsteps must not be negative")
	}
	if s.MaxNumSentences < 0 {
		errs = append(errs, "tts.maxnumsentences must not be negative")
	}
	if s.Backend == "zipvoice" && s.TargetRms < 0 {
		errs = append(errs, "tts.targetrms must not be negative")
	}
	return errs
}

func validateASRSettings(s *ASRSettings) []string {
	var errs []string
	if !slices.Contains(asrBackends, s.Backend) {
		return append(errs, fmt.Sprintf("asr.backend %q is not one of %s", s.Backend, strings.Join(asrBackends, ", ")))
	}
	if s.Backend == "whisper" && s.Task != "" && s.Task != "transcribe" && s.Task != "translate" {
		errs = append(errs, fmt.Sprintf("asr.task %q must be transcribe or translate", s.Task))
	}
	if s.FeatSampleRate < 0 || s.FeatureDim < 0 || s.MaxActivePaths < 0 {
		errs = append(errs, "asr.featsamplerate, asr.featuredim and asr.maxactivepaths must not be negative")
	}
	return errs
}

func validateTaggingSettings(s *TaggingSettings) []string {
	var errs []string
	if !slices.Contains(taggingBackends, s.Backend) {
		errs = append(errs, fmt.Sprintf("tagging.backend %q is not one of %s", s.Backend, strings.Join(taggingBackends, ", ")))
	}
	if s.TopK < 1 || s.TopK > sherpa.MaxTopK {
		errs = append(errs, fmt.Sprintf("tagging.topk must be between 1 and %d, got %d", sherpa.MaxTopK, s.TopK))
	}
	return errs
}

func validateServerSettings(s *ServerSettings) []string {
	var errs []string
	if err := validateListenAddress(s.Listen); err != nil {
		errs = append(errs, fmt.Sprintf("server.listen: %v", err))
	}
	if s.CacheTTL < 0 {
		errs = append(errs, "server.cachettl must not be negative")
	}
	if s.MaxUploadSize != "" {
		if _, err := bytes.Parse(s.MaxUploadSize); err != nil {
			errs = append(errs, fmt.Sprintf("server.maxuploadsize %q is not a size like 32M", s.MaxUploadSize))
		}
	}
	return errs
}

func validateMQTTSettings(s *MQTTSettings) []string {
	var errs []string
	if !slices.ContainsFunc(mqttBrokerSchemes, func(scheme string) bool {
		return strings.HasPrefix(s.Broker, scheme)
	}) {
		errs = append(errs, fmt.Sprintf("mqtt.broker %q must start with a scheme such as tcp://", s.Broker))
	}
	if s.Topic == "" {
		errs = append(errs, "mqtt.topic must not be empty")
	}
	if s.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1 or 2")
	}
	return errs
}

// validateListenAddress accepts host:port with a numeric port.
func validateListenAddress(addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 0 || n > 65535 {
		return fmt.Errorf("invalid port %q", port)
	}
	return nil
}
