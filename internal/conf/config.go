// config.go: settings struct and the functions that load and save it.
package conf

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tphakala/sherpa-go/internal/errors"
	"github.com/tphakala/sherpa-go/internal/logger"
)

//go:embed config.yaml
var configFiles embed.FS

// MainSettings holds process wide settings.
type MainSettings struct {
	Name string               `yaml:"name"`
	Log  logger.LoggingConfig `yaml:"log"`
}

// EngineSettings are the onnxruntime settings shared by every model family.
type EngineSettings struct {
	Provider string `yaml:"provider"` // cpu, cuda, coreml
	Threads  int    `yaml:"threads"`  // 0 = family default, -1 = detect from CPU
	Debug    bool   `yaml:"debug"`
}

// TTSSettings selects and tunes the synthesis backend. Paths that do not
// apply to the selected backend are ignored.
type TTSSettings struct {
	Enabled bool   `yaml:"enabled"`
	Backend string `yaml:"backend"` // vits, matcha, kokoro, kitten, zipvoice

	Model             string `yaml:"model"`
	AcousticModel     string `yaml:"acousticmodel"`
	Vocoder           string `yaml:"vocoder"`
	TextModel         string `yaml:"textmodel"`
	FlowMatchingModel string `yaml:"flowmatchingmodel"`
	Voices            string `yaml:"voices"`
	Tokens            string `yaml:"tokens"`
	Lexicon           string `yaml:"lexicon"`
	DataDir           string `yaml:"datadir"`
	DictDir           string `yaml:"dictdir"`
	PinyinDict        string `yaml:"pinyindict"`
	Lang              string `yaml:"lang"`

	NoiseScale    float32 `yaml:"noisescale"`
	NoiseScaleW   float32 `yaml:"noisescalew"`
	LengthScale   float32 `yaml:"lengthscale"`
	FeatScale     float32 `yaml:"featscale"`
	TShift        float32 `yaml:"tshift"`
	TargetRms     float32 `yaml:"targetrms"`
	GuidanceScale float32 `yaml:"guidancescale"`

	MaxNumSentences int     `yaml:"maxnumsentences"`
	RuleFsts        string  `yaml:"rulefsts"`
	RuleFars        string  `yaml:"rulefars"`
	SilenceScale    float32 `yaml:"silencescale"`

	// Request defaults
	SpeakerID int     `yaml:"speakerid"`
	Speed     float32 `yaml:"speed"`
	NumSteps  int     `yaml:"numsteps"` // zipvoice flow matching steps
}

// ASRSettings selects and tunes the offline recognizer.
type ASRSettings struct {
	Enabled bool   `yaml:"enabled"`
	Backend string `yaml:"backend"` // whisper, transducer, paraformer, nemo_ctc, tdnn, sense_voice, telespeech_ctc

	Encoder      string `yaml:"encoder"`
	Decoder      string `yaml:"decoder"`
	Joiner       string `yaml:"joiner"`
	Model        string `yaml:"model"`
	Tokens       string `yaml:"tokens"`
	Language     string `yaml:"language"`
	Task         string `yaml:"task"`
	TailPaddings int    `yaml:"tailpaddings"`
	UseItn       bool   `yaml:"useitn"`

	DecodingMethod string  `yaml:"decodingmethod"`
	MaxActivePaths int     `yaml:"maxactivepaths"`
	FeatSampleRate int     `yaml:"featsamplerate"`
	FeatureDim     int     `yaml:"featuredim"`
	ModelType      string  `yaml:"modeltype"`
	ModelingUnit   string  `yaml:"modelingunit"`
	BpeVocab       string  `yaml:"bpevocab"`
	HotwordsFile   string  `yaml:"hotwordsfile"`
	HotwordsScore  float32 `yaml:"hotwordsscore"`
	RuleFsts       string  `yaml:"rulefsts"`
	RuleFars       string  `yaml:"rulefars"`
}

// TaggingSettings selects the audio tagging model.
type TaggingSettings struct {
	Enabled bool   `yaml:"enabled"`
	Backend string `yaml:"backend"` // zipformer, ced
	Model   string `yaml:"model"`
	Labels  string `yaml:"labels"`
	TopK    int    `yaml:"topk"`
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	Listen        string        `yaml:"listen"`
	CacheTTL      time.Duration `yaml:"cachettl"`
	MaxUploadSize string        `yaml:"maxuploadsize"` // echo body limit, e.g. 32M
	Metrics       bool          `yaml:"metrics"`
}

// TelemetrySettings configures error reporting.
type TelemetrySettings struct {
	Enabled     bool   `yaml:"enabled"`
	DSN         string `yaml:"dsn"`
	Environment string `yaml:"environment"`
}

// MQTTSettings configures publishing of tagging results.
type MQTTSettings struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"clientid"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	QoS      byte   `yaml:"qos"`
	Retain   bool   `yaml:"retain"`
}

// Settings contains all configuration options.
type Settings struct {
	// Debug turns on debug logging and onnxruntime debug output.
	Debug bool `yaml:"debug"`

	Main      MainSettings      `yaml:"main"`
	Engine    EngineSettings    `yaml:"engine"`
	TTS       TTSSettings       `yaml:"tts"`
	ASR       ASRSettings       `yaml:"asr"`
	Tagging   TaggingSettings   `yaml:"tagging"`
	Server    ServerSettings    `yaml:"server"`
	Telemetry TelemetrySettings `yaml:"telemetry"`
	MQTT      MQTTSettings      `yaml:"mqtt"`
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into a new
// Settings. An empty configFile searches the default config paths and writes
// the embedded default config there when none is found.
func Load(configFile string) (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	if err := initViper(configFile); err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryConfiguration).
			Context("operation", "init-viper").
			Build()
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryConfiguration).
			Context("operation", "unmarshal-config").
			Build()
	}

	applyDebug(settings)

	if err := ValidateSettings(settings); err != nil {
		return nil, err
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// applyDebug raises every log output to debug and enables engine debug output
// when the top level debug switch is set.
func applyDebug(s *Settings) {
	if !s.Debug {
		return
	}
	s.Engine.Debug = true
	s.Main.Log.DefaultLevel = "debug"
	if s.Main.Log.Console != nil {
		s.Main.Log.Console.Level = "debug"
	}
	if s.Main.Log.FileOutput != nil {
		s.Main.Log.FileOutput.Level = "debug"
	}
}

// initViper sets defaults and environment bindings and reads the config file.
func initViper(configFile string) error {
	viper.SetConfigType("yaml")
	setDefaultConfig()
	configureEnvironmentVariables()

	if err := bindEnvVars(); err != nil {
		GetLogger().Warn("environment variable issues", logger.Error(err))
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
		return viper.ReadInConfig()
	}

	viper.SetConfigName("config")
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return err
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	err = viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return createDefaultConfig(configPaths[0])
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}
	return nil
}

// createDefaultConfig writes the embedded default config into dir and reads it.
func createDefaultConfig(dir string) error {
	configPath := filepath.Join(dir, "config.yaml")

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.New(err).
			Category(errors.CategoryFileIO).
			Context("operation", "create-config-dir").
			FileContext(dir, 0).
			Build()
	}
	if err := os.WriteFile(configPath, []byte(getDefaultConfig()), 0o644); err != nil {
		return errors.New(err).
			Category(errors.CategoryFileIO).
			Context("operation", "write-default-config").
			FileContext(configPath, 0).
			Build()
	}

	GetLogger().Info("created default config file", logger.String("path", configPath))
	viper.SetConfigFile(configPath)
	return viper.ReadInConfig()
}

// getDefaultConfig returns the embedded default config.yaml.
func getDefaultConfig() string {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		// the file is compiled in, a read failure is a build defect
		panic(fmt.Sprintf("conf: embedded config.yaml: %v", err))
	}
	return string(data)
}

// GetSettings returns the settings loaded by the last successful Load.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// SaveYAMLConfig writes settings to configPath through a temporary file so a
// crash never leaves a truncated config behind.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return errors.New(err).
			Category(errors.CategoryConfiguration).
			Context("operation", "marshal-config").
			Build()
	}

	tempFile, err := os.CreateTemp(filepath.Dir(configPath), "config-*.yaml")
	if err != nil {
		return errors.New(err).
			Category(errors.CategoryFileIO).
			Context("operation", "create-temp-config").
			Build()
	}
	tempFileName := tempFile.Name()
	defer os.Remove(tempFileName)

	if _, err := tempFile.Write(yamlData); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("error writing to temporary file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}

	if err := os.Rename(tempFileName, configPath); err != nil {
		return errors.New(err).
			Category(errors.CategoryFileIO).
			Context("operation", "replace-config").
			FileContext(configPath, int64(len(yamlData))).
			Build()
	}
	return nil
}
