// env.go - environment variable configuration and validation
package conf

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/tphakala/sherpa-go/internal/sherpa"
)

const envPrefix = "SHERPA"

// envBinding holds metadata for one environment variable binding.
type envBinding struct {
	ConfigKey string
	EnvVar    string
	Validate  func(string) error
}

// getEnvBindings returns the explicitly validated environment variables.
// Every other key is still reachable through SHERPA_<SECTION>_<KEY>.
func getEnvBindings() []envBinding {
	return []envBinding{
		{"engine.provider", "SHERPA_ENGINE_PROVIDER", validateEnvProvider},
		{"engine.threads", "SHERPA_ENGINE_THREADS", validateEnvThreads},
		{"engine.debug", "SHERPA_ENGINE_DEBUG", validateEnvBool},
		{"tagging.topk", "SHERPA_TAGGING_TOPK", validateEnvTopK},
		{"server.listen", "SHERPA_SERVER_LISTEN", validateListenAddress},
		{"telemetry.dsn", "SHERPA_TELEMETRY_DSN", nil},
		{"mqtt.password", "SHERPA_MQTT_PASSWORD", nil},
	}
}

// configureEnvironmentVariables maps tts.backend to SHERPA_TTS_BACKEND.
func configureEnvironmentVariables() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// bindEnvVars binds the explicit variables and validates the ones that are set.
func bindEnvVars() error {
	var warnings []string

	for _, binding := range getEnvBindings() {
		if err := viper.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("failed to bind %s: %v", binding.EnvVar, err))
			continue
		}
		if binding.Validate == nil {
			continue
		}
		if value := os.Getenv(binding.EnvVar); value != "" {
			if err := binding.Validate(value); err != nil {
				warnings = append(warnings, fmt.Sprintf("invalid %s value %q: %v", binding.EnvVar, value, err))
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}
	return nil
}

func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(value); err != nil {
		return fmt.Errorf("must be true or false")
	}
	return nil
}

func validateEnvProvider(value string) error {
	if !isKnownProvider(value) {
		return fmt.Errorf("must be one of %s", strings.Join(knownProviders, ", "))
	}
	return nil
}

func validateEnvThreads(value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("must be an integer")
	}
	if n < -1 {
		return fmt.Errorf("must be -1 (auto), 0 (default) or positive")
	}
	return nil
}

func validateEnvTopK(value string) error {
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 || n > sherpa.MaxTopK {
		return fmt.Errorf("must be an integer between 1 and %d", sherpa.MaxTopK)
	}
	return nil
}
