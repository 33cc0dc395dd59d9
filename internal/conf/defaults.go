// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "sherpa-go")
	viper.SetDefault("main.log.default_level", "info")
	viper.SetDefault("main.log.timezone", "Local")
	viper.SetDefault("main.log.console.enabled", true)
	viper.SetDefault("main.log.console.level", "info")
	viper.SetDefault("main.log.console.format", "text")
	viper.SetDefault("main.log.file_output.enabled", false)
	viper.SetDefault("main.log.file_output.path", "logs/sherpa-go.log")
	viper.SetDefault("main.log.file_output.level", "info")

	viper.SetDefault("engine.provider", "cpu")
	viper.SetDefault("engine.threads", 0)
	viper.SetDefault("engine.debug", false)

	viper.SetDefault("tts.enabled", true)
	viper.SetDefault("tts.backend", "zipvoice")
	viper.SetDefault("tts.featscale", 1.0)
	viper.SetDefault("tts.tshift", 1.0)
	viper.SetDefault("tts.targetrms", 0.5)
	viper.SetDefault("tts.guidancescale", 1.0)
	viper.SetDefault("tts.noisescale", 0.667)
	viper.SetDefault("tts.noisescalew", 0.8)
	viper.SetDefault("tts.lengthscale", 1.0)
	viper.SetDefault("tts.maxnumsentences", 1)
	viper.SetDefault("tts.silencescale", 0.2)
	viper.SetDefault("tts.speakerid", 0)
	viper.SetDefault("tts.speed", 1.0)
	viper.SetDefault("tts.numsteps", 4)

	viper.SetDefault("asr.enabled", true)
	viper.SetDefault("asr.backend", "whisper")
	viper.SetDefault("asr.language", "en")
	viper.SetDefault("asr.task", "transcribe")
	viper.SetDefault("asr.decodingmethod", "greedy_search")
	viper.SetDefault("asr.maxactivepaths", 4)
	viper.SetDefault("asr.featsamplerate", 16000)
	viper.SetDefault("asr.featuredim", 80)

	viper.SetDefault("tagging.enabled", true)
	viper.SetDefault("tagging.backend", "zipformer")
	viper.SetDefault("tagging.topk", 5)

	viper.SetDefault("server.listen", "127.0.0.1:8080")
	viper.SetDefault("server.cachettl", 10*time.Minute)
	viper.SetDefault("server.maxuploadsize", "32M")
	viper.SetDefault("server.metrics", true)

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.dsn", "")
	viper.SetDefault("telemetry.environment", "production")

	viper.SetDefault("mqtt.enabled", false)
	viper.SetDefault("mqtt.broker", "tcp://localhost:1883")
	viper.SetDefault("mqtt.topic", "sherpa-go/tags")
	viper.SetDefault("mqtt.clientid", "sherpa-go")
	viper.SetDefault("mqtt.qos", 0)
	viper.SetDefault("mqtt.retain", false)
}
