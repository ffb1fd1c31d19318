package flowmix

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// RunnerConfig holds the handful of knobs a host embedding flowmix might
// want to tune from the environment instead of hardcoding: no CLI is built
// around it, [LoadRunnerConfig] is meant to be called from whatever
// entrypoint the host already has.
type RunnerConfig struct {
	LogLevel       string
	StreamReadSize int
	SequenceLimit  int
	PageLimit      int
}

func defaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		LogLevel:       "info",
		StreamReadSize: 32 * 1024,
		SequenceLimit:  -1,
		PageLimit:      -1,
	}
}

// LoadRunnerConfig loads a [RunnerConfig] from an optional .env file at
// envPath (ignored if it doesn't exist) plus environment variables
// prefixed FLOWMIX_, e.g. FLOWMIX_LOG_LEVEL, FLOWMIX_STREAM_READ_SIZE,
// FLOWMIX_SEQUENCE_LIMIT, FLOWMIX_PAGE_LIMIT. Any knob left unset keeps its
// documented default.
func LoadRunnerConfig(envPath string) (RunnerConfig, error) {
	if envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return RunnerConfig{}, &ConfigError{Field: "envPath", Reason: err.Error()}
			}
		}
	}

	v := viper.New()
	v.SetEnvPrefix("flowmix")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := defaultRunnerConfig()

	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("stream_read_size", cfg.StreamReadSize)
	v.SetDefault("sequence_limit", cfg.SequenceLimit)
	v.SetDefault("page_limit", cfg.PageLimit)

	cfg.LogLevel = v.GetString("log_level")
	cfg.StreamReadSize = v.GetInt("stream_read_size")
	cfg.SequenceLimit = v.GetInt("sequence_limit")
	cfg.PageLimit = v.GetInt("page_limit")

	return cfg, nil
}
