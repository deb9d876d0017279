package config

import "go.uber.org/zap/zapcore"

// Config holds the settings of a senro shell. Command-line flags take precedence.
type Config struct {
	LogLevel zapcore.Level `env:"SENRO_LOG_LEVEL" envDefault:"warn"`
	// Prompt is written before every command read; empty for none.
	Prompt string `env:"SENRO_PROMPT"`
	// Echo writes each command back before its output, for transcripts of piped input.
	Echo bool `env:"SENRO_ECHO" envDefault:"false"`
}

func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
