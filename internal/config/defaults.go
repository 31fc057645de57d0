package config

const (
	defaultOutputDir = "outputs"
	defaultBitrate   = "192k"
	defaultModel     = "htdemucs"
	defaultDevice    = "auto"
	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Output: Output{
			Dir:     defaultOutputDir,
			Bitrate: defaultBitrate,
		},
		Separation: Separation{
			Model:  defaultModel,
			Device: defaultDevice,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
