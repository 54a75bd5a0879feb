package config

const (
	defaultTablesDir            = "~/.local/share/basintab/tables"
	defaultLogDir               = "~/.local/share/basintab/logs"
	defaultTempDir              = "~/.local/share/basintab/tmp"
	defaultEngineBinary         = "Rscript"
	defaultEngineTimeoutSeconds = 3600
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultRounding             = "ceil"
	defaultTilesPerScene        = 1
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			TablesDir: defaultTablesDir,
			LogDir:    defaultLogDir,
			TempDir:   defaultTempDir,
		},
		Engine: Engine{
			Binary:         defaultEngineBinary,
			ExtraArgs:      []string{"--vanilla"},
			TimeoutSeconds: defaultEngineTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
