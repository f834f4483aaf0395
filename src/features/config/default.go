package config

var defaultConfig = Config{
	Format:         "%a/%A/%t - %T",
	Move:           false,
	DryRun:         false,
	Workers:        1,
	StrictTemplate: false,
	Asciify:        false,
	PruneEmptyDirs: false,
	Logger: Logger{
		Level:  "info",
		Format: "text",
	},
	History: History{
		Enabled: false,
		Path:    "./dispatch-history.db",
	},
	Server: Server{
		Enabled:     false,
		Port:        3535,
		PrintRoutes: false,
	},
	Watch: Watch{
		Enabled:       false,
		DebounceSecs:  5,
		IncludeWrites: true,
	},
	Telegram: Telegram{
		Enabled: false,
		Token:   "", // Can be obtained with https://t.me/BotFather
	},
}

// Default returns a fresh copy of the default configuration.
func Default() *Config {
	cfg := defaultConfig
	cfg.Telegram.ChatIDs = nil
	return &cfg
}
