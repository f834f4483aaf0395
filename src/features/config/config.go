package config

// Config holds the dispatcher configuration. It is loaded once and treated as
// read-only for the rest of the run.
type Config struct {
	Format         string   `yaml:"format" toml:"format" validate:"required"`
	Move           bool     `yaml:"move" toml:"move"` // If not copies
	DryRun         bool     `yaml:"dry_run" toml:"dry_run"`
	Workers        int      `yaml:"workers" toml:"workers" validate:"min=1,max=64"`
	StrictTemplate bool     `yaml:"strict_template" toml:"strict_template"`
	Asciify        bool     `yaml:"asciify" toml:"asciify"`
	PruneEmptyDirs bool     `yaml:"prune_empty_dirs" toml:"prune_empty_dirs"`
	Logger         Logger   `yaml:"logger" toml:"logger"`
	History        History  `yaml:"history" toml:"history"`
	Server         Server   `yaml:"server" toml:"server"`
	Watch          Watch    `yaml:"watch" toml:"watch"`
	Telegram       Telegram `yaml:"telegram" toml:"telegram"`
}

// Logger holds the configuration for the app logging
type Logger struct {
	Level  string `yaml:"level" toml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" toml:"format" validate:"oneof=text logfmt json"`
}

// History configures the SQLite journal of dispatch results.
type History struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Path    string `yaml:"path" toml:"path" validate:"required_if=Enabled true"`
}

// Server hold the configuration for the metrics and health endpoints
type Server struct {
	Enabled     bool   `yaml:"enabled" toml:"enabled"`
	Port        uint32 `yaml:"port" toml:"port" validate:"max=65535"`
	PrintRoutes bool   `yaml:"show_routes" toml:"show_routes"`
}

// Watch keeps the dispatcher running after the initial walk.
type Watch struct {
	Enabled       bool `yaml:"enabled" toml:"enabled"`
	DebounceSecs  int  `yaml:"debounce_secs" toml:"debounce_secs" validate:"min=0,max=3600"`
	IncludeWrites bool `yaml:"include_writes" toml:"include_writes"`
}

// Telegram sends a run summary to the given chats.
type Telegram struct {
	Enabled bool    `yaml:"enabled" toml:"enabled"`
	Token   string  `yaml:"token" toml:"token" validate:"required_if=Enabled true"`
	ChatIDs []int64 `yaml:"chat_ids" toml:"chat_ids" validate:"required_if=Enabled true"`
}
