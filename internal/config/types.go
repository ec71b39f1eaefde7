package config

// Config is the whole configuration surface. It is decoded strictly: unknown
// keys are rejected so typos surface at startup instead of silently dropping
// a channel list.
//
// Channel-name lists distinguish absent from empty: an empty list resolves
// to zero channels, which the services report as an error without crashing.
type Config struct {
	Discord  DiscordConfig  `json:"discord"`
	Telegram TelegramConfig `json:"telegram,omitempty"`
	Source   SourceConfig   `json:"source"`
	Store    StoreConfig    `json:"store"`
	Announce AnnounceConfig `json:"announce"`
	DatePoll DatePollConfig `json:"datepoll"`
	Logging  LoggingConfig  `json:"logging"`

	// Timezone governs both schedule triggers. Defaults to Europe/Berlin.
	Timezone string `json:"timezone,omitempty"`
}

type DiscordConfig struct {
	Token string `json:"token"`
}

// TelegramConfig controls the optional announcement mirror.
type TelegramConfig struct {
	Enabled bool    `json:"enabled"`
	Token   string  `json:"token,omitempty"`
	ChatIDs []int64 `json:"chat_ids,omitempty"`
}

type SourceConfig struct {
	TZInfoURL     string `json:"tzinfo_url"`
	RuneWizardURL string `json:"runewizard_url"`
	APIToken      string `json:"api_token"`
	Contact       string `json:"contact"`
	Platform      string `json:"platform"`
	Repo          string `json:"repo"`
	// Timeout is a Go duration string (e.g. "8s").
	Timeout string `json:"timeout,omitempty"`
}

type StoreConfig struct {
	Driver string `json:"driver"`

	// mongo
	URI        string `json:"uri,omitempty"`
	Database   string `json:"database,omitempty"`
	Collection string `json:"collection,omitempty"`

	// sqlite
	Path        string `json:"path,omitempty"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string
}

type AnnounceConfig struct {
	Guilds   []string `json:"guilds"`
	Channels []string `json:"channels"`
	// Every is the poll interval as a Go duration string. Default "15s".
	Every      string `json:"every,omitempty"`
	RatePerSec int    `json:"rate_per_sec,omitempty"`
}

type DatePollConfig struct {
	Guilds   []string `json:"guilds"`
	Channels []string `json:"channels"`
	// Cron is a 5-field cron expression. Default "30 20 * * 6"
	// (every Saturday at 20:30).
	Cron string `json:"cron,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}
