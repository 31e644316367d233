package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"govwatcher/internal/domain"
)

const (
	configPathEnv    = "GOVWATCHER_CONFIG"
	openAIKeyEnv     = "OPENAI_API_KEY"
	slackWebhookEnv  = "SLACK_WEBHOOK_URL"
	databaseDSNEnv   = "DATABASE_DSN"
	smtpPasswordEnv  = "SMTP_PASSWORD"
	defaultCap       = 1000
	defaultInterval  = 5.0
	defaultThreshold = 300
)

// Config holds high-level settings required across the application.
type Config struct {
	General       GeneralConfig       `yaml:"general"`
	Retention     RetentionConfig     `yaml:"retention"`
	Database      DatabaseConfig      `yaml:"database"`
	Cache         CacheConfig         `yaml:"cache"`
	Notification  NotificationConfig  `yaml:"notification"`
	OpenAI        OpenAIConfig        `yaml:"openai"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Sources       []SourceConfig      `yaml:"sources"`
}

// GeneralConfig covers process-wide paths and logging.
type GeneralConfig struct {
	DataDir  string `yaml:"dataDir"`
	LogLevel string `yaml:"logLevel"`
}

// RetentionConfig bounds the ledger sweep; zero disables it.
type RetentionConfig struct {
	Days int `yaml:"days"`
}

// DatabaseConfig selects the Postgres artifact store when a DSN is set;
// otherwise artifacts live on the filesystem under DataDir.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// CacheConfig exposes the stage-cache epoch. An empty epoch keeps keys
// byte-compatible with previously written artifacts; changing it
// invalidates every cached stage at once.
type CacheConfig struct {
	Epoch string `yaml:"epoch"`
}

// NotificationConfig selects the outbound channel.
type NotificationConfig struct {
	Enabled bool        `yaml:"enabled"`
	Method  string      `yaml:"method"` // cli | slack | email
	Slack   SlackConfig `yaml:"slack"`
	Email   EmailConfig `yaml:"email"`
}

// SlackConfig wires the incoming-webhook transport.
type SlackConfig struct {
	WebhookURL string `yaml:"webhookUrl"`
	Channel    string `yaml:"channel"`
}

// EmailConfig wires the SMTP transport.
type EmailConfig struct {
	Host     string   `yaml:"host"`
	Port     int      `yaml:"port"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	From     string   `yaml:"from"`
	To       []string `yaml:"to"`
}

// OpenAIConfig defines how to contact the summarization API.
type OpenAIConfig struct {
	Endpoint             string `yaml:"endpoint"`
	Model                string `yaml:"model"`
	APIKey               string `yaml:"apiKey"`
	SystemPrompt         string `yaml:"systemPrompt"`
	SummaryMaxLength     int    `yaml:"summaryMaxLength"`
	PassThroughThreshold int    `yaml:"passThroughThreshold"`
}

// TranscriptionConfig defines the speech-to-text API.
type TranscriptionConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"apiKey"`
	Language string `yaml:"language"`
}

// SourceConfig is the raw YAML form of one watched source. validate turns
// it into a domain.SourceDescriptor or rejects it at load time.
type SourceConfig struct {
	Name            string   `yaml:"name"`
	Kind            string   `yaml:"kind"`
	URL             string   `yaml:"url"`
	Selector        string   `yaml:"selector"`
	CaptureInterval *float64 `yaml:"captureInterval"`
	Summarize       *bool    `yaml:"summarize"`
	Enabled         *bool    `yaml:"enabled"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides. A missing or broken config file falls back to defaults with a
// warning on stderr; source validation failures are returned because a
// half-validated source list must not silently shrink.
func Load() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "config: cannot read %s: %v (falling back to defaults)\n", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				fmt.Fprintf(os.Stderr, "config: cannot parse %s: %v (falling back to defaults)\n", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	if _, err := cfg.Descriptors(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Descriptors validates every configured source and returns the closed
// variant forms the discovery engine consumes.
func (c Config) Descriptors() ([]domain.SourceDescriptor, error) {
	descriptors := make([]domain.SourceDescriptor, 0, len(c.Sources))
	for i, src := range c.Sources {
		desc, err := src.validate()
		if err != nil {
			return nil, fmt.Errorf("source %d (%s): %w", i, src.Name, err)
		}
		descriptors = append(descriptors, desc)
	}
	return descriptors, nil
}

func (s SourceConfig) validate() (domain.SourceDescriptor, error) {
	var desc domain.SourceDescriptor

	kind, err := parseKind(s.Kind)
	if err != nil {
		return desc, err
	}
	if s.Name == "" {
		return desc, fmt.Errorf("name is required")
	}
	if s.URL == "" {
		return desc, fmt.Errorf("url is required")
	}

	switch kind {
	case domain.KindFeed:
		if s.Selector != "" {
			return desc, fmt.Errorf("feed sources do not take a selector")
		}
	case domain.KindPage:
		if s.Selector == "" {
			return desc, fmt.Errorf("page sources require a selector")
		}
	case domain.KindVideo:
		// Selector optional: without one the whole page is scanned.
	}

	desc = domain.SourceDescriptor{
		Name:            s.Name,
		Kind:            kind,
		URL:             s.URL,
		Selector:        s.Selector,
		CaptureInterval: defaultInterval,
		Summarize:       true,
		Enabled:         true,
	}
	if s.CaptureInterval != nil {
		if *s.CaptureInterval <= 0 {
			return desc, fmt.Errorf("captureInterval must be positive")
		}
		desc.CaptureInterval = *s.CaptureInterval
	}
	if s.Summarize != nil {
		desc.Summarize = *s.Summarize
	}
	if s.Enabled != nil {
		desc.Enabled = *s.Enabled
	}
	return desc, nil
}

func parseKind(raw string) (domain.SourceKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "feed", "rss":
		return domain.KindFeed, nil
	case "page", "html":
		return domain.KindPage, nil
	case "video":
		return domain.KindVideo, nil
	}
	return "", fmt.Errorf("unknown kind %q (want feed, page, or video)", raw)
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(openAIKeyEnv); v != "" {
		c.OpenAI.APIKey = v
		if c.Transcription.APIKey == "" {
			c.Transcription.APIKey = v
		}
	}
	if v := os.Getenv(slackWebhookEnv); v != "" {
		c.Notification.Slack.WebhookURL = v
	}
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(smtpPasswordEnv); v != "" {
		c.Notification.Email.Password = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.General.DataDir != "" {
		base.General.DataDir = override.General.DataDir
	}
	if override.General.LogLevel != "" {
		base.General.LogLevel = override.General.LogLevel
	}
	if override.Retention.Days != 0 {
		base.Retention = override.Retention
	}
	if override.Database.DSN != "" {
		base.Database = override.Database
	}
	if override.Cache.Epoch != "" {
		base.Cache = override.Cache
	}

	if override.Notification.Method != "" {
		base.Notification.Method = override.Notification.Method
		base.Notification.Enabled = override.Notification.Enabled
	}
	if override.Notification.Slack.WebhookURL != "" {
		base.Notification.Slack = override.Notification.Slack
	}
	if override.Notification.Email.Host != "" {
		base.Notification.Email = override.Notification.Email
	}

	if override.OpenAI.Endpoint != "" {
		base.OpenAI.Endpoint = override.OpenAI.Endpoint
	}
	if override.OpenAI.Model != "" {
		base.OpenAI.Model = override.OpenAI.Model
	}
	if override.OpenAI.APIKey != "" {
		base.OpenAI.APIKey = override.OpenAI.APIKey
	}
	if override.OpenAI.SystemPrompt != "" {
		base.OpenAI.SystemPrompt = override.OpenAI.SystemPrompt
	}
	if override.OpenAI.SummaryMaxLength > 0 {
		base.OpenAI.SummaryMaxLength = override.OpenAI.SummaryMaxLength
	}
	if override.OpenAI.PassThroughThreshold > 0 {
		base.OpenAI.PassThroughThreshold = override.OpenAI.PassThroughThreshold
	}

	if override.Transcription.Endpoint != "" {
		base.Transcription.Endpoint = override.Transcription.Endpoint
	}
	if override.Transcription.Model != "" {
		base.Transcription.Model = override.Transcription.Model
	}
	if override.Transcription.APIKey != "" {
		base.Transcription.APIKey = override.Transcription.APIKey
	}
	if override.Transcription.Language != "" {
		base.Transcription.Language = override.Transcription.Language
	}

	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}

	return base
}

func defaultConfig() Config {
	return Config{
		General: GeneralConfig{
			DataDir:  "data",
			LogLevel: "info",
		},
		Retention: RetentionConfig{Days: 0},
		Notification: NotificationConfig{
			Enabled: true,
			Method:  "cli",
			Slack:   SlackConfig{Channel: "#notifications"},
		},
		OpenAI: OpenAIConfig{
			Endpoint:             "https://api.openai.com/v1/chat/completions",
			Model:                "gpt-4o-mini",
			SystemPrompt:         "You summarize official government video transcripts. Keep every policy, regulation, and procedural detail.",
			SummaryMaxLength:     defaultCap,
			PassThroughThreshold: defaultThreshold,
		},
		Transcription: TranscriptionConfig{
			Endpoint: "https://api.openai.com/v1/audio/transcriptions",
			Model:    "whisper-1",
			Language: "ja",
		},
	}
}
