package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Snapshot  SnapshotConfig  `yaml:"snapshot"`
	Remote    RemoteConfig    `yaml:"remote"`
	Sync      SyncConfig      `yaml:"sync"`
	Assistant AssistantConfig `yaml:"assistant"`
	Notify    NotifyConfig    `yaml:"notify"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type SnapshotConfig struct {
	Path string `yaml:"path"`
}

type RemoteConfig struct {
	ProjectID       string `yaml:"project_id"`
	CredentialsFile string `yaml:"credentials_file"`
	Namespace       string `yaml:"namespace"`
}

type SyncConfig struct {
	Freshness time.Duration `yaml:"freshness"`
	Debounce  time.Duration `yaml:"debounce"`
	Live      bool          `yaml:"live"`
}

type AssistantConfig struct {
	WebhookURL string        `yaml:"webhook_url"`
	Timeout    time.Duration `yaml:"timeout"`
}

type NotifyConfig struct {
	GatewayURL    string        `yaml:"gateway_url"`
	CheckInterval time.Duration `yaml:"check_interval"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from an optional .env file, an optional YAML
// file and environment variables. Environment variables win.
func Load() (Config, error) {
	// Missing .env is fine; environment may already be populated.
	_ = godotenv.Load()

	cfg := Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			CORSOrigins: []string{"*"},
		},
		Snapshot: SnapshotConfig{
			Path: "botdesk.db",
		},
		Remote: RemoteConfig{
			Namespace: "botdesk",
		},
		Sync: SyncConfig{
			Freshness: 5 * time.Minute,
			Debounce:  50 * time.Millisecond,
			Live:      false,
		},
		Assistant: AssistantConfig{
			Timeout: 15 * time.Second,
		},
		Notify: NotifyConfig{
			CheckInterval: time.Hour,
		},
		Log: LogConfig{
			Level: "info",
		},
	}

	if path := os.Getenv("BOTDESK_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("BOTDESK_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("BOTDESK_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid BOTDESK_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if path := os.Getenv("BOTDESK_SNAPSHOT_PATH"); path != "" {
		cfg.Snapshot.Path = path
	}
	if id := os.Getenv("BOTDESK_REMOTE_PROJECT_ID"); id != "" {
		cfg.Remote.ProjectID = id
	}
	if creds := os.Getenv("BOTDESK_REMOTE_CREDENTIALS"); creds != "" {
		cfg.Remote.CredentialsFile = creds
	}
	if ns := os.Getenv("BOTDESK_REMOTE_NAMESPACE"); ns != "" {
		cfg.Remote.Namespace = ns
	}
	if fresh := os.Getenv("BOTDESK_SYNC_FRESHNESS"); fresh != "" {
		d, err := time.ParseDuration(fresh)
		if err != nil {
			return Config{}, fmt.Errorf("invalid BOTDESK_SYNC_FRESHNESS: %w", err)
		}
		cfg.Sync.Freshness = d
	}
	if live := os.Getenv("BOTDESK_SYNC_LIVE"); live != "" {
		cfg.Sync.Live = live == "true" || live == "1"
	}
	if url := os.Getenv("BOTDESK_ASSISTANT_URL"); url != "" {
		cfg.Assistant.WebhookURL = url
	}
	if url := os.Getenv("BOTDESK_NOTIFY_GATEWAY_URL"); url != "" {
		cfg.Notify.GatewayURL = url
	}
	if level := os.Getenv("BOTDESK_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
