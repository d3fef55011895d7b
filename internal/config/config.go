package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Providers
		Media
		Tasks
		Scheduler
		Events
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Providers struct {
		ShikimoriURL string
		KodikURL     string
		KodikAPIKey  string
		UserAgent    string
	}
	Media struct {
		Root       string // Directory for localized assets
		StaticHost string // Public URL prefix served by the CDN/static host
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	Scheduler struct {
		Enabled      bool
		ScanInterval time.Duration // Recovery scan period
	}
	Events struct {
		TokenSecret string        // HMAC secret for progress-stream tokens; auto-generated if empty
		TokenTTL    time.Duration // Lifetime of an issued token
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	v.SetDefault("shikimori_url", "https://shikimori.one")
	v.SetDefault("kodik_url", "https://kodikapi.com")
	v.SetDefault("kodik_api_key", "")
	v.SetDefault("provider_user_agent", "KitsuEngine/2.0")

	v.SetDefault("media_root", DefaultMediaRoot)
	v.SetDefault("media_static_host", "/static")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "30m")
	v.SetDefault("task_release_after", "45m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	// Recovery scanner defaults
	v.SetDefault("scheduler_enabled", true)
	v.SetDefault("scheduler_scan_interval", "15m")

	// Progress stream tokens
	v.SetDefault("events_token_secret", "")
	v.SetDefault("events_token_ttl", "15m")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Providers: Providers{
			ShikimoriURL: v.GetString("SHIKIMORI_URL"),
			KodikURL:     v.GetString("KODIK_URL"),
			KodikAPIKey:  v.GetString("KODIK_API_KEY"),
			UserAgent:    v.GetString("PROVIDER_USER_AGENT"),
		},
		Media: Media{
			Root:       v.GetString("MEDIA_ROOT"),
			StaticHost: v.GetString("MEDIA_STATIC_HOST"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Scheduler: Scheduler{
			Enabled:      v.GetBool("SCHEDULER_ENABLED"),
			ScanInterval: v.GetDuration("SCHEDULER_SCAN_INTERVAL"),
		},
		Events: Events{
			TokenSecret: v.GetString("EVENTS_TOKEN_SECRET"),
			TokenTTL:    v.GetDuration("EVENTS_TOKEN_TTL"),
		},
	}
}
