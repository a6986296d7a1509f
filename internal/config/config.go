package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Store
		Upload
		Session
		Tasks
		Enrichment
		Audit
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Store struct {
		Path       string
		QuotaBytes int64 // capacity of the key/value backend
	}
	Upload struct {
		SizeLimitBytes int64 // soft per-file ceiling checked before encoding
	}
	Session struct {
		Lifetime      time.Duration
		SecureCookies bool   // set false for local use without HTTPS
		CSRFSecret    string // hex-encoded; auto-generated when empty
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
	Enrichment struct {
		Enabled bool // fetch missing author/cover from OpenLibrary after upload
	}
	Audit struct {
		Path            string
		RetentionDays   int
		CleanupSchedule string // cron format
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8196)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)

	v.SetDefault("store_path", DefaultStorePath)
	v.SetDefault("store_quota_bytes", DefaultQuotaBytes)
	v.SetDefault("upload_size_limit_bytes", DefaultUploadLimitBytes)

	v.SetDefault("session_lifetime", "720h") // selection state is long-lived for a personal library
	v.SetDefault("session_secure_cookies", false)
	v.SetDefault("csrf_secret", "")

	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	v.SetDefault("enrichment_enabled", true)

	v.SetDefault("audit_path", "")
	v.SetDefault("audit_retention_days", 30)
	v.SetDefault("audit_cleanup_schedule", "0 4 * * *") // daily at 04:00

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Store: Store{
			Path:       v.GetString("STORE_PATH"),
			QuotaBytes: v.GetInt64("STORE_QUOTA_BYTES"),
		},
		Upload: Upload{
			SizeLimitBytes: v.GetInt64("UPLOAD_SIZE_LIMIT_BYTES"),
		},
		Session: Session{
			Lifetime:      v.GetDuration("SESSION_LIFETIME"),
			SecureCookies: v.GetBool("SESSION_SECURE_COOKIES"),
			CSRFSecret:    v.GetString("CSRF_SECRET"),
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
		Enrichment: Enrichment{
			Enabled: v.GetBool("ENRICHMENT_ENABLED"),
		},
		Audit: Audit{
			Path:            v.GetString("AUDIT_PATH"),
			RetentionDays:   v.GetInt("AUDIT_RETENTION_DAYS"),
			CleanupSchedule: v.GetString("AUDIT_CLEANUP_SCHEDULE"),
		},
	}
}
