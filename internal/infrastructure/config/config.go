package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "github.com/civicwatch/civicwatch/internal/shared/config"
)

type Config struct {
	Server       sharedConfig.ServerConfig       `mapstructure:"server"`
	Database     sharedConfig.DatabaseConfig     `mapstructure:"database"`
	Logger       sharedConfig.LoggerConfig       `mapstructure:"logger"`
	Redis        sharedConfig.RedisConfig        `mapstructure:"redis"`
	Auth         sharedConfig.AuthConfig         `mapstructure:"auth"`
	Report       sharedConfig.ReportConfig       `mapstructure:"report"`
	Priority     sharedConfig.PriorityConfig     `mapstructure:"priority"`
	Triage       sharedConfig.TriageConfig       `mapstructure:"triage"`
	Duplicate    sharedConfig.DuplicateConfig    `mapstructure:"duplicate"`
	Captcha      sharedConfig.CaptchaConfig      `mapstructure:"captcha"`
	Storage      sharedConfig.StorageConfig      `mapstructure:"storage"`
	Notification sharedConfig.NotificationConfig `mapstructure:"notification"`
	Email        sharedConfig.EmailConfig        `mapstructure:"email"`
	RateLimit    sharedConfig.RateLimitConfig    `mapstructure:"rate_limit"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load reads configs/config.yaml (optional) and CIVICWATCH_* environment overrides.
func Load(env string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../configs")
	v.AddConfigPath("../../configs")

	v.SetEnvPrefix("CIVICWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if env != "" && env != "default" {
		v.Set("server.mode", env)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	appConfigMu.Lock()
	appConfig = &cfg
	appConfigMu.Unlock()

	return &cfg, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("database.driver must be mysql or sqlite, got %q", c.Database.Driver)
	}
	switch c.Storage.Driver {
	case "local", "cloudinary":
	default:
		return fmt.Errorf("storage.driver must be local or cloudinary, got %q", c.Storage.Driver)
	}
	switch c.Triage.Strategy {
	case "filename", "vision", "none":
	default:
		return fmt.Errorf("triage.strategy must be filename, vision or none, got %q", c.Triage.Strategy)
	}
	if c.Report.TrackingMaxAttempts < 1 {
		return fmt.Errorf("report.tracking_max_attempts must be at least 1")
	}
	if c.Triage.TimeoutSeconds < 1 {
		return fmt.Errorf("triage.timeout_seconds must be at least 1")
	}
	if c.Notification.TimeoutSeconds < 1 {
		return fmt.Errorf("notification.timeout_seconds must be at least 1")
	}
	if c.Captcha.Enabled && c.Captcha.TimeoutSeconds < 1 {
		return fmt.Errorf("captcha.timeout_seconds must be at least 1")
	}
	if c.Duplicate.Threshold <= 0 || c.Duplicate.Threshold > 1 {
		return fmt.Errorf("duplicate.threshold must be in (0, 1]")
	}
	if c.Captcha.Enabled && c.Captcha.SecretKey == "" {
		return fmt.Errorf("captcha.secret_key is required when captcha is enabled")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.timezone", "Asia/Manila")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "civicwatch.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.username", "root")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "civicwatch")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.conn_max_lifetime", 60)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.jwt_secret", "change-me-in-production")
	v.SetDefault("auth.issuer", "civicwatch")
	v.SetDefault("auth.token_ttl_hours", 12)

	v.SetDefault("report.tracking_prefix", "CW")
	v.SetDefault("report.tracking_max_attempts", 3)
	v.SetDefault("report.max_image_size_kb", 2048)
	v.SetDefault("report.allowed_image_types", []string{"image/jpeg", "image/png", "image/gif"})

	v.SetDefault("priority.high_keywords", []string{"fire", "accident"})
	v.SetDefault("priority.low_phrases", []string{
		"Public karaoke complaints (non-urgent)",
		"Loud sounds from establishments during restricted hours",
	})

	v.SetDefault("triage.strategy", "filename")
	v.SetDefault("triage.timeout_seconds", 30)
	v.SetDefault("triage.filename_keywords", []string{"fire", "burning", "ambulance", "accident", "crash", "emergency"})
	v.SetDefault("triage.vision_keywords", []string{
		"fire", "flame", "smoke", "burning", "ambulance", "police", "fire engine",
		"accident", "crash", "blood", "injured", "emergency",
	})
	v.SetDefault("triage.vision_endpoint", "https://vision.googleapis.com")
	v.SetDefault("triage.credentials_file", "")
	v.SetDefault("triage.high_confidence", 0.85)
	v.SetDefault("triage.medium_confidence", 0.70)
	v.SetDefault("triage.violence_likelihood", "LIKELY")
	v.SetDefault("triage.violence_points", 2)
	v.SetDefault("triage.emergency_threshold", 2)

	v.SetDefault("duplicate.window_hours", 24)
	v.SetDefault("duplicate.threshold", 0.7)

	v.SetDefault("captcha.enabled", true)
	v.SetDefault("captcha.secret_key", "")
	v.SetDefault("captcha.verify_url", "https://www.google.com/recaptcha/api/siteverify")
	v.SetDefault("captcha.timeout_seconds", 10)

	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.local_dir", "storage/uploads")
	v.SetDefault("storage.public_base_url", "/uploads")
	v.SetDefault("storage.cloudinary_url", "")
	v.SetDefault("storage.cloudinary_folder", "civicwatch/reports")

	v.SetDefault("notification.timeout_seconds", 10)
	v.SetDefault("notification.firestore.enabled", false)
	v.SetDefault("notification.firestore.project_id", "")
	v.SetDefault("notification.firestore.credentials_file", "")
	v.SetDefault("notification.firestore.base_url", "https://firestore.googleapis.com")
	v.SetDefault("notification.firestore.collection", "reports")
	v.SetDefault("notification.events.enabled", false)
	v.SetDefault("notification.events.channel", "civicwatch:reports")
	v.SetDefault("notification.alert_email.enabled", false)
	v.SetDefault("notification.alert_email.recipients", []string{})

	v.SetDefault("email.smtp_host", "localhost")
	v.SetDefault("email.smtp_port", 1025)
	v.SetDefault("email.smtp_user", "")
	v.SetDefault("email.smtp_password", "")
	v.SetDefault("email.from_address", "noreply@civicwatch.local")
	v.SetDefault("email.from_name", "CivicWatch")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.submit_per_hour", 10)
}
