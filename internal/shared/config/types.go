// Package config holds the configuration types shared by the loader and the wiring code.
package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	Timezone       string   `mapstructure:"timezone"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	// Driver is "mysql" or "sqlite".
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	Path            string `mapstructure:"path"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	if d.Driver == "sqlite" {
		return d.Path
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// AuthConfig signs and verifies staff bearer tokens.
type AuthConfig struct {
	JWTSecret     string `mapstructure:"jwt_secret"`
	Issuer        string `mapstructure:"issuer"`
	TokenTTLHours int    `mapstructure:"token_ttl_hours"`
}

func (a *AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLHours) * time.Hour
}

type ReportConfig struct {
	TrackingPrefix      string   `mapstructure:"tracking_prefix"`
	TrackingMaxAttempts int      `mapstructure:"tracking_max_attempts"`
	MaxImageSizeKB      int      `mapstructure:"max_image_size_kb"`
	AllowedImageTypes   []string `mapstructure:"allowed_image_types"`
}

type PriorityConfig struct {
	HighKeywords []string `mapstructure:"high_keywords"`
	LowPhrases   []string `mapstructure:"low_phrases"`
}

type TriageConfig struct {
	// Strategy is "filename", "vision" or "none".
	Strategy           string   `mapstructure:"strategy"`
	TimeoutSeconds     int      `mapstructure:"timeout_seconds"`
	FilenameKeywords   []string `mapstructure:"filename_keywords"`
	VisionKeywords     []string `mapstructure:"vision_keywords"`
	VisionEndpoint     string   `mapstructure:"vision_endpoint"`
	CredentialsFile    string   `mapstructure:"credentials_file"`
	HighConfidence     float64  `mapstructure:"high_confidence"`
	MediumConfidence   float64  `mapstructure:"medium_confidence"`
	ViolenceLikelihood string   `mapstructure:"violence_likelihood"`
	ViolencePoints     int      `mapstructure:"violence_points"`
	EmergencyThreshold int      `mapstructure:"emergency_threshold"`
}

func (t *TriageConfig) Timeout() time.Duration {
	return time.Duration(t.TimeoutSeconds) * time.Second
}

type DuplicateConfig struct {
	WindowHours int     `mapstructure:"window_hours"`
	Threshold   float64 `mapstructure:"threshold"`
}

type CaptchaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	SecretKey      string `mapstructure:"secret_key"`
	VerifyURL      string `mapstructure:"verify_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type StorageConfig struct {
	// Driver is "local" or "cloudinary".
	Driver           string `mapstructure:"driver"`
	LocalDir         string `mapstructure:"local_dir"`
	PublicBaseURL    string `mapstructure:"public_base_url"`
	CloudinaryURL    string `mapstructure:"cloudinary_url"`
	CloudinaryFolder string `mapstructure:"cloudinary_folder"`
}

type FirestoreConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	ProjectID       string `mapstructure:"project_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
	BaseURL         string `mapstructure:"base_url"`
	Collection      string `mapstructure:"collection"`
}

type ReportEventConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Channel string `mapstructure:"channel"`
}

type AlertEmailConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	Recipients []string `mapstructure:"recipients"`
}

type NotificationConfig struct {
	TimeoutSeconds int               `mapstructure:"timeout_seconds"`
	Firestore      FirestoreConfig   `mapstructure:"firestore"`
	Events         ReportEventConfig `mapstructure:"events"`
	AlertEmail     AlertEmailConfig  `mapstructure:"alert_email"`
}

func (n *NotificationConfig) Timeout() time.Duration {
	return time.Duration(n.TimeoutSeconds) * time.Second
}

type EmailConfig struct {
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	FromAddress  string `mapstructure:"from_address"`
	FromName     string `mapstructure:"from_name"`
}

type RateLimitConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	SubmitPerHour int  `mapstructure:"submit_per_hour"`
}
