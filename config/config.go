package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

type Fast2SMSConfig struct {
	APIKey   string
	BaseURL  string
	SenderID string
}

type TwilioConfig struct {
	AccountSID  string
	AuthToken   string
	FromNumber  string
	BaseURL     string
	CountryCode string
}

type RazorpayConfig struct {
	KeyID     string
	KeySecret string
}

type NotifyConfig struct {
	Workers int
	// Interval between scheduled reminder runs. Zero disables the scheduler.
	Interval time.Duration
}

type Config struct {
	Port        int
	DatabaseURL string
	JWTSecret   string
	JWTTTL      time.Duration
	CORSOrigins []string
	HTTPTimeout time.Duration
	LogLevel    string
	LogFormat   string
	ClubName    string

	SMTP           SMTPConfig
	SendGridAPIKey string
	Fast2SMS       Fast2SMSConfig
	Twilio         TwilioConfig
	Razorpay       RazorpayConfig
	Notify         NotifyConfig

	Features Features
}

// Load reads .env (if present), an optional config.yaml and the environment.
// Environment variables win over the file; nested keys map to upper snake case,
// so smtp.user is read from SMTP_USER.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// names used by older deployments
	_ = v.BindEnv("smtp.user", "SMTP_USER", "EMAIL_USER")
	_ = v.BindEnv("smtp.password", "SMTP_PASSWORD", "EMAIL_PASS")
	_ = v.BindEnv("twilio.from_number", "TWILIO_FROM_NUMBER", "TWILIO_PHONE_NUMBER")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return fromViper(v), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("database_url", "")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.ttl", "168h")
	v.SetDefault("cors.origins", "http://localhost:5173")
	v.SetDefault("http.timeout", "10s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("club.name", "Jordan Fitness Club")

	v.SetDefault("smtp.host", "smtp.gmail.com")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.user", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")
	v.SetDefault("sendgrid.api_key", "")

	v.SetDefault("fast2sms.api_key", "")
	v.SetDefault("fast2sms.base_url", "https://www.fast2sms.com")
	v.SetDefault("fast2sms.sender_id", "TXTIND")

	v.SetDefault("twilio.account_sid", "")
	v.SetDefault("twilio.auth_token", "")
	v.SetDefault("twilio.from_number", "")
	v.SetDefault("twilio.base_url", "https://api.twilio.com")
	v.SetDefault("twilio.country_code", "+91")

	v.SetDefault("razorpay.key_id", "")
	v.SetDefault("razorpay.key_secret", "")

	v.SetDefault("notify.workers", 4)
	v.SetDefault("notify.interval", "0s")

	v.SetDefault("features.registration", true)
	v.SetDefault("features.payments", true)
	v.SetDefault("features.metrics", true)
}

func fromViper(v *viper.Viper) *Config {
	clubName := v.GetString("club.name")
	return &Config{
		Port:        v.GetInt("port"),
		DatabaseURL: v.GetString("database_url"),
		JWTSecret:   v.GetString("jwt.secret"),
		JWTTTL:      v.GetDuration("jwt.ttl"),
		CORSOrigins: splitList(v.GetString("cors.origins")),
		HTTPTimeout: v.GetDuration("http.timeout"),
		LogLevel:    v.GetString("log.level"),
		LogFormat:   v.GetString("log.format"),
		ClubName:    clubName,
		SMTP: SMTPConfig{
			Host:     v.GetString("smtp.host"),
			Port:     v.GetInt("smtp.port"),
			User:     v.GetString("smtp.user"),
			Password: v.GetString("smtp.password"),
			From:     v.GetString("smtp.from"),
			FromName: clubName,
		},
		SendGridAPIKey: v.GetString("sendgrid.api_key"),
		Fast2SMS: Fast2SMSConfig{
			APIKey:   v.GetString("fast2sms.api_key"),
			BaseURL:  v.GetString("fast2sms.base_url"),
			SenderID: v.GetString("fast2sms.sender_id"),
		},
		Twilio: TwilioConfig{
			AccountSID:  v.GetString("twilio.account_sid"),
			AuthToken:   v.GetString("twilio.auth_token"),
			FromNumber:  v.GetString("twilio.from_number"),
			BaseURL:     v.GetString("twilio.base_url"),
			CountryCode: v.GetString("twilio.country_code"),
		},
		Razorpay: RazorpayConfig{
			KeyID:     v.GetString("razorpay.key_id"),
			KeySecret: v.GetString("razorpay.key_secret"),
		},
		Notify: NotifyConfig{
			Workers:  v.GetInt("notify.workers"),
			Interval: v.GetDuration("notify.interval"),
		},
		Features: loadFeatures(v),
	}
}

// Validate checks the settings the server cannot start without. Channel
// credentials are optional: a channel without them records Failed attempts.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL environment variable not set")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable not set")
	}
	if c.Notify.Workers < 1 {
		return fmt.Errorf("notify.workers must be at least 1, got %d", c.Notify.Workers)
	}
	if c.Notify.Interval < 0 {
		return fmt.Errorf("notify.interval must not be negative")
	}
	return nil
}

// EmailFrom is the sender address, falling back to the SMTP login.
func (c *Config) EmailFrom() string {
	if c.SMTP.From != "" {
		return c.SMTP.From
	}
	return c.SMTP.User
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
