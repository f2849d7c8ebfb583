package dto

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ghodss/yaml"
)

const (
	DatabaseTypePostgres = "postgres"
	DatabaseTypeSQLite   = "sqlite"

	DefaultMarkerEmoji = "no_entry_sign"
)

type Config struct {
	SlackBotToken string `json:"slack_bot_token"`
	SlackAppToken string `json:"slack_app_token"`
	SlackDebug    bool   `json:"slack_debug"`
	DatabaseType  string `json:"database_type"`
	DatabaseURL   string `json:"database_url"`
	RabbitMQURL   string `json:"rabbitmq_url"`
	FirebaseKey   string `json:"firebase_key"` // base64 encoded service account json
	HTTPAddress   string `json:"http_address"`
	MarkerEmoji   string `json:"marker_emoji"`
	LogLevel      string `json:"log_level"`
	LogFormat     string `json:"log_format"` // text or json
}

// LoadConfig reads the configuration from the process environment.
func LoadConfig() Config {
	return Config{
		SlackBotToken: os.Getenv("SLACK_BOT_TOKEN"),
		SlackAppToken: os.Getenv("SLACK_APP_TOKEN"),
		SlackDebug:    getEnvBool("SLACK_DEBUG", false),
		DatabaseType:  getEnv("DATABASE_TYPE", DatabaseTypeSQLite),
		DatabaseURL:   getEnv("DATABASE_URL", "pollbot.db"),
		RabbitMQURL:   os.Getenv("RABBITMQ_URL"),
		FirebaseKey:   os.Getenv("FIREBASE_KEY"),
		HTTPAddress:   getEnv("HTTP_ADDRESS", ":8080"),
		MarkerEmoji:   getEnv("MARKER_EMOJI", DefaultMarkerEmoji),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "text"),
	}
}

// ReadConfigFile overlays the non-empty values of a yaml file on top of the config.
func (c *Config) ReadConfigFile(path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("unable to parse config file %s: %w", path, err)
	}
	c.merge(file)

	return nil
}

func (c *Config) merge(o Config) {
	overlay := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	overlay(&c.SlackBotToken, o.SlackBotToken)
	overlay(&c.SlackAppToken, o.SlackAppToken)
	overlay(&c.DatabaseType, o.DatabaseType)
	overlay(&c.DatabaseURL, o.DatabaseURL)
	overlay(&c.RabbitMQURL, o.RabbitMQURL)
	overlay(&c.FirebaseKey, o.FirebaseKey)
	overlay(&c.HTTPAddress, o.HTTPAddress)
	overlay(&c.MarkerEmoji, o.MarkerEmoji)
	overlay(&c.LogLevel, o.LogLevel)
	overlay(&c.LogFormat, o.LogFormat)
	if o.SlackDebug {
		c.SlackDebug = true
	}
}

func (c Config) Validate() error {
	if c.SlackBotToken == "" {
		return errors.New("bot token is required")
	}
	if c.SlackAppToken == "" {
		return errors.New("app token is required for Socket Mode")
	}
	if !strings.HasPrefix(c.SlackAppToken, "xapp-") {
		return errors.New("app token must start with xapp-")
	}
	switch c.DatabaseType {
	case DatabaseTypePostgres, DatabaseTypeSQLite:
	default:
		return fmt.Errorf("unsupported database type %q", c.DatabaseType)
	}
	if c.DatabaseURL == "" {
		return errors.New("database url is required")
	}
	return nil
}

func (c Config) DecodeFirebaseKey() ([]byte, error) {
	if c.FirebaseKey == "" {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(c.FirebaseKey)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
