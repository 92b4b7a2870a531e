package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Environment string `mapstructure:"ENVIRONMENT"`
	Version     string `mapstructure:"VERSION"`

	DBHost     string `mapstructure:"POSTGRES_HOST"`
	DBPort     string `mapstructure:"POSTGRES_PORT"`
	DBUser     string `mapstructure:"POSTGRES_USER"`
	DBPassword string `mapstructure:"POSTGRES_PASSWORD"`
	DBName     string `mapstructure:"POSTGRES_DB"`

	AccessTokenSecret  string `mapstructure:"ACCESS_TOKEN_SECRET"`
	RefreshTokenSecret string `mapstructure:"REFRESH_TOKEN_SECRET"`

	MailHost     string `mapstructure:"MAIL_HOST"`
	MailPort     int    `mapstructure:"MAIL_PORT"`
	MailUser     string `mapstructure:"MAIL_USER"`
	MailPassword string `mapstructure:"MAIL_PASSWORD"`
	MailSender   string `mapstructure:"MAIL_SENDER"`

	MQHost     string `mapstructure:"RABBITMQ_HOST"`
	MQPort     string `mapstructure:"RABBITMQ_PORT"`
	MQUser     string `mapstructure:"RABBITMQ_USER"`
	MQPassword string `mapstructure:"RABBITMQ_PASSWORD"`
}

const minSecretLength = 32

func loadConfig(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// validate gates startup on the environment the deployment depends on:
// missing variables or short signing secrets make the process exit non-zero.
func (c *Config) validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"ENVIRONMENT", c.Environment},
		{"POSTGRES_HOST", c.DBHost},
		{"POSTGRES_PORT", c.DBPort},
		{"POSTGRES_USER", c.DBUser},
		{"POSTGRES_PASSWORD", c.DBPassword},
		{"POSTGRES_DB", c.DBName},
		{"ACCESS_TOKEN_SECRET", c.AccessTokenSecret},
		{"REFRESH_TOKEN_SECRET", c.RefreshTokenSecret},
	}

	var missing []string
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.name)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if len(c.AccessTokenSecret) < minSecretLength {
		return fmt.Errorf("ACCESS_TOKEN_SECRET must be at least %d characters long", minSecretLength)
	}
	if len(c.RefreshTokenSecret) < minSecretLength {
		return fmt.Errorf("REFRESH_TOKEN_SECRET must be at least %d characters long", minSecretLength)
	}

	return nil
}
