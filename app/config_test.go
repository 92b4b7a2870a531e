package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeTempConfig(t *testing.T, data string) string {
	t.Helper()

	tempFile, err := os.CreateTemp("", "config*.env")
	if err != nil {
		t.Fatalf("Failed to create temporary config file: %v", err)
	}
	t.Cleanup(func() { os.Remove(tempFile.Name()) })

	if _, err := tempFile.WriteString(data); err != nil {
		t.Fatalf("Failed to write test configuration to temporary file: %v", err)
	}

	return tempFile.Name()
}

const validConfig = `
PORT=:8080
ENVIRONMENT=development
VERSION=1.0.0
POSTGRES_HOST=localhost
POSTGRES_PORT=5432
POSTGRES_USER=testuser
POSTGRES_PASSWORD=testpassword
POSTGRES_DB=testdb
ACCESS_TOKEN_SECRET=test-access-secret-0123456789abcdef0123
REFRESH_TOKEN_SECRET=test-refresh-secret-0123456789abcdef0123
MAIL_HOST=smtp.example.com
MAIL_PORT=587
MAIL_USER=testuser@example.com
MAIL_PASSWORD=testpassword
MAIL_SENDER=sender@example.com
RABBITMQ_HOST=rabbitmq.example.com
RABBITMQ_PORT=5672
RABBITMQ_USER=testuser
RABBITMQ_PASSWORD=testpassword
`

func TestLoadConfig(t *testing.T) {
	path := writeTempConfig(t, validConfig)

	config, err := loadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	assert.Equal(t, ":8080", config.Port)
	assert.Equal(t, "development", config.Environment)
	assert.Equal(t, "1.0.0", config.Version)
	assert.Equal(t, "localhost", config.DBHost)
	assert.Equal(t, "5432", config.DBPort)
	assert.Equal(t, "testuser", config.DBUser)
	assert.Equal(t, "testpassword", config.DBPassword)
	assert.Equal(t, "testdb", config.DBName)
	assert.Equal(t, "smtp.example.com", config.MailHost)
	assert.Equal(t, 587, config.MailPort)
	assert.Equal(t, "rabbitmq.example.com", config.MQHost)
	assert.Equal(t, "testuser", config.MQUser)
}

func TestLoadConfigMissingVariable(t *testing.T) {
	path := writeTempConfig(t, `
PORT=:8080
ENVIRONMENT=development
POSTGRES_HOST=localhost
POSTGRES_PORT=5432
POSTGRES_USER=testuser
POSTGRES_PASSWORD=testpassword
ACCESS_TOKEN_SECRET=test-access-secret-0123456789abcdef0123
REFRESH_TOKEN_SECRET=test-refresh-secret-0123456789abcdef0123
`)

	_, err := loadConfig(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_DB")
}

func TestLoadConfigShortSecret(t *testing.T) {
	path := writeTempConfig(t, `
PORT=:8080
ENVIRONMENT=development
POSTGRES_HOST=localhost
POSTGRES_PORT=5432
POSTGRES_USER=testuser
POSTGRES_PASSWORD=testpassword
POSTGRES_DB=testdb
ACCESS_TOKEN_SECRET=tooshort
REFRESH_TOKEN_SECRET=test-refresh-secret-0123456789abcdef0123
`)

	_, err := loadConfig(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ACCESS_TOKEN_SECRET")
}
