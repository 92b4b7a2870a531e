package userservice

import (
	"testing"

	"github.com/ThilinaV98/blog-platform/internal/common"
	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	testCases := []struct {
		name     string
		username string
		valid    bool
	}{
		{"valid", "testuser", true},
		{"empty", "", false},
		{"too short", "ab", false},
		{"too long", "abcdefghijklmnopqrstuvwxyz", false},
		{"punctuation", "test.user", false},
		{"spaces", "test user", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := common.NewValidator()
			validateUsername(v, tc.username)
			assert.Equal(t, tc.valid, v.Valid())
		})
	}
}

func TestValidateEmail(t *testing.T) {
	testCases := []struct {
		name  string
		email string
		valid bool
	}{
		{"valid", "test@example.com", true},
		{"subdomain", "test@mail.example.co.uk", true},
		{"empty", "", false},
		{"no at sign", "testexample.com", false},
		{"no tld", "test@example", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := common.NewValidator()
			validateEmail(v, tc.email)
			assert.Equal(t, tc.valid, v.Valid())
		})
	}
}

func TestValidatePassword(t *testing.T) {
	testCases := []struct {
		name     string
		password string
		valid    bool
	}{
		{"valid", "Test_1234!", true},
		{"empty", "", false},
		{"too short", "Te_1!", false},
		{"no uppercase", "test_1234!", false},
		{"no lowercase", "TEST_1234!", false},
		{"no number", "Test_abcd!", false},
		{"no symbol", "Test12345", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := common.NewValidator()
			validatePassword(v, tc.password)
			assert.Equal(t, tc.valid, v.Valid())
		})
	}
}

func TestValidateIdentifier(t *testing.T) {
	testCases := []struct {
		name       string
		identifier string
		valid      bool
	}{
		{"email", "test@example.com", true},
		{"username", "testuser", true},
		{"empty", "", false},
		{"spaces", "test user", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := common.NewValidator()
			validateIdentifier(v, tc.identifier)
			assert.Equal(t, tc.valid, v.Valid())
		})
	}
}
