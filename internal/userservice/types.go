package userservice

import (
	"database/sql"
	"time"

	"github.com/ThilinaV98/blog-platform/internal/common"
)

type tokenScope string

type Role string

const (
	TokenScopeVerifyEmail tokenScope = "token:verify_email"

	VerificationTokenTime time.Duration = 3 * 24 * time.Hour
	AccessTokenTime       time.Duration = 15 * time.Minute
	RefreshTokenTime      time.Duration = 7 * 24 * time.Hour

	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

var AnonymousUser = User{}

type UserService struct {
	m             *DBModel
	mb            common.MessageProducer
	c             *common.Cache
	accessSecret  []byte
	refreshSecret []byte
}

type DBModel struct {
	db *sql.DB
}

type User struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Password    Password  `json:"-"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url"`
	Role        Role      `json:"role"`
	Verified    bool      `json:"verified"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Version     int       `json:"-"`
}

type Password struct {
	Plain string `json:"-"`
	hash  []byte `json:"-"`
}

// Token is a single-use opaque token (email verification). Only the hash is
// stored.
type Token struct {
	Plain  string     `json:"token"`
	Hash   []byte     `json:"-"`
	UserID int64      `json:"-"`
	Expiry time.Time  `json:"expiry"`
	Scope  tokenScope `json:"-"`
}

// TokenPair is what login, register and refresh hand back to the client.
type TokenPair struct {
	AccessToken        string    `json:"access_token"`
	RefreshToken       string    `json:"refresh_token"`
	AccessTokenExpiry  time.Time `json:"access_token_expiry"`
	RefreshTokenExpiry time.Time `json:"refresh_token_expiry"`
}
