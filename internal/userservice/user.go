package userservice

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base32"
	"errors"
	"time"
)

var (
	ErrDuplicateUsername = errors.New("duplicate username")
	ErrDuplicateEmail    = errors.New("duplicate email")
	ErrNotFound          = errors.New("user not found")
)

func newUserModel(db *sql.DB) *DBModel {
	return &DBModel{db: db}
}

func (m *DBModel) insertUser(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (username, email, password, display_name, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, version`

	args := []any{u.Username, u.Email, u.Password.hash, u.DisplayName, u.Role}

	err := m.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.CreatedAt, &u.Version)
	if err != nil {
		switch {
		case err.Error() == `pq: duplicate key value violates unique constraint "users_username_key"`:
			return ErrDuplicateUsername
		case err.Error() == `pq: duplicate key value violates unique constraint "users_email_key"`:
			return ErrDuplicateEmail
		default:
			return err
		}
	}
	return nil
}

func (m *DBModel) getUserByID(ctx context.Context, id int64) (*User, error) {
	query := `
		SELECT id, username, email, password, display_name, avatar_url, role, verified, created_at, updated_at, version
		FROM users
		WHERE id = $1`

	var u User

	err := m.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Username, &u.Email, &u.Password.hash, &u.DisplayName, &u.AvatarURL, &u.Role, &u.Verified, &u.CreatedAt, &u.UpdatedAt, &u.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}

	return &u, nil
}

// getUserByIdentifier looks up a user by email or username interchangeably.
func (m *DBModel) getUserByIdentifier(ctx context.Context, identifier string) (*User, error) {
	query := `
		SELECT id, username, email, password, display_name, avatar_url, role, verified, created_at, updated_at, version
		FROM users
		WHERE email = $1 OR username = $1`

	var u User

	err := m.db.QueryRowContext(ctx, query, identifier).Scan(&u.ID, &u.Username, &u.Email, &u.Password.hash, &u.DisplayName, &u.AvatarURL, &u.Role, &u.Verified, &u.CreatedAt, &u.UpdatedAt, &u.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}

	return &u, nil
}

func (m *DBModel) updateProfile(ctx context.Context, u *User) error {
	query := `
		UPDATE users
		SET display_name = $1, avatar_url = $2, updated_at = NOW(), version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING version, updated_at`

	err := m.db.QueryRowContext(ctx, query, u.DisplayName, u.AvatarURL, u.ID, u.Version).Scan(&u.Version, &u.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrNotFound
		default:
			return err
		}
	}

	return nil
}

func (m *DBModel) markUserVerified(tx *sql.Tx, ctx context.Context, id int64, version int) error {
	query := `
		UPDATE users
		SET verified = true, updated_at = NOW(), version = version + 1
		WHERE id = $1 AND version = $2`

	res, err := tx.ExecContext(ctx, query, id, version)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func hashToken(token string) []byte {
	hash := sha256.Sum256([]byte(token))
	return hash[:]
}

func newToken(userID int64, ttl time.Duration, scope tokenScope) (*Token, error) {
	randomBytes := make([]byte, 16)
	if _, err := rand.Read(randomBytes); err != nil {
		return nil, err
	}

	token := &Token{
		Plain:  base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(randomBytes),
		UserID: userID,
		Expiry: time.Now().Add(ttl),
		Scope:  scope,
	}

	token.Hash = hashToken(token.Plain)

	return token, nil
}

func (m *DBModel) createToken(ctx context.Context, userID int64, ttl time.Duration, scope tokenScope) (*Token, error) {
	token, err := newToken(userID, ttl, scope)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO tokens (hash, user_id, scope, expiry)
		VALUES ($1, $2, $3, $4)`

	if _, err := m.db.ExecContext(ctx, query, token.Hash, token.UserID, string(token.Scope), token.Expiry); err != nil {
		return nil, err
	}

	return token, nil
}

func (m *DBModel) getUserByToken(ctx context.Context, scope tokenScope, hash []byte) (*User, error) {
	query := `
		SELECT u.id, u.username, u.email, u.verified, u.version
		FROM users u
		INNER JOIN tokens t ON u.id = t.user_id
		WHERE t.hash = $1 AND t.scope = $2 AND t.expiry > $3`

	var u User

	err := m.db.QueryRowContext(ctx, query, hash, string(scope), time.Now()).Scan(&u.ID, &u.Username, &u.Email, &u.Verified, &u.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}

	return &u, nil
}

func (m *DBModel) deleteTokens(tx *sql.Tx, ctx context.Context, userID int64, scope tokenScope) error {
	query := `
		DELETE FROM tokens
		WHERE user_id = $1 AND scope = $2`

	_, err := tx.ExecContext(ctx, query, userID, string(scope))
	return err
}
