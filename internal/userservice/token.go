package userservice

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

type accessClaims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

type refreshClaims struct {
	jwt.RegisteredClaims
}

func signAccessToken(secret []byte, user *User, ttl time.Duration) (string, time.Time, error) {
	expiry := time.Now().Add(ttl)

	claims := accessClaims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiry, nil
}

// signRefreshToken embeds a fresh uuid as the jti so the token maps to exactly
// one revocable database row.
func signRefreshToken(secret []byte, userID int64, ttl time.Duration) (string, uuid.UUID, time.Time, error) {
	id := uuid.New()
	expiry := time.Now().Add(ttl)

	claims := refreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id.String(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", uuid.Nil, time.Time{}, err
	}

	return signed, id, expiry, nil
}

func parseAccessToken(secret []byte, token string) (int64, Role, error) {
	var claims accessClaims

	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return 0, "", ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, "", ErrInvalidToken
	}

	return userID, claims.Role, nil
}

func parseRefreshToken(secret []byte, token string) (int64, uuid.UUID, error) {
	var claims refreshClaims

	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return 0, uuid.Nil, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, uuid.Nil, ErrInvalidToken
	}

	id, err := uuid.Parse(claims.ID)
	if err != nil {
		return 0, uuid.Nil, ErrInvalidToken
	}

	return userID, id, nil
}

func (m *DBModel) insertRefreshToken(ctx context.Context, id uuid.UUID, userID int64, expiry time.Time) error {
	query := `
		INSERT INTO refresh_tokens (id, user_id, expires_at)
		VALUES ($1, $2, $3)`

	_, err := m.db.ExecContext(ctx, query, id, userID, expiry)
	return err
}

// consumeRefreshToken deletes the stored token row. It reports ErrNotFound when
// the row is already gone, which is what makes rotation single-use: two
// concurrent presentations race on the same DELETE and only one affects a row.
func (m *DBModel) consumeRefreshToken(ctx context.Context, id uuid.UUID, userID int64) error {
	query := `
		DELETE FROM refresh_tokens
		WHERE id = $1 AND user_id = $2 AND expires_at > $3`

	res, err := m.db.ExecContext(ctx, query, id, userID, time.Now())
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

func (m *DBModel) deleteRefreshTokensForUser(ctx context.Context, userID int64) error {
	query := `
		DELETE FROM refresh_tokens
		WHERE user_id = $1`

	_, err := m.db.ExecContext(ctx, query, userID)
	return err
}
