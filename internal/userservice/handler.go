package userservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ThilinaV98/blog-platform/internal/common"
)

var ErrAuthenticationFailure = fmt.Errorf("unauthorized access")

func NewUserService(db *sql.DB, mb common.MessageProducer, c *common.Cache, accessSecret, refreshSecret string) *UserService {
	return &UserService{
		m:             newUserModel(db),
		mb:            mb,
		c:             c,
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
	}
}

// CreateUser registers a new account, publishes a user.created event carrying
// the email-verification token, and logs the user straight in with a token
// pair.
func (s *UserService) CreateUser(ctx context.Context, username, email, password string) (*User, *TokenPair, error) {
	v := common.NewValidator()
	validateUsername(v, username)
	validateEmail(v, email)
	validatePassword(v, password)
	if !v.Valid() {
		return nil, nil, v.ValidationError()
	}

	u := User{
		Username:    username,
		Email:       email,
		DisplayName: username,
		Role:        RoleUser,
		Password:    Password{Plain: password},
	}

	if err := u.Password.set(u.Password.Plain); err != nil {
		return nil, nil, err
	}

	if err := s.m.insertUser(ctx, &u); err != nil {
		return nil, nil, err
	}

	token, err := s.m.createToken(ctx, u.ID, VerificationTokenTime, TokenScopeVerifyEmail)
	if err != nil {
		return nil, nil, err
	}

	data := struct {
		Email string
		Token string
	}{
		Email: u.Email,
		Token: token.Plain,
	}

	emailData, err := json.Marshal(data)
	if err != nil {
		return nil, nil, err
	}

	if err := s.mb.Publish(ctx, emailData, common.UserCreatedKey, common.UserExchange); err != nil {
		return nil, nil, err
	}

	pair, err := s.issueTokenPair(ctx, &u)
	if err != nil {
		return nil, nil, err
	}

	return &u, pair, nil
}

// VerifyEmail marks the account verified and burns the verification token.
func (s *UserService) VerifyEmail(ctx context.Context, token string) error {
	v := common.NewValidator()
	ValidateToken(v, token)
	if !v.Valid() {
		return v.ValidationError()
	}

	hash := hashToken(token)

	user, err := s.m.getUserByToken(ctx, TokenScopeVerifyEmail, hash)
	if err != nil {
		return err
	}

	tx, err := s.m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := s.m.markUserVerified(tx, ctx, user.ID, user.Version); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := s.m.deleteTokens(tx, ctx, user.ID, TokenScopeVerifyEmail); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.c.Delete(common.CacheKeyUser(user.ID))

	return nil
}

// LoginUser authenticates by email or username. A missing user and a wrong
// password are indistinguishable to the caller.
func (s *UserService) LoginUser(ctx context.Context, identifier, password string) (*User, *TokenPair, error) {
	v := common.NewValidator()
	validateIdentifier(v, identifier)
	v.Check(password != "", "password", "must be provided")
	if !v.Valid() {
		return nil, nil, v.ValidationError()
	}

	user, err := s.m.getUserByIdentifier(ctx, identifier)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, nil, ErrAuthenticationFailure
		default:
			return nil, nil, err
		}
	}

	ok, err := user.Password.compare(password)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrAuthenticationFailure
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	return user, pair, nil
}

// RefreshTokens rotates a refresh token. The presented token is consumed
// before a new pair is issued, so each token works exactly once.
func (s *UserService) RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, jti, err := parseRefreshToken(s.refreshSecret, refreshToken)
	if err != nil {
		return nil, ErrAuthenticationFailure
	}

	if err := s.m.consumeRefreshToken(ctx, jti, userID); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, ErrAuthenticationFailure
		default:
			return nil, err
		}
	}

	user, err := s.m.getUserByID(ctx, userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, ErrAuthenticationFailure
		default:
			return nil, err
		}
	}

	return s.issueTokenPair(ctx, user)
}

// LogoutUser revokes the presented refresh token. Revoking a token that is
// already gone is not an error.
func (s *UserService) LogoutUser(ctx context.Context, userID int64, refreshToken string) error {
	tokenUserID, jti, err := parseRefreshToken(s.refreshSecret, refreshToken)
	if err != nil {
		return ErrAuthenticationFailure
	}
	if tokenUserID != userID {
		return ErrAuthenticationFailure
	}

	err = s.m.consumeRefreshToken(ctx, jti, userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	return nil
}

// GetUserByAccessToken resolves the bearer token presented on a request.
func (s *UserService) GetUserByAccessToken(ctx context.Context, token string) (*User, error) {
	userID, _, err := parseAccessToken(s.accessSecret, token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if cached, ok := s.c.Get(common.CacheKeyUser(userID)); ok {
		if user, ok := cached.(*User); ok {
			return user, nil
		}
	}

	user, err := s.m.getUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.c.Set(common.CacheKeyUser(userID), user)

	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id int64) (*User, error) {
	v := common.NewValidator()
	validateID(v, id, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.getUserByID(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, userID int64, displayName, avatarURL *string) (*User, error) {
	user, err := s.m.getUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if displayName != nil {
		user.DisplayName = *displayName
	}
	if avatarURL != nil {
		user.AvatarURL = *avatarURL
	}

	v := common.NewValidator()
	validateDisplayName(v, user.DisplayName)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if err := s.m.updateProfile(ctx, user); err != nil {
		return nil, err
	}

	s.c.Delete(common.CacheKeyUser(userID))

	return user, nil
}

func (s *UserService) issueTokenPair(ctx context.Context, user *User) (*TokenPair, error) {
	access, accessExpiry, err := signAccessToken(s.accessSecret, user, AccessTokenTime)
	if err != nil {
		return nil, err
	}

	refresh, jti, refreshExpiry, err := signRefreshToken(s.refreshSecret, user.ID, RefreshTokenTime)
	if err != nil {
		return nil, err
	}

	if err := s.m.insertRefreshToken(ctx, jti, user.ID, refreshExpiry); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:        access,
		RefreshToken:       refresh,
		AccessTokenExpiry:  accessExpiry,
		RefreshTokenExpiry: refreshExpiry,
	}, nil
}

func (u *User) IsAnonymous() bool {
	return u == &AnonymousUser
}

func (u *User) IsVerified() bool {
	return u.Verified
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
