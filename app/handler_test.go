package main

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errorField(t *testing.T, body envelope, field string) any {
	t.Helper()

	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok, "expected an error object, got %v", body)

	return errObj[field]
}

func TestRegisterLoginRefreshFlow(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	var refreshToken, accessToken string

	t.Run("register", func(t *testing.T) {
		status, _, body := ts.post(t, "/v1/auth/register", map[string]any{
			"username": "testuser",
			"email":    "testuser@example.com",
			"password": "Test_1234!",
		}, nil)

		assert.Equal(t, http.StatusCreated, status)

		user, ok := body["user"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "testuser", user["username"])
		_, exposed := user["password"]
		assert.False(t, exposed)

		tokens, ok := body["tokens"].(map[string]any)
		require.True(t, ok)
		assert.NotEmpty(t, tokens["access_token"])
		assert.NotEmpty(t, tokens["refresh_token"])
	})

	t.Run("register duplicate", func(t *testing.T) {
		status, _, body := ts.post(t, "/v1/auth/register", map[string]any{
			"username": "testuser2",
			"email":    "testuser@example.com",
			"password": "Test_1234!",
		}, nil)

		assert.Equal(t, http.StatusUnprocessableEntity, status)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "VALIDATION_FAILED", errorField(t, body, "code"))
		assert.Equal(t, "/v1/auth/register", errorField(t, body, "path"))
	})

	t.Run("login wrong password", func(t *testing.T) {
		status, _, body := ts.post(t, "/v1/auth/login", map[string]any{
			"identifier": "testuser",
			"password":   "Wrong_1234!",
		}, nil)

		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "UNAUTHORIZED", errorField(t, body, "code"))
	})

	t.Run("login", func(t *testing.T) {
		status, _, body := ts.post(t, "/v1/auth/login", map[string]any{
			"identifier": "testuser@example.com",
			"password":   "Test_1234!",
		}, nil)

		require.Equal(t, http.StatusOK, status)

		tokens := body["tokens"].(map[string]any)
		accessToken = tokens["access_token"].(string)
		refreshToken = tokens["refresh_token"].(string)
	})

	t.Run("current user", func(t *testing.T) {
		status, _, body := ts.get(t, "/v1/users/me", &accessToken)

		require.Equal(t, http.StatusOK, status)
		user := body["user"].(map[string]any)
		assert.Equal(t, "testuser@example.com", user["email"])
	})

	t.Run("current user without token", func(t *testing.T) {
		status, _, body := ts.get(t, "/v1/users/me", nil)

		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "UNAUTHORIZED", errorField(t, body, "code"))
	})

	t.Run("refresh rotates", func(t *testing.T) {
		status, _, body := ts.post(t, "/v1/auth/refresh", map[string]any{
			"refresh_token": refreshToken,
		}, nil)

		require.Equal(t, http.StatusOK, status)
		tokens := body["tokens"].(map[string]any)
		assert.NotEqual(t, refreshToken, tokens["refresh_token"])

		// the consumed token is gone
		status, _, body = ts.post(t, "/v1/auth/refresh", map[string]any{
			"refresh_token": refreshToken,
		}, nil)

		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "UNAUTHORIZED", errorField(t, body, "code"))
	})

	t.Run("update profile", func(t *testing.T) {
		status, _, body := ts.patch(t, "/v1/users/me", &accessToken, map[string]any{
			"display_name": "Test User",
		})

		require.Equal(t, http.StatusOK, status)
		user := body["user"].(map[string]any)
		assert.Equal(t, "Test User", user["display_name"])
	})
}

func TestPostEndpoints(t *testing.T) {
	app, db := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	_, verifiedToken := registerTestUser(t, app, db, "author", "author@example.com", true, "user")
	_, unverifiedToken := registerTestUser(t, app, db, "newbie", "newbie@example.com", false, "user")

	var postID float64
	var slug string

	t.Run("unverified cannot publish", func(t *testing.T) {
		status, _, body := ts.post(t, "/v1/posts", map[string]any{
			"title":   "Sneaky Post",
			"content": "content",
		}, &unverifiedToken)

		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, "FORBIDDEN", errorField(t, body, "code"))
	})

	t.Run("create", func(t *testing.T) {
		status, _, body := ts.post(t, "/v1/posts", map[string]any{
			"title":   "Hello World",
			"content": "The very first post.",
			"status":  "published",
			"tags":    []string{"intro"},
		}, &verifiedToken)

		require.Equal(t, http.StatusCreated, status)
		post := body["post"].(map[string]any)
		postID = post["id"].(float64)
		slug = post["slug"].(string)
		assert.Equal(t, "hello-world", slug)
	})

	t.Run("get by id", func(t *testing.T) {
		status, _, body := ts.get(t, fmt.Sprintf("/v1/posts/%d", int64(postID)), nil)

		require.Equal(t, http.StatusOK, status)
		post := body["post"].(map[string]any)
		assert.Equal(t, "Hello World", post["title"])
	})

	t.Run("get by slug", func(t *testing.T) {
		status, _, body := ts.get(t, "/v1/posts/"+slug, nil)

		require.Equal(t, http.StatusOK, status)
		post := body["post"].(map[string]any)
		assert.Equal(t, postID, post["id"])
	})

	t.Run("list", func(t *testing.T) {
		status, _, body := ts.get(t, "/v1/posts?status=published", nil)

		require.Equal(t, http.StatusOK, status)
		posts := body["posts"].([]any)
		assert.Len(t, posts, 1)

		metadata := body["metadata"].(map[string]any)
		assert.Equal(t, float64(1), metadata["total"])
	})

	t.Run("search", func(t *testing.T) {
		status, _, body := ts.get(t, "/v1/search?q=hello", nil)

		require.Equal(t, http.StatusOK, status)
		posts := body["posts"].([]any)
		assert.Len(t, posts, 1)
	})

	t.Run("like toggles", func(t *testing.T) {
		status, _, body := ts.post(t, fmt.Sprintf("/v1/posts/%d/like", int64(postID)), nil, &verifiedToken)
		require.Equal(t, http.StatusOK, status)
		like := body["like"].(map[string]any)
		assert.Equal(t, true, like["liked"])
		assert.Equal(t, float64(1), like["like_count"])

		status, _, body = ts.post(t, fmt.Sprintf("/v1/posts/%d/like", int64(postID)), nil, &verifiedToken)
		require.Equal(t, http.StatusOK, status)
		like = body["like"].(map[string]any)
		assert.Equal(t, false, like["liked"])
		assert.Equal(t, float64(0), like["like_count"])
	})

	t.Run("update by someone else", func(t *testing.T) {
		// the other account needs to be verified to pass the middleware
		_, err := db.Exec("UPDATE users SET verified = TRUE WHERE username = 'newbie'")
		require.NoError(t, err)

		status, _, body := ts.patch(t, fmt.Sprintf("/v1/posts/%d", int64(postID)), &unverifiedToken, map[string]any{
			"title": "Hijacked",
		})

		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, "FORBIDDEN", errorField(t, body, "code"))
	})

	t.Run("delete", func(t *testing.T) {
		status, _, _ := ts.delete(t, fmt.Sprintf("/v1/posts/%d", int64(postID)), &verifiedToken)
		assert.Equal(t, http.StatusOK, status)

		status, _, body := ts.get(t, fmt.Sprintf("/v1/posts/%d", int64(postID)), nil)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "NOT_FOUND", errorField(t, body, "code"))
	})
}

func TestCommentEndpoints(t *testing.T) {
	app, db := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	_, authorToken := registerTestUser(t, app, db, "author", "author@example.com", true, "user")
	_, readerToken := registerTestUser(t, app, db, "reader", "reader@example.com", true, "user")

	status, _, body := ts.post(t, "/v1/posts", map[string]any{
		"title":   "Discussion",
		"content": "Talk amongst yourselves.",
		"status":  "published",
	}, &authorToken)
	require.Equal(t, http.StatusCreated, status)
	postID := int64(body["post"].(map[string]any)["id"].(float64))

	var rootID float64

	t.Run("create", func(t *testing.T) {
		status, _, body := ts.post(t, fmt.Sprintf("/v1/posts/%d/comments", postID), map[string]any{
			"content": "First!",
		}, &readerToken)

		require.Equal(t, http.StatusCreated, status)
		comment := body["comment"].(map[string]any)
		rootID = comment["id"].(float64)
		assert.Equal(t, float64(0), comment["depth"])
	})

	t.Run("anonymous cannot comment", func(t *testing.T) {
		status, _, body := ts.post(t, fmt.Sprintf("/v1/posts/%d/comments", postID), map[string]any{
			"content": "drive-by",
		}, nil)

		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "UNAUTHORIZED", errorField(t, body, "code"))
	})

	t.Run("reply chain stops at max depth", func(t *testing.T) {
		parent := rootID
		for wantDepth := 1; wantDepth <= 2; wantDepth++ {
			status, _, body := ts.post(t, fmt.Sprintf("/v1/posts/%d/comments", postID), map[string]any{
				"content":   "reply",
				"parent_id": parent,
			}, &authorToken)

			require.Equal(t, http.StatusCreated, status)
			comment := body["comment"].(map[string]any)
			assert.Equal(t, float64(wantDepth), comment["depth"])
			parent = comment["id"].(float64)
		}

		status, _, body := ts.post(t, fmt.Sprintf("/v1/posts/%d/comments", postID), map[string]any{
			"content":   "too deep",
			"parent_id": parent,
		}, &authorToken)

		assert.Equal(t, http.StatusUnprocessableEntity, status)
		assert.Equal(t, "VALIDATION_FAILED", errorField(t, body, "code"))
	})

	t.Run("edit by non-owner", func(t *testing.T) {
		status, _, body := ts.patch(t, fmt.Sprintf("/v1/comments/%d", int64(rootID)), &authorToken, map[string]any{
			"content": "not yours",
		})

		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, "FORBIDDEN", errorField(t, body, "code"))
	})

	t.Run("soft delete shows placeholder", func(t *testing.T) {
		status, _, _ := ts.delete(t, fmt.Sprintf("/v1/comments/%d", int64(rootID)), &readerToken)
		require.Equal(t, http.StatusOK, status)

		status, _, body := ts.get(t, fmt.Sprintf("/v1/posts/%d/comments", postID), nil)
		require.Equal(t, http.StatusOK, status)

		comments := body["comments"].([]any)
		require.Len(t, comments, 3)

		var found bool
		for _, c := range comments {
			comment := c.(map[string]any)
			if comment["id"] == rootID {
				found = true
				assert.Equal(t, "[deleted]", comment["content"])
			}
		}
		assert.True(t, found)
	})
}

func TestCategoryEndpoints(t *testing.T) {
	app, db := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	_, adminToken := registerTestUser(t, app, db, "admin", "admin@example.com", true, "admin")
	_, userToken := registerTestUser(t, app, db, "user", "user@example.com", true, "user")

	t.Run("non-admin cannot create", func(t *testing.T) {
		status, _, body := ts.post(t, "/v1/categories", map[string]any{"name": "Go"}, &userToken)

		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, "FORBIDDEN", errorField(t, body, "code"))
	})

	t.Run("admin creates, everyone lists", func(t *testing.T) {
		status, _, body := ts.post(t, "/v1/categories", map[string]any{"name": "Go", "description": "All things Go"}, &adminToken)
		require.Equal(t, http.StatusCreated, status)
		category := body["category"].(map[string]any)
		assert.Equal(t, "go", category["slug"])

		status, _, body = ts.get(t, "/v1/categories", nil)
		require.Equal(t, http.StatusOK, status)
		categories := body["categories"].([]any)
		assert.Len(t, categories, 1)
	})
}

func TestHealthEndpoints(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	t.Run("liveness", func(t *testing.T) {
		status, _, body := ts.get(t, "/health/liveness", nil)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "ok", body["status"])
	})

	t.Run("readiness", func(t *testing.T) {
		status, _, body := ts.get(t, "/health/readiness", nil)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "ok", body["status"])
	})

	t.Run("full health report", func(t *testing.T) {
		status, _, body := ts.get(t, "/health", nil)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "ok", body["status"])

		checks := body["checks"].([]any)
		assert.Len(t, checks, 4)
	})

	t.Run("metrics", func(t *testing.T) {
		status, _, body := ts.get(t, "/health/metrics", nil)
		assert.Equal(t, http.StatusOK, status)

		metrics := body["metrics"].(map[string]any)
		assert.NotNil(t, metrics["goroutines"])
	})
}

func TestUnknownRoute(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	status, _, body := ts.get(t, "/v1/nope", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorField(t, body, "code"))
}
