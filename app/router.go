package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	// auth
	router.HandlerFunc(http.MethodPost, "/v1/auth/register", app.registerUserHandler)
	router.HandlerFunc(http.MethodPut, "/v1/auth/verify-email", app.verifyEmailHandler)
	router.HandlerFunc(http.MethodPost, "/v1/auth/login", app.loginUserHandler)
	router.HandlerFunc(http.MethodPost, "/v1/auth/refresh", app.refreshTokensHandler)
	router.HandlerFunc(http.MethodPost, "/v1/auth/logout", app.requireAuthUser(app.logoutUserHandler))

	// user service
	router.HandlerFunc(http.MethodGet, "/v1/users/me", app.requireAuthUser(app.getCurrentUserHandler))
	router.HandlerFunc(http.MethodPatch, "/v1/users/me", app.requireAuthUser(app.updateProfileHandler))

	// post service
	router.HandlerFunc(http.MethodGet, "/v1/posts", app.listPostsHandler)
	router.HandlerFunc(http.MethodPost, "/v1/posts", app.requireVerifiedUser(app.createPostHandler))
	router.HandlerFunc(http.MethodGet, "/v1/posts/:id", app.showPostHandler)
	router.HandlerFunc(http.MethodPatch, "/v1/posts/:id", app.requireVerifiedUser(app.updatePostHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/posts/:id", app.requireVerifiedUser(app.deletePostHandler))
	router.HandlerFunc(http.MethodPost, "/v1/posts/:id/like", app.requireAuthUser(app.togglePostLikeHandler))
	router.HandlerFunc(http.MethodGet, "/v1/search", app.searchPostsHandler)

	// comment service
	router.HandlerFunc(http.MethodGet, "/v1/posts/:id/comments", app.listCommentsHandler)
	router.HandlerFunc(http.MethodPost, "/v1/posts/:id/comments", app.requireAuthUser(app.createCommentHandler))
	router.HandlerFunc(http.MethodPatch, "/v1/comments/:id", app.requireAuthUser(app.updateCommentHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/comments/:id", app.requireAuthUser(app.deleteCommentHandler))
	router.HandlerFunc(http.MethodPost, "/v1/comments/:id/like", app.requireAuthUser(app.toggleCommentLikeHandler))

	// category service
	router.HandlerFunc(http.MethodGet, "/v1/categories", app.listCategoriesHandler)
	router.HandlerFunc(http.MethodGet, "/v1/categories/:id", app.showCategoryHandler)
	router.HandlerFunc(http.MethodPost, "/v1/categories", app.requireAdminUser(app.createCategoryHandler))
	router.HandlerFunc(http.MethodPatch, "/v1/categories/:id", app.requireAdminUser(app.updateCategoryHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/categories/:id", app.requireAdminUser(app.deleteCategoryHandler))

	// operational endpoints
	router.HandlerFunc(http.MethodGet, "/health", app.healthCheckHandler)
	router.HandlerFunc(http.MethodGet, "/health/liveness", app.livenessHandler)
	router.HandlerFunc(http.MethodGet, "/health/readiness", app.readinessHandler)
	router.HandlerFunc(http.MethodGet, "/health/metrics", app.metricsHandler)

	return app.recoverPanic(app.rateLimit(app.logRequest(app.authenticate(router))))
}
