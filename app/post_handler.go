package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ThilinaV98/blog-platform/internal/common"
	"github.com/ThilinaV98/blog-platform/internal/postservice"
)

func (app *application) createPostHandler(w http.ResponseWriter, r *http.Request) {
	var input postservice.CreatePostRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)
	input.AuthorID = user.ID

	post, err := app.postService.Create(r.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, postservice.ErrCategoryNotFound):
			app.failedValidationErrorResponse(w, r, map[string]string{"category_id": "category does not exist or is inactive"})
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"post": post}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showPostHandler resolves the :id segment as a numeric id first and falls
// back to treating it as a slug, so /v1/posts/42 and /v1/posts/my-first-post
// both work.
func (app *application) showPostHandler(w http.ResponseWriter, r *http.Request) {
	param := app.readStringParam(r, "id")

	var post *postservice.Post
	var err error

	if id, convErr := strconv.ParseInt(param, 10, 64); convErr == nil && id > 0 {
		post, err = app.postService.GetByID(r.Context(), id)
	} else {
		post, err = app.postService.GetBySlug(r.Context(), param)
	}

	if err != nil {
		switch {
		case errors.Is(err, postservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"post": post}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) listPostsHandler(w http.ResponseWriter, r *http.Request) {
	var f postservice.ListFilters

	f.Status = app.readQueryString(r, "status", "")
	f.Category = app.readQueryString(r, "category", "")
	f.Tag = app.readQueryString(r, "tag", "")

	authorID, err := app.readQueryInt64(r, "author_id", 0)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}
	f.AuthorID = authorID

	featured, err := app.readQueryBool(r, "featured")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}
	f.Featured = featured

	f.Page, err = app.readQueryInt(r, "page", 1)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	f.Limit, err = app.readQueryInt(r, "limit", 10)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	posts, metadata, err := app.postService.List(r.Context(), f)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"posts": posts, "metadata": metadata}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) searchPostsHandler(w http.ResponseWriter, r *http.Request) {
	q := app.readQueryString(r, "q", "")
	if q == "" {
		app.failedValidationErrorResponse(w, r, map[string]string{"q": "must be provided"})
		return
	}

	page, err := app.readQueryInt(r, "page", 1)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	limit, err := app.readQueryInt(r, "limit", 10)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	posts, err := app.postService.Search(r.Context(), q, limit, page)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"posts": posts}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) updatePostHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	var input postservice.UpdatePostRequest

	err = app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)

	post, err := app.postService.Update(r.Context(), id, user.ID, user.IsAdmin(), &input)
	if err != nil {
		switch {
		case errors.Is(err, postservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.Is(err, postservice.ErrNotOwner):
			app.forbiddenErrorResponse(w, r)
		case errors.Is(err, postservice.ErrEditConflict):
			app.conflictErrorResponse(w, r, "the post was modified by someone else, please try again")
		case errors.Is(err, postservice.ErrCategoryNotFound):
			app.failedValidationErrorResponse(w, r, map[string]string{"category_id": "category does not exist or is inactive"})
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"post": post}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) deletePostHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	user := app.getUserContext(r)

	err = app.postService.Delete(r.Context(), id, user.ID, user.IsAdmin())
	if err != nil {
		switch {
		case errors.Is(err, postservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.Is(err, postservice.ErrNotOwner):
			app.forbiddenErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "post deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) togglePostLikeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	user := app.getUserContext(r)

	result, err := app.postService.ToggleLike(r.Context(), id, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, postservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"like": result}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
