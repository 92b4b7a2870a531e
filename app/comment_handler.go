package main

import (
	"errors"
	"net/http"

	"github.com/ThilinaV98/blog-platform/internal/commentservice"
	"github.com/ThilinaV98/blog-platform/internal/common"
)

func (app *application) createCommentHandler(w http.ResponseWriter, r *http.Request) {
	postID, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	var input commentservice.CreateCommentRequest

	err = app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)
	input.PostID = postID
	input.UserID = user.ID

	comment, err := app.commentService.Create(r.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, commentservice.ErrPostNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.Is(err, commentservice.ErrParentNotFound):
			app.failedValidationErrorResponse(w, r, map[string]string{"parent_id": "parent comment does not exist"})
		case errors.Is(err, commentservice.ErrParentMismatch):
			app.failedValidationErrorResponse(w, r, map[string]string{"parent_id": "parent comment belongs to a different post"})
		case errors.Is(err, commentservice.ErrMaxDepthExceeded):
			app.failedValidationErrorResponse(w, r, map[string]string{"parent_id": "maximum reply depth reached"})
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"comment": comment}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) listCommentsHandler(w http.ResponseWriter, r *http.Request) {
	postID, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	page, err := app.readQueryInt(r, "page", 1)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	limit, err := app.readQueryInt(r, "limit", commentservice.DefaultLimit)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	sort := app.readQueryString(r, "sort", commentservice.SortNewest)

	result, err := app.commentService.FindByPost(r.Context(), postID, page, limit, sort)
	if err != nil {
		switch {
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"comments": result.Comments, "metadata": result.Metadata}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

type updateCommentRequest struct {
	Content string `json:"content"`
}

func (app *application) updateCommentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	var input updateCommentRequest

	err = app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)

	comment, err := app.commentService.Update(r.Context(), id, user.ID, input.Content)
	if err != nil {
		switch {
		case errors.Is(err, commentservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.Is(err, commentservice.ErrNotOwner):
			app.forbiddenErrorResponse(w, r)
		case errors.Is(err, commentservice.ErrCommentDeleted):
			app.conflictErrorResponse(w, r, "the comment has been deleted")
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"comment": comment}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) deleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	user := app.getUserContext(r)

	err = app.commentService.Remove(r.Context(), id, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, commentservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.Is(err, commentservice.ErrNotOwner):
			app.forbiddenErrorResponse(w, r)
		case errors.Is(err, commentservice.ErrCommentDeleted):
			app.conflictErrorResponse(w, r, "the comment has already been deleted")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "comment deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) toggleCommentLikeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	user := app.getUserContext(r)

	result, err := app.commentService.ToggleLike(r.Context(), id, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, commentservice.ErrRecordNotFound):
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
