package main

import (
	"errors"
	"net/http"

	"github.com/ThilinaV98/blog-platform/internal/categoryservice"
	"github.com/ThilinaV98/blog-platform/internal/common"
)

func (app *application) createCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var input categoryservice.CreateCategoryRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	category, err := app.categoryService.Create(r.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, categoryservice.ErrDuplicateName):
			app.failedValidationErrorResponse(w, r, map[string]string{"name": "a category with this name already exists"})
		case errors.Is(err, categoryservice.ErrDuplicateSlug):
			app.failedValidationErrorResponse(w, r, map[string]string{"name": "a category with this slug already exists"})
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"category": category}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) showCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	category, err := app.categoryService.GetByID(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, categoryservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"category": category}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	activeOnly, err := app.readQueryBool(r, "active")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	categories, err := app.categoryService.List(r.Context(), activeOnly != nil && *activeOnly)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"categories": categories}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) updateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	var input categoryservice.UpdateCategoryRequest

	err = app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	category, err := app.categoryService.Update(r.Context(), id, &input)
	if err != nil {
		switch {
		case errors.Is(err, categoryservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.Is(err, categoryservice.ErrDuplicateName):
			app.failedValidationErrorResponse(w, r, map[string]string{"name": "a category with this name already exists"})
		case errors.Is(err, categoryservice.ErrDuplicateSlug):
			app.failedValidationErrorResponse(w, r, map[string]string{"name": "a category with this slug already exists"})
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"category": category}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) deleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	err = app.categoryService.Delete(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, categoryservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.Is(err, categoryservice.ErrCategoryInUse):
			app.conflictErrorResponse(w, r, "the category still has posts assigned to it")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "category deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
