// Package controllers translates HTTP requests into service calls and
// service results into JSON envelopes. No business rules live here; every
// handler binds input, delegates, and maps sentinel errors onto statuses.
package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bloomkart/bloomkart/app/services"
	"github.com/bloomkart/bloomkart/pkg/database"
	"github.com/bloomkart/bloomkart/pkg/logger"
	"github.com/bloomkart/bloomkart/pkg/response"
)

// pathID parses the named path parameter as an ObjectID, writing a 400 and
// returning false on malformed input.
func pathID(w http.ResponseWriter, r *http.Request, param string) (primitive.ObjectID, bool) {
	id, err := database.ParseID(chi.URLParam(r, param))
	if err != nil {
		response.BadRequest(w, "Malformed id")
		return primitive.NilObjectID, false
	}
	return id, true
}

// pageParams reads page / per_page query parameters.
func pageParams(r *http.Request) (page, perPage int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ = strconv.Atoi(r.URL.Query().Get("per_page"))
	return page, perPage
}

// serviceError maps service-layer sentinels onto HTTP statuses. Anything
// unrecognized is logged and becomes a 500 with no detail leaked.
func serviceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, services.ErrForbidden):
		response.Forbidden(w)
	case errors.Is(err, services.ErrInvalidCredentials):
		response.Unauthorized(w, err.Error())
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrNameTaken):
		response.Conflict(w, err.Error())
	case errors.Is(err, services.ErrSelfDelete),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrUnknownProduct),
		errors.Is(err, services.ErrEmptyOrder),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrImageCount):
		response.BadRequest(w, err.Error())
	case errors.Is(err, database.ErrInvalidID):
		response.BadRequest(w, "Malformed id")
	default:
		logger.WithCtx(r.Context()).Error("unhandled service error", "error", err)
		response.Internal(w)
	}
}
