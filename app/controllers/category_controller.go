package controllers

import (
	"net/http"

	"github.com/bloomkart/bloomkart/app/services"
	"github.com/bloomkart/bloomkart/pkg/bind"
	"github.com/bloomkart/bloomkart/pkg/response"
)

// CategoryController exposes the category catalog: public reads, admin writes.
type CategoryController struct {
	categories *services.CategoryService
}

func NewCategoryController(categories *services.CategoryService) *CategoryController {
	return &CategoryController{categories: categories}
}

func (c *CategoryController) List(w http.ResponseWriter, r *http.Request) {
	categories, err := c.categories.List(r.Context())
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Success(w, categories)
}

func (c *CategoryController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	category, err := c.categories.Get(r.Context(), id)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Success(w, category)
}

func (c *CategoryController) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CategoryInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.BadRequest(w, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	category, err := c.categories.Create(r.Context(), in)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Created(w, category)
}

func (c *CategoryController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var in services.CategoryInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.BadRequest(w, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	category, err := c.categories.Update(r.Context(), id, in)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Success(w, category)
}

func (c *CategoryController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := c.categories.Delete(r.Context(), id); err != nil {
		serviceError(w, r, err)
		return
	}
	response.Success(w, map[string]string{"deleted": id.Hex()})
}
