package controllers

import (
	"net/http"

	"github.com/bloomkart/bloomkart/app/repositories"
	"github.com/bloomkart/bloomkart/app/services"
	"github.com/bloomkart/bloomkart/pkg/bind"
	"github.com/bloomkart/bloomkart/pkg/response"
)

// ProductController exposes the product catalog: public reads, admin writes.
// Writes accept either a JSON body with data-URI images or a multipart form
// with raw image files.
type ProductController struct {
	products *services.ProductService
}

func NewProductController(products *services.ProductService) *ProductController {
	return &ProductController{products: products}
}

func (c *ProductController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, perPage := pageParams(r)

	// "categoryName" is the parameter older clients send; both spellings work.
	categoryName := q.Get("category_name")
	if categoryName == "" {
		categoryName = q.Get("categoryName")
	}

	filter := repositories.ProductFilter{
		CategoryID:   q.Get("category"),
		CategoryName: categoryName,
		Query:        q.Get("q"),
		Sort:         q.Get("sort"),
		Page:         page,
		PerPage:      perPage,
	}

	products, pagination, err := c.products.List(r.Context(), filter)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Paginated(w, products, pagination)
}

func (c *ProductController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	product, err := c.products.Get(r.Context(), id)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Success(w, product)
}

func (c *ProductController) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := c.bindProduct(w, r)
	if !ok {
		return
	}

	product, err := c.products.Create(r.Context(), in)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Created(w, product)
}

func (c *ProductController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	in, ok := c.bindProduct(w, r)
	if !ok {
		return
	}

	product, err := c.products.Update(r.Context(), id, in)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Success(w, product)
}

func (c *ProductController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := c.products.Delete(r.Context(), id); err != nil {
		serviceError(w, r, err)
		return
	}
	response.Success(w, map[string]string{"deleted": id.Hex()})
}

// bindProduct resolves the two accepted write shapes into one input struct.
func (c *ProductController) bindProduct(w http.ResponseWriter, r *http.Request) (services.ProductInput, bool) {
	var in services.ProductInput

	if bind.IsMultipart(r) {
		if errs, err := bind.Form(r, &in); err != nil {
			response.BadRequest(w, err.Error())
			return in, false
		} else if errs != nil {
			response.ValidationError(w, errs)
			return in, false
		}

		for _, fh := range bind.Files(r, "images") {
			data, contentType, err := bind.FileBytes(fh)
			if err != nil {
				response.BadRequest(w, "Unreadable image upload")
				return in, false
			}
			in.Uploads = append(in.Uploads, services.ImageUpload{Data: data, ContentType: contentType})
		}
		return in, true
	}

	if errs, err := bind.JSON(r, &in); err != nil {
		response.BadRequest(w, err.Error())
		return in, false
	} else if errs != nil {
		response.ValidationError(w, errs)
		return in, false
	}
	return in, true
}
