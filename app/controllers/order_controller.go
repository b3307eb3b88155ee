package controllers

import (
	"net/http"

	"github.com/bloomkart/bloomkart/app/services"
	"github.com/bloomkart/bloomkart/pkg/bind"
	"github.com/bloomkart/bloomkart/pkg/middleware"
	"github.com/bloomkart/bloomkart/pkg/response"
)

// OrderController handles checkout and order history. All routes require
// authentication; listing every order and changing statuses are admin-only.
type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

type createOrderInput struct {
	Items []services.OrderItemInput `json:"items" validate:"required"`
}

type statusInput struct {
	Status string `json:"status" validate:"required"`
}

func (c *OrderController) Create(w http.ResponseWriter, r *http.Request) {
	var in createOrderInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.BadRequest(w, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	identity, _ := middleware.IdentityFromCtx(r.Context())
	order, err := c.orders.Create(r.Context(), identity.UserID, in.Items)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Created(w, order)
}

// ListMine returns the caller's own orders.
func (c *OrderController) ListMine(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFromCtx(r.Context())

	orders, err := c.orders.ListForUser(r.Context(), identity.UserID)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Success(w, orders)
}

func (c *OrderController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	identity, _ := middleware.IdentityFromCtx(r.Context())
	order, err := c.orders.Get(r.Context(), identity.UserID, identity.Role, id)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Success(w, order)
}

// List returns every order, paginated. Admin only.
func (c *OrderController) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)

	orders, pagination, err := c.orders.List(r.Context(), page, perPage)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Paginated(w, orders, pagination)
}

// UpdateStatus moves an order through its lifecycle. Admin only.
func (c *OrderController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var in statusInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.BadRequest(w, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	order, err := c.orders.UpdateStatus(r.Context(), id, in.Status)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Success(w, order)
}
