package controllers

import (
	"net/http"

	"github.com/bloomkart/bloomkart/app/services"
	"github.com/bloomkart/bloomkart/pkg/bind"
	"github.com/bloomkart/bloomkart/pkg/middleware"
	"github.com/bloomkart/bloomkart/pkg/response"
)

// CartController is the server half of cart reconciliation. Clients push
// their full cart; the server normalizes it, stores it, and replies with the
// canonical copy including the cart id anonymous clients must remember.
type CartController struct {
	carts *services.CartService
}

func NewCartController(carts *services.CartService) *CartController {
	return &CartController{carts: carts}
}

type syncInput struct {
	CartID string                 `json:"cart_id"`
	Items  []services.RawCartItem `json:"items"`
}

// Sync accepts both authenticated and anonymous pushes; OptionalAuth decides
// which identity, if any, keys the cart.
func (c *CartController) Sync(w http.ResponseWriter, r *http.Request) {
	var in syncInput
	if _, err := bind.JSON(r, &in); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	var userID string
	if id, ok := middleware.IdentityFromCtx(r.Context()); ok {
		userID = id.UserID
	}

	cart, err := c.carts.Sync(r.Context(), userID, in.CartID, in.Items)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Success(w, cart)
}

func (c *CartController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var requesterID, role string
	if identity, ok := middleware.IdentityFromCtx(r.Context()); ok {
		requesterID, role = identity.UserID, identity.Role
	}

	cart, err := c.carts.Get(r.Context(), requesterID, role, id)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Success(w, cart)
}

// GetByUser returns the cart bound to a user id, for the owner or an admin.
func (c *CartController) GetByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	identity, _ := middleware.IdentityFromCtx(r.Context())
	cart, err := c.carts.GetByUser(r.Context(), identity.UserID, identity.Role, userID)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Success(w, cart)
}
