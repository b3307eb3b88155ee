package controllers

import (
	"net/http"

	"github.com/bloomkart/bloomkart/app/services"
	"github.com/bloomkart/bloomkart/pkg/bind"
	"github.com/bloomkart/bloomkart/pkg/database"
	"github.com/bloomkart/bloomkart/pkg/middleware"
	"github.com/bloomkart/bloomkart/pkg/response"
)

// UserController is the admin account CRUD surface.
type UserController struct {
	users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

func (c *UserController) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)

	users, pagination, err := c.users.List(r.Context(), page, perPage)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Paginated(w, users, pagination)
}

func (c *UserController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	user, err := c.users.Get(r.Context(), id)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Success(w, user)
}

func (c *UserController) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CreateUserInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.BadRequest(w, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	user, err := c.users.Create(r.Context(), in)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Created(w, user)
}

func (c *UserController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var in services.UpdateUserInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.BadRequest(w, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	user, err := c.users.Update(r.Context(), id, in)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Success(w, user)
}

func (c *UserController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	actor, _ := middleware.IdentityFromCtx(r.Context())
	actorID, err := database.ParseID(actor.UserID)
	if err != nil {
		response.Unauthorized(w, "Invalid or expired token")
		return
	}

	if err := c.users.Delete(r.Context(), actorID, id); err != nil {
		serviceError(w, r, err)
		return
	}
	response.Success(w, map[string]string{"deleted": id.Hex()})
}
