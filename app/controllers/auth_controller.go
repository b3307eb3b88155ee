package controllers

import (
	"net/http"

	"github.com/bloomkart/bloomkart/app/services"
	"github.com/bloomkart/bloomkart/pkg/bind"
	"github.com/bloomkart/bloomkart/pkg/database"
	"github.com/bloomkart/bloomkart/pkg/middleware"
	"github.com/bloomkart/bloomkart/pkg/response"
)

// AuthController exposes registration, login and the caller's own profile.
type AuthController struct {
	auth  *services.AuthService
	users *services.UserService
}

func NewAuthController(auth *services.AuthService, users *services.UserService) *AuthController {
	return &AuthController{auth: auth, users: users}
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.BadRequest(w, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	user, token, err := c.auth.Register(r.Context(), in)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	response.Created(w, map[string]interface{}{"user": user, "token": token})
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.BadRequest(w, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	user, token, err := c.auth.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		serviceError(w, r, err)
		return
	}

	response.Success(w, map[string]interface{}{"user": user, "token": token})
}

type profileInput struct {
	FullName *string `json:"full_name"`
	Password *string `json:"password"`
}

// Me returns the authenticated caller's account.
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFromCtx(r.Context())

	oid, err := database.ParseID(id.UserID)
	if err != nil {
		response.Unauthorized(w, "Invalid or expired token")
		return
	}

	user, err := c.users.Get(r.Context(), oid)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Success(w, user)
}

// UpdateMe lets the caller change their own name or password. Role changes
// stay admin-only; the field is simply not accepted here.
func (c *AuthController) UpdateMe(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFromCtx(r.Context())

	oid, err := database.ParseID(id.UserID)
	if err != nil {
		response.Unauthorized(w, "Invalid or expired token")
		return
	}

	var in profileInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.BadRequest(w, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	user, err := c.users.Update(r.Context(), oid, services.UpdateUserInput{
		FullName: in.FullName,
		Password: in.Password,
	})
	if err != nil {
		serviceError(w, r, err)
		return
	}
	response.Success(w, user)
}
