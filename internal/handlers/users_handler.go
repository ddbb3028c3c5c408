package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopworks/go-commerce-backend/internal/auth"
	"github.com/shopworks/go-commerce-backend/internal/users"
	"github.com/shopworks/go-commerce-backend/internal/validation"
)

// registerUserRoutes wires profile endpoints. The profile record is created
// lazily on first access, mirroring the cart.
func registerUserRoutes(r gin.IRouter, cfg HandlerConfig) {
	r.GET("/users/me", func(c *gin.Context) {
		id, _ := auth.FromContext(c)
		u, err := cfg.Users.Get(c.Request.Context(), id.UserID)
		if err != nil {
			respondError(c, err)
			return
		}
		if u == nil {
			u = &users.User{UserID: id.UserID, Role: id.Role}
		}
		respondData(c, http.StatusOK, u)
	})

	r.PUT("/users/me", func(c *gin.Context) {
		id, _ := auth.FromContext(c)

		var req validation.UpdateProfileRequest
		if err := validation.BindAndValidate(c, &req, cfg.Validator); err != nil {
			return
		}

		existing, err := cfg.Users.Get(c.Request.Context(), id.UserID)
		if err != nil {
			respondError(c, err)
			return
		}
		u := users.User{UserID: id.UserID, Name: req.Name, Email: req.Email, Role: id.Role}
		if existing != nil {
			u.Role = existing.Role
			u.CreatedAt = existing.CreatedAt
		}
		saved, err := cfg.Users.Put(c.Request.Context(), u)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, saved)
	})

	r.GET("/users", auth.RequireAdmin(), func(c *gin.Context) {
		list, err := cfg.Users.List(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, list)
	})
}
